package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"vsixget/internal/utils"
)

const (
	filterTypeExtensionName    = 7
	filterTypeExcludeWithFlags = 12
	excludeUnpublished         = "4096"

	// full result detail, including the version list
	queryFlags = 1039
)

type Microsoft struct {
	client          *http.Client
	queryURL        string
	downloadBaseURL string
	userAgent       string
}

func NewMicrosoft(client *http.Client, queryURL, downloadBaseURL, userAgent string) *Microsoft {
	return &Microsoft{
		client:          client,
		queryURL:        queryURL,
		downloadBaseURL: strings.TrimRight(downloadBaseURL, "/"),
		userAgent:       userAgent,
	}
}

func (m *Microsoft) GetName() string {
	return "Visual Studio Marketplace"
}

type queryCriterion struct {
	FilterType int    `json:"filterType"`
	Value      string `json:"value"`
}

type queryFilter struct {
	Criteria   []queryCriterion `json:"criteria"`
	PageNumber int              `json:"pageNumber"`
	PageSize   int              `json:"pageSize"`
}

type queryRequest struct {
	Filters []queryFilter `json:"filters"`
	Flags   int           `json:"flags"`
}

type queryResponse struct {
	Results []struct {
		Extensions []struct {
			ExtensionName string `json:"extensionName"`
			Versions      []struct {
				Version string `json:"version"`
			} `json:"versions"`
			Publisher struct {
				PublisherName string `json:"publisherName"`
			} `json:"publisher"`
		} `json:"extensions"`
	} `json:"results"`
}

func newQueryRequest(identifier string) queryRequest {
	return queryRequest{
		Filters: []queryFilter{
			{
				Criteria: []queryCriterion{
					{FilterType: filterTypeExtensionName, Value: identifier},
					{FilterType: filterTypeExcludeWithFlags, Value: excludeUnpublished},
				},
				PageNumber: 1,
				PageSize:   1,
			},
		},
		Flags: queryFlags,
	}
}

func (m *Microsoft) Resolve(ctx context.Context, identifier string) (*ExtensionInfo, error) {
	jsonData, err := json.Marshal(newQueryRequest(identifier))
	if err != nil {
		return nil, fmt.Errorf("failed to serialize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.queryURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(utils.ContentTypeHeader, utils.JSONContentType)
	req.Header.Set(utils.AcceptHeader, utils.GalleryAPIVersion)
	if m.userAgent != "" {
		req.Header.Set(utils.UserAgentHeader, m.userAgent)
	}

	log.Debug().Str("op", "marketplace/query").Str("identifier", identifier).Msg("querying marketplace")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("invalid status: %d", resp.StatusCode)
	}

	var response queryResponse
	if err := json.Unmarshal(bodyBytes, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Results) == 0 || len(response.Results[0].Extensions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, identifier)
	}

	ext := response.Results[0].Extensions[0]
	switch {
	case ext.Publisher.PublisherName == "":
		return nil, fmt.Errorf("%w: missing publisher name", ErrIncomplete)
	case ext.ExtensionName == "":
		return nil, fmt.Errorf("%w: missing extension name", ErrIncomplete)
	case len(ext.Versions) == 0 || ext.Versions[0].Version == "":
		return nil, fmt.Errorf("%w: missing version", ErrIncomplete)
	case !safeVersion(ext.Versions[0].Version):
		return nil, fmt.Errorf("%w: invalid version %q", ErrIncomplete, ext.Versions[0].Version)
	}

	publisher := ext.Publisher.PublisherName
	version := ext.Versions[0].Version

	return &ExtensionInfo{
		Name:          publisher + "." + ext.ExtensionName,
		Publisher:     publisher,
		ExtensionName: ext.ExtensionName,
		Version:       version,
		DownloadURL:   m.DownloadURL(publisher, ext.ExtensionName, version),
	}, nil
}

// DownloadURL returns the vspackage endpoint for one published version.
func (m *Microsoft) DownloadURL(publisher, extension, version string) string {
	return fmt.Sprintf("%s/%s/vsextensions/%s/%s/vspackage",
		m.downloadBaseURL,
		url.PathEscape(publisher),
		url.PathEscape(extension),
		url.PathEscape(version))
}
