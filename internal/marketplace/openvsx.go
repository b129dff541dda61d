package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"vsixget/internal/utils"
)

type OpenVSXMarketplace struct {
	client    *http.Client
	queryURL  string
	userAgent string
}

func NewOpenVSX(client *http.Client, queryURL, userAgent string) *OpenVSXMarketplace {
	return &OpenVSXMarketplace{
		client:    client,
		queryURL:  queryURL,
		userAgent: userAgent,
	}
}

func (m *OpenVSXMarketplace) GetName() string {
	return "Open VSX Registry"
}

func (m *OpenVSXMarketplace) Resolve(ctx context.Context, identifier string) (*ExtensionInfo, error) {
	apiURL := fmt.Sprintf("%s?extensionId=%s", m.queryURL, url.QueryEscape(identifier))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(utils.AcceptHeader, utils.JSONContentType)
	if m.userAgent != "" {
		req.Header.Set(utils.UserAgentHeader, m.userAgent)
	}

	log.Debug().Str("op", "marketplace/openvsx").Str("identifier", identifier).Msg("querying registry")

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

	var response struct {
		Extensions []struct {
			Name      string `json:"name"`
			Namespace string `json:"namespace"`
			Version   string `json:"version"`
			Files     struct {
				Download string `json:"download"`
			} `json:"files"`
		} `json:"extensions"`
	}

	if err := json.Unmarshal(bodyBytes, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Extensions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, identifier)
	}

	ext := response.Extensions[0]
	switch {
	case ext.Namespace == "" || ext.Name == "":
		return nil, fmt.Errorf("%w: missing namespace or name", ErrIncomplete)
	case ext.Version == "":
		return nil, fmt.Errorf("%w: missing version", ErrIncomplete)
	case !safeVersion(ext.Version):
		return nil, fmt.Errorf("%w: invalid version %q", ErrIncomplete, ext.Version)
	case ext.Files.Download == "":
		return nil, fmt.Errorf("%w: missing download URL", ErrIncomplete)
	}

	return &ExtensionInfo{
		Name:          ext.Namespace + "." + ext.Name,
		Publisher:     ext.Namespace,
		ExtensionName: ext.Name,
		Version:       ext.Version,
		DownloadURL:   ext.Files.Download,
	}, nil
}
