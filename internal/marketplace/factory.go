package marketplace

import (
	"fmt"
	"net/http"
	"time"
)

type Options struct {
	QueryURL        string
	DownloadBaseURL string
	OpenVSXURL      string
	Timeout         time.Duration
	UserAgent       string
}

// Factory creates marketplace providers based on type
type Factory struct {
	opts Options
}

func NewFactory(opts Options) *Factory {
	return &Factory{opts: opts}
}

// CreateByType creates a marketplace provider by type
func (f *Factory) CreateByType(marketplaceType MarketplaceType) (Provider, error) {
	client := &http.Client{Timeout: f.opts.Timeout}
	switch marketplaceType {
	case MarketplaceTypeMicrosoft, "":
		return NewMicrosoft(client, f.opts.QueryURL, f.opts.DownloadBaseURL, f.opts.UserAgent), nil
	case MarketplaceTypeOpenVSX:
		return NewOpenVSX(client, f.opts.OpenVSXURL, f.opts.UserAgent), nil
	default:
		return nil, fmt.Errorf("unknown marketplace type: %s", marketplaceType)
	}
}
