package marketplace

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound   = errors.New("extension not found")
	ErrIncomplete = errors.New("incomplete extension data")
)

// Provider resolves an identifier to the metadata needed to download it.
type Provider interface {
	Resolve(ctx context.Context, identifier string) (*ExtensionInfo, error)
	GetName() string
}

// MarketplaceType represents the type of marketplace
type MarketplaceType string

const (
	MarketplaceTypeMicrosoft MarketplaceType = "microsoft"
	MarketplaceTypeOpenVSX   MarketplaceType = "open-vsx"
)

type ExtensionInfo struct {
	Name          string `json:"name"`
	Publisher     string `json:"publisher"`
	ExtensionName string `json:"extensionName"`
	Version       string `json:"version"`
	DownloadURL   string `json:"downloadUrl"`
}

// safeVersion rejects versions that would not stay a single path element
// once used in a file name.
func safeVersion(version string) bool {
	return !strings.ContainsAny(version, `/\`) && !strings.Contains(version, "..")
}
