package extensions

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog/log"

	"vsixget/internal/utils"
)

const packageJSONPath = "extension/package.json"

// Package is one downloaded .vsix file for an identifier.
type Package struct {
	Identifier string
	Version    string
	FilePath   string
	Size       int64
}

// Manifest holds the fields of extension/package.json this tool reads.
type Manifest struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Publisher   string `json:"publisher"`
	Version     string `json:"version"`
}

func (m *Manifest) ID() string {
	return fmt.Sprintf("%s.%s", m.Publisher, m.Name)
}

// Manager works on the packages in one download directory.
type Manager struct {
	directory string
}

func New(directory string) *Manager {
	return &Manager{directory: directory}
}

func (m *Manager) GetExtensionsDir() string {
	return m.directory
}

// Packages returns the downloaded versions of identifier, newest first.
// Versions that are not valid semver sort after the valid ones, by name.
func (m *Manager) Packages(identifier string) ([]Package, error) {
	entries, err := os.ReadDir(m.directory)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var packages []Package
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version, ok := utils.PackageVersion(entry.Name(), identifier)
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		packages = append(packages, Package{
			Identifier: identifier,
			Version:    version,
			FilePath:   filepath.Join(m.directory, entry.Name()),
			Size:       info.Size(),
		})
	}

	sort.SliceStable(packages, func(i, j int) bool {
		return newer(packages[i].Version, packages[j].Version)
	})
	return packages, nil
}

func newer(a, b string) bool {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	switch {
	case errA == nil && errB == nil:
		return va.GreaterThan(vb)
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a > b
	}
}

// Delete removes the given packages and returns how many were removed.
func (m *Manager) Delete(packages []Package) (int, error) {
	removed := 0
	for _, pkg := range packages {
		if err := os.Remove(pkg.FilePath); err != nil {
			if os.IsNotExist(err) {
				log.Warn().Str("op", "extensions/delete").Msgf("File already gone: %s", pkg.FilePath)
				continue
			}
			return removed, fmt.Errorf("failed to delete %s: %w", pkg.FilePath, err)
		}
		log.Debug().Str("op", "extensions/delete").Msgf("Deleted %s", pkg.FilePath)
		removed++
	}
	return removed, nil
}

// ReadManifest reads extension/package.json from a .vsix archive.
func ReadManifest(filePath string) (*Manifest, error) {
	reader, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open .vsix file: %w", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != packageJSONPath {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open package.json: %w", err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to read package.json: %w", err)
		}
		var manifest Manifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			return nil, fmt.Errorf("failed to parse package.json: %w", err)
		}
		return &manifest, nil
	}
	return nil, fmt.Errorf("package.json not found in .vsix file")
}
