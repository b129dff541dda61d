package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func IsVSIXFile(filePath string) bool {
	return strings.HasSuffix(strings.ToLower(filePath), VSIXExtension)
}

// FileExists reports whether anything is present at filePath. Stat errors
// other than not-exist count as present so callers never overwrite.
func FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}

func EnsureDirectory(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, 0755)
	}
	return nil
}

// PackageFileName is the on-disk name of a downloaded package.
func PackageFileName(identifier, version string) string {
	return fmt.Sprintf("%s-%s%s", identifier, version, VSIXExtension)
}

// PackageVersion extracts the version from a file produced by
// PackageFileName for identifier. Versions must start with a digit so that
// "a.b-ext-1.0.vsix" is not taken for a version of "a.b".
func PackageVersion(fileName, identifier string) (string, bool) {
	base := filepath.Base(fileName)
	prefix := identifier + "-"
	if !IsVSIXFile(base) || !strings.HasPrefix(base, prefix) {
		return "", false
	}
	version := base[len(prefix) : len(base)-len(VSIXExtension)]
	if version == "" || version[0] < '0' || version[0] > '9' {
		return "", false
	}
	return version, true
}
