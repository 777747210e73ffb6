package data

import (
	"path/filepath"
	"strings"
)

const (
	// PrimaryURL is the published GDP dataset.
	PrimaryURL = "https://raw.githubusercontent.com/freeCodeCamp/ProjectReferenceData/master/GDP-data.json"

	// FallbackFile is the local copy read when the primary source is unavailable.
	FallbackFile = "data.json"
)

// IsURL reports whether location should be fetched over HTTP rather than
// read from disk.
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// ResolveFallback joins a relative fallback path onto dataDir. Absolute
// paths and URLs are returned unchanged.
func ResolveFallback(dataDir, fallback string) string {
	if IsURL(fallback) || filepath.IsAbs(fallback) || dataDir == "" {
		return fallback
	}
	return filepath.Join(dataDir, fallback)
}
