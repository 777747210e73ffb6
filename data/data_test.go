package data

import (
	"path/filepath"
	"testing"
)

func TestResolveFallback(t *testing.T) {
	tests := []struct {
		dataDir  string
		fallback string
		want     string
	}{
		{".", FallbackFile, filepath.Join(".", FallbackFile)},
		{"fixtures", "data.json", filepath.Join("fixtures", "data.json")},
		{"", "data.json", "data.json"},
		{"fixtures", "https://example.com/gdp.json", "https://example.com/gdp.json"},
		{"fixtures", "/srv/gdp/data.json", "/srv/gdp/data.json"},
	}

	for _, tt := range tests {
		if got := ResolveFallback(tt.dataDir, tt.fallback); got != tt.want {
			t.Errorf("ResolveFallback(%q, %q) = %q, want %q", tt.dataDir, tt.fallback, got, tt.want)
		}
	}
}

func TestIsURL(t *testing.T) {
	if !IsURL(PrimaryURL) {
		t.Errorf("Expected primary URL to be recognised")
	}
	if IsURL(FallbackFile) {
		t.Errorf("Expected %s to be a local path", FallbackFile)
	}
}
