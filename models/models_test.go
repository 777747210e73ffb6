package models

import (
	"errors"
	"testing"
)

const sampleJSON = `{
	"name": "Gross Domestic Product, 1 Decimal",
	"source_name": "Federal Reserve Economic Data",
	"display_url": "http://www.quandl.com/FRED/GDP",
	"description": "Units: Billions of Dollars\nSeasonal Adjustment: Seasonally Adjusted Annual Rate\nNotes: A Guide to the National Income and Product Accounts of the United States (NIPA) - (http://www.bea.gov/national/pdf/nipaguid.pdf)",
	"from_date": "1947-01-01",
	"to_date": "1948-04-01",
	"data": [
		["1947-01-01", 243.1],
		["1947-04-01", 246.3],
		["1947-07-01", 250.1],
		["1947-10-01", 260.3],
		["1948-01-01", 266.2],
		["1948-04-01", 272.9]
	]
}`

func TestParseDataset(t *testing.T) {
	ds, err := ParseDataset([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Failed to parse GDP JSON: %v", err)
	}

	if len(ds.Data) != 6 {
		t.Fatalf("Expected 6 data points, got %d", len(ds.Data))
	}
	if ds.Data[0].Date != "1947-01-01" || ds.Data[0].GDP != 243.1 {
		t.Errorf("Unexpected first point %+v", ds.Data[0])
	}
	if ds.SourceName != "Federal Reserve Economic Data" {
		t.Errorf("Expected source name to be parsed, got %q", ds.SourceName)
	}

	lo, hi := ds.YearRange()
	if lo != 1947 || hi != 1948 {
		t.Errorf("Expected year range 1947-1948, got %d-%d", lo, hi)
	}
	if ds.MaxGDP() != 272.9 {
		t.Errorf("Expected max GDP 272.9, got %v", ds.MaxGDP())
	}
	if ds.Title() != "US Quarterly GDP 1947-1948" {
		t.Errorf("Unexpected title %q", ds.Title())
	}
}

func TestParseDatasetErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"malformed", `{"data": [["1947-01-01", 243.1]`},
		{"not json", `<html>404</html>`},
		{"empty data", `{"data": []}`},
		{"missing data", `{"name": "GDP"}`},
		{"short pair", `{"data": [["1947-01-01"]]}`},
		{"value is string", `{"data": [["1947-01-01", "243.1"]]}`},
		{"bad date", `{"data": [["19x7-01-01", 243.1]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := ParseDataset([]byte(tt.raw))
			if err == nil {
				t.Fatalf("Expected error, got dataset %+v", ds)
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("Expected *ParseError, got %T: %v", err, err)
			}
		})
	}
}

func TestAttribution(t *testing.T) {
	ds, err := ParseDataset([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Failed to parse GDP JSON: %v", err)
	}

	links := ds.Attribution()
	if len(links) != 2 {
		t.Fatalf("Expected 2 attribution links, got %d", len(links))
	}
	if links[0].URL != "http://www.quandl.com/FRED/GDP" {
		t.Errorf("Unexpected first link %+v", links[0])
	}
	if links[1].URL != "http://www.bea.gov/national/pdf/nipaguid.pdf" {
		t.Errorf("Unexpected second link %+v", links[1])
	}

	bare := Dataset{Data: ds.Data}
	if got := bare.Attribution(); len(got) != 0 {
		t.Errorf("Expected no links without metadata, got %+v", got)
	}
}

func TestAttributionSkipsNonWebURLs(t *testing.T) {
	for _, raw := range []string{
		"javascript:alert(document.cookie)",
		"JavaScript:alert(1)",
		"data:text/html,<script>alert(1)</script>",
		"//example.com/no-scheme",
		"ftp://example.com/gdp.csv",
	} {
		ds := Dataset{SourceName: "FRED", DisplayURL: raw}
		if got := ds.Attribution(); len(got) != 0 {
			t.Errorf("DisplayURL %q: expected no links, got %+v", raw, got)
		}
	}

	ds := Dataset{SourceName: "FRED", DisplayURL: "https://fred.stlouisfed.org/series/GDP"}
	if got := ds.Attribution(); len(got) != 1 || got[0].Text != "FRED" {
		t.Errorf("Expected the https link to be kept, got %+v", got)
	}
}

func TestCheckQuarters(t *testing.T) {
	tests := []struct {
		name    string
		data    []DataPoint
		wantIdx int
	}{
		{
			name: "complete",
			data: []DataPoint{
				{"1947-01-01", 1}, {"1947-04-01", 2}, {"1947-07-01", 3}, {"1947-10-01", 4}, {"1948-01-01", 5},
			},
			wantIdx: -1,
		},
		{
			name:    "missing quarter",
			data:    []DataPoint{{"1947-01-01", 1}, {"1947-07-01", 3}},
			wantIdx: 1,
		},
		{
			name:    "starts mid-year",
			data:    []DataPoint{{"1947-04-01", 1}, {"1947-07-01", 2}},
			wantIdx: 0,
		},
		{
			name: "skipped year",
			data: []DataPoint{
				{"1947-01-01", 1}, {"1947-04-01", 2}, {"1947-07-01", 3}, {"1947-10-01", 4}, {"1949-01-01", 5},
			},
			wantIdx: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := Dataset{Data: tt.data}
			err := ds.CheckQuarters()
			if tt.wantIdx < 0 {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			var qErr *QuarterError
			if !errors.As(err, &qErr) {
				t.Fatalf("Expected *QuarterError, got %v", err)
			}
			if qErr.Index != tt.wantIdx {
				t.Errorf("Expected failure at index %d, got %d", tt.wantIdx, qErr.Index)
			}
		})
	}
}

func TestDataStore(t *testing.T) {
	var store DataStore

	if _, err := store.Get(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Expected ErrNotLoaded before first load, got %v", err)
	}

	store.Set(&Payload{Body: []byte(sampleJSON), Origin: OriginFallback}, nil)
	p, err := store.Get()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p.Origin != OriginFallback {
		t.Errorf("Expected fallback origin, got %s", p.Origin)
	}

	loadErr := errors.New("boom")
	store.Set(nil, loadErr)
	p, err = store.Get()
	if err != nil || p.Origin != OriginFallback {
		t.Errorf("Expected a failed reload to keep the last payload, got %v, %v", p, err)
	}
	if !errors.Is(store.LastError(), loadErr) {
		t.Errorf("Expected the reload error to be recorded, got %v", store.LastError())
	}

	store.Set(&Payload{Body: []byte(sampleJSON), Origin: OriginPrimary}, nil)
	if store.LastError() != nil {
		t.Errorf("Expected a successful load to clear the error, got %v", store.LastError())
	}

	var empty DataStore
	empty.Set(nil, loadErr)
	if _, err := empty.Get(); !errors.Is(err, loadErr) {
		t.Errorf("Expected stored load error without a payload, got %v", err)
	}
}
