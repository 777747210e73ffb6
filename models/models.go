package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
)

// quarterMonths holds the month each quarter of a year is dated on, in order.
var quarterMonths = [4]string{"01", "04", "07", "10"}

var errEmptyDataset = errors.New("dataset has no data points")

var urlPattern = regexp.MustCompile(`https?://[^\s()]+`)

// DataPoint is one quarter of the series: a "YYYY-MM-DD" date and the GDP
// value in billions of dollars.
type DataPoint struct {
	Date string
	GDP  float64
}

// Dataset is the GDP document served by the data source.
type Dataset struct {
	Name        string      `json:"name"`
	SourceName  string      `json:"source_name"`
	DisplayURL  string      `json:"display_url"`
	Description string      `json:"description"`
	FromDate    string      `json:"from_date"`
	ToDate      string      `json:"to_date"`
	Data        []DataPoint `json:"data"`
}

// Link is a hyperlink shown in the attribution block under the title.
type Link struct {
	Text string
	URL  string
}

// ParseError reports a payload that could not be turned into a Dataset.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse GDP data: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// QuarterError reports the first data point that does not sit where the
// index mod 4 quarter assignment expects it.
type QuarterError struct {
	Index int
	Date  string
	Want  string
}

func (e *QuarterError) Error() string {
	return fmt.Sprintf("data point %d dated %s breaks the quarterly sequence, expected %s", e.Index, e.Date, e.Want)
}

// UnmarshalJSON decodes the [date, value] pair the data source uses for each point.
func (p *DataPoint) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("data point must have 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &p.Date); err != nil {
		return fmt.Errorf("data point date: %w", err)
	}
	if err := json.Unmarshal(pair[1], &p.GDP); err != nil {
		return fmt.Errorf("data point value: %w", err)
	}
	return nil
}

// MarshalJSON writes the point back as a [date, value] pair.
func (p DataPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Date, p.GDP})
}

// Year returns the year prefix of the date, or 0 when the date has none.
func (p DataPoint) Year() int {
	if len(p.Date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(p.Date[:4])
	if err != nil {
		return 0
	}
	return year
}

// ParseDataset decodes a raw payload. Any failure is returned as a *ParseError.
func ParseDataset(raw []byte) (*Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(ds.Data) == 0 {
		return nil, &ParseError{Err: errEmptyDataset}
	}
	for i, p := range ds.Data {
		if p.Year() == 0 {
			return nil, &ParseError{Err: fmt.Errorf("data point %d has invalid date %q", i, p.Date)}
		}
	}
	return &ds, nil
}

// YearRange returns the smallest and largest year in the series.
func (ds *Dataset) YearRange() (int, int) {
	if len(ds.Data) == 0 {
		return 0, 0
	}
	lo, hi := ds.Data[0].Year(), ds.Data[0].Year()
	for _, p := range ds.Data[1:] {
		y := p.Year()
		if y < lo {
			lo = y
		}
		if y > hi {
			hi = y
		}
	}
	return lo, hi
}

// MaxGDP returns the largest value in the series.
func (ds *Dataset) MaxGDP() float64 {
	var top float64
	for i, p := range ds.Data {
		if i == 0 || p.GDP > top {
			top = p.GDP
		}
	}
	return top
}

func (ds *Dataset) Title() string {
	lo, hi := ds.YearRange()
	return fmt.Sprintf("US Quarterly GDP %d-%d", lo, hi)
}

// Attribution returns the dataset's display URL and the first URL mentioned
// in its description, skipping whichever is missing or not an http(s) URL.
func (ds *Dataset) Attribution() []Link {
	var links []Link
	if isWebURL(ds.DisplayURL) {
		text := ds.SourceName
		if text == "" {
			text = ds.DisplayURL
		}
		links = append(links, Link{Text: text, URL: ds.DisplayURL})
	}
	if u := urlPattern.FindString(ds.Description); isWebURL(u) {
		links = append(links, Link{Text: "A Guide to the National Income and Product Accounts of the United States", URL: u})
	}
	return links
}

func isWebURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// CheckQuarters verifies that the series starts on a first quarter and moves
// forward one quarter per point with no gaps, which is what placing bars by
// index mod 4 relies on.
func (ds *Dataset) CheckQuarters() error {
	if len(ds.Data) == 0 {
		return nil
	}
	first := ds.Data[0].Year()
	for i, p := range ds.Data {
		want := fmt.Sprintf("%04d-%s", first+i/4, quarterMonths[i%4])
		if len(p.Date) < 7 || p.Date[:7] != want {
			return &QuarterError{Index: i, Date: p.Date, Want: want}
		}
	}
	return nil
}
