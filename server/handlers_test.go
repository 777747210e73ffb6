package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gdpchart/downloader"
	"github.com/gdpchart/models"
)

const gdpJSON = `{
	"source_name": "Federal Reserve Economic Data",
	"display_url": "http://www.quandl.com/FRED/GDP",
	"description": "Notes: A Guide to the National Income and Product Accounts of the United States (NIPA) - (http://www.bea.gov/national/pdf/nipaguid.pdf)",
	"data": [["1947-01-01", 243.1], ["1947-04-01", 246.3]]
}`

var svgWidth = regexp.MustCompile(`<svg class="graph" width="([0-9.]+)" height="([0-9.]+)"`)

func newTestServer(payload *models.Payload, err error) *Server {
	s := New(nil, Config{})
	s.store.Set(payload, err)
	return s
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestIndexRendersChart(t *testing.T) {
	s := newTestServer(&models.Payload{Body: []byte(gdpJSON), Origin: models.OriginPrimary}, nil)

	rec := get(t, s, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()

	if got := strings.Count(body, `<rect class="bar"`); got != 2 {
		t.Errorf("Expected 2 bars, got %d", got)
	}
	for _, want := range []string{
		`<h1 id="title">US Quarterly GDP 1947-1947</h1>`,
		`id="x-axis"`,
		`id="y-axis"`,
		`id="tooltip"`,
		`data-quarter="Q1 1947"`,
		`data-value="$243 Billion"`,
		`data-offset="20"`,
		`data-offset="-150"`,
		`href="http://www.quandl.com/FRED/GDP"`,
		`href="http://www.bea.gov/national/pdf/nipaguid.pdf"`,
		`Gross Domestic Product</text>`,
		`<script>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected page to contain %q", want)
		}
	}
	if strings.Contains(body, `class="notice"`) {
		t.Errorf("Did not expect a quarter notice for a complete series")
	}
}

func TestChartFragmentResize(t *testing.T) {
	s := newTestServer(&models.Payload{Body: []byte(gdpJSON)}, nil)

	sizes := map[string][2]string{}
	for _, width := range []int{1000, 600} {
		rec := get(t, s, fmt.Sprintf("/chart?width=%d", width))
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		if strings.Contains(body, "<html") {
			t.Errorf("Fragment should not include the page shell")
		}
		if got := strings.Count(body, `<rect class="bar"`); got != 2 {
			t.Errorf("width %d: expected 2 bars, got %d", width, got)
		}
		if strings.Index(body, `data-date="1947-01-01"`) > strings.Index(body, `data-date="1947-04-01"`) {
			t.Errorf("width %d: bars out of order", width)
		}
		m := svgWidth.FindStringSubmatch(body)
		if m == nil {
			t.Fatalf("width %d: no svg element in %q", width, body)
		}
		sizes[fmt.Sprint(width)] = [2]string{m[1], m[2]}
	}

	if sizes["1000"] != [2]string{"1000.00", "600.00"} {
		t.Errorf("Unexpected size at 1000: %v", sizes["1000"])
	}
	if sizes["600"] != [2]string{"600.00", "360.00"} {
		t.Errorf("Unexpected size at 600: %v", sizes["600"])
	}
}

func TestMalformedPayload(t *testing.T) {
	s := newTestServer(&models.Payload{Body: []byte(`{"data": [["1947-01-01", 243.1]`)}, nil)

	rec := get(t, s, "/")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "<svg") {
		t.Errorf("No SVG should be emitted for a malformed payload")
	}
	if !strings.Contains(body, msgParseFailed) {
		t.Errorf("Expected parse failure message, got %q", body)
	}

	rec = get(t, s, "/chart?width=800")
	if strings.Contains(rec.Body.String(), "<svg") || !strings.Contains(rec.Body.String(), msgParseFailed) {
		t.Errorf("Expected fragment to carry only the parse failure message, got %q", rec.Body.String())
	}
}

func TestLoadFailureMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
		code int
	}{
		{
			name: "both sources",
			err:  fmt.Errorf("%w: primary: 500", downloader.ErrBothSourcesFailed),
			want: msgBothFailed,
			code: http.StatusBadGateway,
		},
		{
			name: "transport",
			err:  &downloader.TransportError{URL: "https://example.com", Err: errors.New("connection refused")},
			want: msgLoadFailed,
			code: http.StatusBadGateway,
		},
		{
			name: "not loaded",
			err:  nil,
			want: msgNotLoaded,
			code: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(nil, tt.err)
			rec := get(t, s, "/")
			if rec.Code != tt.code {
				t.Errorf("Expected %d, got %d", tt.code, rec.Code)
			}
			body := rec.Body.String()
			if !strings.Contains(body, `<div id="graph-container">`+tt.want+`</div>`) {
				t.Errorf("Expected container to hold only %q, got %q", tt.want, body)
			}
		})
	}
}

func TestQuarterNotice(t *testing.T) {
	gapped := `{"data": [["1947-01-01", 243.1], ["1947-10-01", 260.3]]}`
	s := newTestServer(&models.Payload{Body: []byte(gapped)}, nil)

	rec := get(t, s, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected the chart to render anyway, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `class="notice"`) {
		t.Errorf("Expected a quarter notice on the page")
	}
}

func TestAPIData(t *testing.T) {
	s := newTestServer(&models.Payload{Body: []byte(gdpJSON)}, nil)

	rec := get(t, s, "/api/data")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var got struct {
		Data [][]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(got.Data) != 2 || got.Data[0][0] != "1947-01-01" || got.Data[0][1] != 243.1 {
		t.Errorf("Unexpected data %v", got.Data)
	}

	failing := newTestServer(nil, downloader.ErrBothSourcesFailed)
	if rec := get(t, failing, "/api/data"); rec.Code != http.StatusBadGateway {
		t.Errorf("Expected 502 without data, got %d", rec.Code)
	}
}

func TestEChartsAndExport(t *testing.T) {
	s := newTestServer(&models.Payload{Body: []byte(gdpJSON)}, nil)

	rec := get(t, s, "/echarts")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from /echarts, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "echarts") || !strings.Contains(rec.Body.String(), "Q1 1947") {
		t.Errorf("Expected an ECharts page with quarter labels")
	}

	rec = get(t, s, "/export.xlsx")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from /export.xlsx, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("Unexpected content type %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Errorf("Expected a zip container")
	}
}

func TestRefresh(t *testing.T) {
	var hits atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(gdpJSON))
	}))
	defer upstream.Close()

	s := New(downloader.NewLoader(upstream.URL, "", "", nil), Config{})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	rec := get(t, s, "/refresh")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected GET /refresh to be rejected, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/refresh", nil))
	if rec.Code != http.StatusSeeOther {
		t.Errorf("Expected redirect after refresh, got %d", rec.Code)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("Expected two upstream fetches, got %d", got)
	}

	// rendering never re-fetches
	get(t, s, "/")
	get(t, s, "/chart?width=500")
	if got := hits.Load(); got != 2 {
		t.Errorf("Rendering should not fetch again, got %d fetches", got)
	}

	rec = get(t, s, "/health")
	var health healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("Invalid health JSON: %v", err)
	}
	if !health.Loaded || health.Origin != string(models.OriginPrimary) {
		t.Errorf("Unexpected health %+v", health)
	}
}

func TestRenderPage(t *testing.T) {
	var buf bytes.Buffer
	err := RenderPage(context.Background(), &buf, &models.Payload{Body: []byte(gdpJSON)}, 800)
	if err != nil {
		t.Fatalf("RenderPage failed: %v", err)
	}
	if !strings.Contains(buf.String(), `width="800.00"`) {
		t.Errorf("Expected an 800px chart")
	}

	buf.Reset()
	err = RenderPage(context.Background(), &buf, &models.Payload{Body: []byte("nope")}, 800)
	var parseErr *models.ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("Expected parse error, got %v", err)
	}
	if !strings.Contains(buf.String(), msgParseFailed) {
		t.Errorf("Expected the error page to be written")
	}
}

func TestAttributionRejectsScriptURL(t *testing.T) {
	hostile := `{
	"source_name": "FRED",
	"display_url": "javascript:alert(document.cookie)",
	"description": "see javascript:alert(1)",
	"data": [["1947-01-01", 243.1], ["1947-04-01", 246.3]]
}`
	s := newTestServer(&models.Payload{Body: []byte(hostile)}, nil)

	rec := get(t, s, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := strings.ToLower(rec.Body.String())
	if strings.Contains(body, "javascript:") {
		t.Errorf("Page must not link to a javascript: URL, got %q", body)
	}
	if strings.Contains(body, `class="attribution"`) {
		t.Errorf("Expected no attribution block without usable links")
	}
}

func TestFailedRefreshKeepsChart(t *testing.T) {
	var hits atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) > 1 {
			http.Error(w, "unavailable", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(gdpJSON))
	}))
	defer upstream.Close()

	s := New(downloader.NewLoader(upstream.URL, "", "", nil), Config{})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/refresh", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected redirect after refresh, got %d", rec.Code)
	}

	rec = get(t, s, "/")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<svg") {
		t.Errorf("Expected the previous chart after a failed refresh, got %d", rec.Code)
	}

	var health healthResponse
	if err := json.Unmarshal(get(t, s, "/health").Body.Bytes(), &health); err != nil {
		t.Fatalf("Invalid health JSON: %v", err)
	}
	if !health.Loaded || health.Error == "" {
		t.Errorf("Expected loaded data plus the refresh error, got %+v", health)
	}
}

func TestHealthBeforeLoad(t *testing.T) {
	s := newTestServer(nil, nil)

	body := get(t, s, "/health").Body.String()
	if strings.Contains(body, "fetched_at") {
		t.Errorf("Expected no fetch time before a load, got %s", body)
	}
	if !strings.Contains(body, `"loaded":false`) || !strings.Contains(body, models.ErrNotLoaded.Error()) {
		t.Errorf("Unexpected health before load: %s", body)
	}
}
