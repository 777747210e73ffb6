package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/gdpchart/downloader"
	"github.com/gdpchart/export"
	"github.com/gdpchart/models"
	"github.com/gdpchart/templates"
)

const (
	msgLoadFailed  = "An error occurred when trying to load data"
	msgBothFailed  = "Error when trying to load data from API and file, please try again."
	msgParseFailed = "Error occurred when trying to parse JSON data, please try again."
	msgNotLoaded   = "Loading..."
)

// errorMessage maps a terminal error onto the text shown in place of the chart.
func errorMessage(err error) string {
	var parseErr *models.ParseError
	switch {
	case errors.As(err, &parseErr):
		return msgParseFailed
	case errors.Is(err, downloader.ErrBothSourcesFailed):
		return msgBothFailed
	case errors.Is(err, models.ErrNotLoaded):
		return msgNotLoaded
	default:
		return msgLoadFailed
	}
}

func errorStatus(err error) int {
	var parseErr *models.ParseError
	switch {
	case errors.As(err, &parseErr):
		return http.StatusInternalServerError
	case errors.Is(err, models.ErrNotLoaded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// RenderPage writes the full chart page for payload at the given width. When
// the payload does not parse, the error page is written instead and the parse
// error is returned.
func RenderPage(ctx context.Context, w io.Writer, payload *models.Payload, width int) error {
	chart, err := models.Render(payload.Body, width)
	if err != nil {
		log.Printf("Failed to render chart: %v", err)
		if renderErr := templates.Error(errorMessage(err)).Render(ctx, w); renderErr != nil {
			return renderErr
		}
		return err
	}
	if chart.Warning != "" {
		log.Printf("Quarter check: %s", chart.Warning)
	}
	return templates.ChartPage(chart, chartSVG(chart)).Render(ctx, w)
}

// RenderError writes the page shown when no payload could be loaded.
func RenderError(ctx context.Context, w io.Writer, err error) error {
	return templates.Error(errorMessage(err)).Render(ctx, w)
}

func (s *Server) width(r *http.Request) int {
	if v := r.URL.Query().Get("width"); v != "" {
		if width, err := strconv.Atoi(v); err == nil && width > 0 {
			return width
		}
	}
	return s.cfg.Width
}

// dataset parses the stored payload, writing the error response itself when
// that is not possible.
func (s *Server) dataset(w http.ResponseWriter, r *http.Request) (*models.Dataset, bool) {
	payload, err := s.store.Get()
	if err == nil {
		var ds *models.Dataset
		ds, err = models.ParseDataset(payload.Body)
		if err == nil {
			return ds, true
		}
	}
	log.Printf("Cannot serve %s: %v", r.URL.Path, err)
	http.Error(w, errorMessage(err), errorStatus(err))
	return nil, false
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	payload, err := s.store.Get()
	if err != nil {
		templ.Handler(templates.Error(errorMessage(err)), templ.WithStatus(errorStatus(err))).ServeHTTP(w, r)
		return
	}

	chart, err := models.Render(payload.Body, s.width(r))
	if err != nil {
		log.Printf("Failed to render chart: %v", err)
		templ.Handler(templates.Error(errorMessage(err)), templ.WithStatus(errorStatus(err))).ServeHTTP(w, r)
		return
	}
	if chart.Warning != "" {
		log.Printf("Quarter check: %s", chart.Warning)
	}

	templ.Handler(templates.ChartPage(chart, chartSVG(chart))).ServeHTTP(w, r)
}

// chartHandler re-renders only the chart, for resize.
func (s *Server) chartHandler(w http.ResponseWriter, r *http.Request) {
	payload, err := s.store.Get()
	if err == nil {
		var chart *models.Chart
		chart, err = models.Render(payload.Body, s.width(r))
		if err == nil {
			templ.Handler(templates.ChartFragment(chartSVG(chart))).ServeHTTP(w, r)
			return
		}
	}
	log.Printf("Failed to render chart fragment: %v", err)
	templ.Handler(templates.ErrorFragment(errorMessage(err)), templ.WithStatus(errorStatus(err))).ServeHTTP(w, r)
}

func (s *Server) echartsHandler(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := generateBarChart(ds).Render(&buf); err != nil {
		http.Error(w, "Failed to render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, ds); err != nil {
		log.Printf("Failed to export workbook: %v", err)
		http.Error(w, "Failed to export workbook", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="gdp.xlsx"`)
	w.Write(buf.Bytes())
}

func (s *Server) apiDataHandler(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	writeJSON(w, ds)
}

func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}

	log.Println("Refresh endpoint triggered")
	if err := s.Load(r.Context()); err != nil {
		log.Printf("Refresh failed: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type healthResponse struct {
	Loaded    bool      `json:"loaded"`
	Origin    string    `json:"origin,omitempty"`
	Location  string    `json:"location,omitempty"`
	FetchedAt time.Time `json:"fetched_at,omitzero"`
	Error     string    `json:"error,omitempty"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	var resp healthResponse
	if payload, err := s.store.Get(); err == nil {
		resp.Loaded = true
		resp.Origin = string(payload.Origin)
		resp.Location = payload.Location
		resp.FetchedAt = payload.FetchedAt
	}
	// a failed refresh keeps serving the previous payload
	if err := s.store.LastError(); err != nil {
		resp.Error = err.Error()
	} else if !resp.Loaded {
		resp.Error = models.ErrNotLoaded.Error()
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
