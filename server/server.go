package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gdpchart/downloader"
	"github.com/gdpchart/models"
)

type Config struct {
	Port  string
	Width int
}

// Server loads the GDP payload once and renders it for every request.
type Server struct {
	cfg    Config
	loader *downloader.Loader
	store  *models.DataStore
}

func New(loader *downloader.Loader, cfg Config) *Server {
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Width <= 0 {
		cfg.Width = models.DefaultWidth
	}
	return &Server{
		cfg:    cfg,
		loader: loader,
		store:  &models.DataStore{},
	}
}

// Load runs the loader and stores whatever it produced, payload or error.
func (s *Server) Load(ctx context.Context) error {
	if s.loader == nil {
		return errors.New("no loader configured")
	}
	payload, err := s.loader.Load(ctx)
	s.store.Set(payload, err)
	if err != nil {
		log.Printf("Failed to load GDP data: %v", err)
		return err
	}
	log.Printf("GDP data loaded from %s source %s (%d bytes)", payload.Origin, payload.Location, len(payload.Body))
	return nil
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.indexHandler)
	mux.HandleFunc("/chart", s.chartHandler)
	mux.HandleFunc("/echarts", s.echartsHandler)
	mux.HandleFunc("/export.xlsx", s.exportHandler)
	mux.HandleFunc("/api/data", s.apiDataHandler)
	mux.HandleFunc("/refresh", s.refreshHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return loggingMiddleware(mux)
}

func (s *Server) URL() string {
	return "http://localhost:" + s.cfg.Port
}

// ListenAndServe serves until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.URL())
		log.Printf("Visit %s to see the chart", s.URL())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Println("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
