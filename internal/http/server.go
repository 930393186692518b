// Package http serves the conversion form, the JSON API and the operational endpoints.
package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"songbridge/internal/core"
	"songbridge/internal/flood"
	"songbridge/internal/i18n"
)

const shutdownTimeout = 10 * time.Second

// Converter is the conversion entry point the handlers depend on.
type Converter interface {
	Convert(ctx context.Context, rawURL string) (*core.Result, error)
	MissingCredentials() []string
}

type Server struct {
	config    *core.ServerConfig
	converter Converter
	floodgate *flood.Floodgate
	language  string
	templates *template.Template
	logger    *zap.Logger
	server    *http.Server
	metrics   *Metrics
}

// NewServer wires the routes. floodgate may be nil to disable rate limiting.
func NewServer(config *core.ServerConfig, converter Converter, floodgate *flood.Floodgate, language string,
	logger *zap.Logger) (*Server, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	if floodgate == nil {
		floodgate = flood.New(0)
	}

	s := &Server{
		config:    config,
		converter: converter,
		floodgate: floodgate,
		language:  language,
		templates: templates,
		logger:    logger,
		metrics:   NewMetrics(),
	}
	s.server = createHTTPServer(config, s.setupRoutes())

	return s, nil
}

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /convert", s.handleConvert)
	mux.HandleFunc("GET /api/convert", s.handleAPIConvert)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))

	return mux
}

func createHTTPServer(config *core.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:           handler,
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadTimeout,
		WriteTimeout:      config.WriteTimeout,
	}
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
		s.floodgate.Stop()
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// localizer picks the language from the lang query parameter, falling back to the configured one.
func (s *Server) localizer(r *http.Request) *i18n.Localizer {
	if lang := r.URL.Query().Get("lang"); i18n.IsSupported(lang) {
		return i18n.NewLocalizer(lang)
	}
	return i18n.NewLocalizer(s.language)
}
