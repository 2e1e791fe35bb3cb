// Package server exposes the dashboard tables over HTTP.
//
// All handlers read one immutable report. The selection state is sent by the
// client with every request and returned updated, so the server keeps no
// per-user memory.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/verte-zerg/derdie/internal/charts"
	"github.com/verte-zerg/derdie/internal/selection"
	"github.com/verte-zerg/derdie/internal/stats"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

const shutdownTimeout = 5 * time.Second

// Config holds server configuration.
type Config struct {
	Addr   string
	Top    int
	Logger *zap.Logger
}

// Server serves one report snapshot.
type Server struct {
	router  *chi.Mux
	report  stats.Report
	machine *selection.Machine
	charts  charts.ChartConfig
	top     int
	addr    string
	log     *zap.Logger
}

// New creates a server for the report.
func New(report stats.Report, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	top := cfg.Top
	if top == 0 {
		top = stats.DefaultTop
	}
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	chartCfg := charts.DefaultChartConfig()
	chartCfg.Top = top

	s := &Server{
		router:  chi.NewRouter(),
		report:  report,
		machine: selection.NewMachine(report),
		charts:  chartCfg,
		top:     top,
		addr:    addr,
		log:     logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/endings", s.handleEndings)
		r.Get("/exceptions", s.handleExceptions)
		r.Get("/summary", s.handleSummary)
		r.Get("/key-endings", s.handleKeyEndings)
		r.Post("/select", s.handleSelect)
	})

	s.router.Get("/charts/{page}", s.handleChart)
	s.router.Get("/export.xlsx", s.handleExport)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.addr), zap.Int("nouns", s.report.Nouns))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
