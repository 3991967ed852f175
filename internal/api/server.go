// Package api serves the camera registry, drone alert feed and perimeter
// coverage over HTTP and websocket.
package api

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"heimdall/internal/alert"
	"heimdall/internal/camera"
	"heimdall/internal/feed"
	"heimdall/internal/logging"
	"heimdall/internal/monitor"
)

//go:embed templates/index.html
var content embed.FS

// requestTimeout bounds every non-streaming request.
const requestTimeout = 30 * time.Second

// Config wires a Server.
type Config struct {
	Monitor *monitor.Monitor
	Cameras camera.Registry
	Alerts  *alert.Store
	Feeds   *feed.Manager
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	// Workers bounds the what-if analysis worker pool.
	Workers int
	Logger  *slog.Logger
}

// Server is the HTTP surface of the perimeter service.
type Server struct {
	monitor *monitor.Monitor
	cameras camera.Registry
	alerts  *alert.Store
	feeds   *feed.Manager
	metrics http.Handler
	workers int
	log     *slog.Logger
	tpl     *template.Template
	now     func() time.Time
}

// NewServer returns a Server. A nil feed manager or logger gets a default.
func NewServer(cfg Config) *Server {
	tpl := template.Must(template.New("index.html").Funcs(template.FuncMap{
		"pct": formatPercent,
		"inc": func(i int) int { return i + 1 },
	}).ParseFS(content, "templates/index.html"))
	feeds := cfg.Feeds
	if feeds == nil {
		feeds = feed.NewManager()
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Server{
		monitor: cfg.Monitor,
		cameras: cfg.Cameras,
		alerts:  cfg.Alerts,
		feeds:   feeds,
		metrics: cfg.Metrics,
		workers: workers,
		log:     log,
		tpl:     tpl,
		now:     time.Now,
	}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.withLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/ws/coverage", s.handleCoverageStream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			s.cameraRoutes(r)
			s.alertRoutes(r)
			s.coverageRoutes(r)
		})
	})
	r.With(middleware.Timeout(requestTimeout)).Get("/", s.handleIndex)
	return r
}

// withLogger logs each request and carries the server logger on the
// request context.
func (s *Server) withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		log := s.log.With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(ww, r.WithContext(logging.NewContext(r.Context(), log)))
		log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

// Start serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Site    string `json:"site"`
	Cameras int    `json:"cameras"`
	Alerts  int    `json:"alerts"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	cams, err := s.cameras.List(r.Context())
	if err != nil {
		s.internalError(w, r, "health check failed", err)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Site:    s.monitor.SiteID(),
		Cameras: len(cams),
		Alerts:  s.alerts.Len(),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.monitor.Latest()
	if !ok {
		var err error
		if snap, err = s.monitor.Refresh(r.Context()); err != nil {
			s.internalError(w, r, "failed to compute coverage", err)
			return
		}
	}
	data := struct {
		Snapshot monitor.Snapshot
		Alerts   []alert.Alert
	}{
		Snapshot: snap,
		Alerts:   s.alerts.List(alert.Filter{Status: string(alert.StatusActive)}),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, data); err != nil {
		logging.FromContext(r.Context()).Error("render index", "err", err)
	}
}

// refresh recomputes coverage after a registry or perimeter change.
func (s *Server) refresh(r *http.Request) {
	if _, err := s.monitor.Refresh(r.Context()); err != nil {
		logging.FromContext(r.Context()).Error("coverage refresh failed", "err", err)
	}
}
