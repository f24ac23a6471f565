// Package webview serves a read-only browser preview of one dialog's
// transcript: the same HTML document the file exporter writes, rendered
// on the fly, plus raw media blobs by content reference.
package webview

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tOgg1/scrollback/internal/archive"
	"github.com/tOgg1/scrollback/internal/export"
	"github.com/tOgg1/scrollback/internal/logging"
	"github.com/tOgg1/scrollback/internal/transcript"
)

// Config carries the server's tunables from the CLI layer.
type Config struct {
	Addr        string
	CORSOrigins []string
	Location    *time.Location
	DateFormat  string
	TimeFormat  string
}

// Server renders one session over HTTP. It never writes to the archive.
type Server struct {
	cfg     Config
	session *archive.Session
	log     zerolog.Logger

	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewServer wires the handlers over an already-open session. The caller
// is expected to have loaded the full transcript window beforehand.
func NewServer(cfg Config, session *archive.Session) *Server {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scrollback_http_requests_total",
		Help: "HTTP requests served, by route and status code.",
	}, []string{"route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scrollback_http_request_duration_seconds",
		Help:    "HTTP request latency, by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	registry.MustRegister(requests, duration)

	return &Server{
		cfg:      cfg,
		session:  session,
		log:      logging.Component("webview"),
		registry: registry,
		requests: requests,
		duration: duration,
	}
}

// Router builds the chi router with the full middleware stack.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/", s.instrument("transcript", s.handleTranscript))
	r.Get("/media/{ref}", s.instrument("media", s.handleMedia))
	r.Get("/healthz", s.instrument("healthz", s.handleHealthz))
	r.Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return r
}

// ListenAndServe blocks until the context is cancelled or the listener
// fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info().Str("addr", s.cfg.Addr).Msg("webview listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	snap := s.session.Snapshot()

	doc := export.Document{
		Title:        snap.Dialog.Name,
		Period:       snap.Period,
		Messages:     transcript.Filter(snap.Messages),
		Participants: snap.Participants,
		Bytes:        s.session.Store(),
		Location:     s.cfg.Location,
		DateFormat:   s.cfg.DateFormat,
		TimeFormat:   s.cfg.TimeFormat,
	}

	var buf bytes.Buffer
	if err := doc.Serialize(&buf); err != nil {
		s.log.Error().Err(err).Msg("transcript render failed")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", export.HTMLMIME)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")

	data, ok := s.session.Store().Get(ref)
	if !ok {
		http.Error(w, "media not found", http.StatusNotFound)
		return
	}

	mime := s.mediaMIME(ref)
	if mime == "" {
		mime = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "max-age=86400")
	_, _ = w.Write(data)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// mediaMIME looks the reference's recorded MIME up in the loaded
// window. References outside the window fall back to octet-stream.
func (s *Server) mediaMIME(ref string) string {
	snap := s.session.Snapshot()
	for _, msg := range snap.Messages {
		if msg.Media != nil && msg.Media.ContentRef == ref {
			return msg.Media.MIME
		}
	}
	return ""
}

func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next(ww, r)
		s.requests.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
		s.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
