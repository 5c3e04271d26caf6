// Package devserver is an HTTP debug surface over a running page: it lists
// widgets, drives carousel and toggler actions and serves Prometheus
// metrics. Every handler hops onto the loop goroutine before touching a
// widget.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chrisuehlinger/swipekit/carousel"
	"github.com/chrisuehlinger/swipekit/js"
	"github.com/chrisuehlinger/swipekit/metrics"
	"github.com/chrisuehlinger/swipekit/toggler"
	"github.com/chrisuehlinger/swipekit/widget"
)

var (
	errUnknownAction = errors.New("unknown action")
	errUnsupported   = errors.New("action not supported by widget type")
	errRejected      = errors.New("widget rejected the action")
)

// Server serves the debug API for one registry.
type Server struct {
	reg     *widget.Registry
	loop    *js.Loop
	logger  *slog.Logger
	metrics *metrics.Collector
	timeout time.Duration
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics exposes c on /metrics.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) { s.metrics = c }
}

// WithTimeout bounds how long a request waits for the loop.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// New creates a server for reg. The registry's loop must be running.
func New(reg *widget.Registry, opts ...Option) *Server {
	s := &Server{
		reg:     reg,
		loop:    reg.Loop(),
		logger:  reg.Logger(),
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "devserver")

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/widgets", s.handleList)
	r.Route("/widgets/{id}", func(r chi.Router) {
		r.Get("/", s.handleGet)
		r.Post("/jump/{index}", s.handleJump)
		r.Post("/{action}", s.handleAction)
	})
	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	}
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("debug server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

// onLoop runs fn on the loop goroutine, answering 503 when the loop does
// not pick it up in time.
func (s *Server) onLoop(w http.ResponseWriter, r *http.Request, fn func()) bool {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	if err := s.loop.Do(ctx, fn); err != nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("loop unavailable: %w", err))
		return false
	}
	return true
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var infos []widget.Info
	if !s.onLoop(w, r, func() { infos = s.reg.Snapshot() }) {
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := widgetID(w, r)
	if !ok {
		return
	}
	var (
		info  widget.Info
		found bool
	)
	if !s.onLoop(w, r, func() {
		if wd := s.reg.Fetch(id); wd != nil {
			info, found = s.reg.Describe(wd), true
		}
	}) {
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, fmt.Errorf("widget %d not found", id))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	id, ok := widgetID(w, r)
	if !ok {
		return
	}
	action := chi.URLParam(r, "action")
	s.mutate(w, r, id, func(wd widget.Widget) error {
		return s.apply(wd, action)
	})
}

func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	id, ok := widgetID(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid index: %w", err))
		return
	}
	s.mutate(w, r, id, func(wd widget.Widget) error {
		c, ok := wd.(*carousel.Carousel)
		if !ok {
			return errUnsupported
		}
		if c.Infinite() {
			index++
		}
		if !c.JumpTo(index) {
			return errRejected
		}
		return nil
	})
}

// mutate runs fn against widget id on the loop and answers with the
// widget's state afterwards.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, id int, fn func(widget.Widget) error) {
	var (
		info  widget.Info
		found bool
		err   error
	)
	if !s.onLoop(w, r, func() {
		wd := s.reg.Fetch(id)
		if wd == nil {
			return
		}
		found = true
		err = fn(wd)
		if s.reg.Fetch(id) != nil {
			info = s.reg.Describe(wd)
		}
	}) {
		return
	}

	switch {
	case !found:
		writeError(w, http.StatusNotFound, fmt.Errorf("widget %d not found", id))
	case errors.Is(err, errUnknownAction), errors.Is(err, errUnsupported):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, errRejected):
		writeError(w, http.StatusConflict, err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeJSON(w, http.StatusOK, info)
	}
}

func (s *Server) apply(wd widget.Widget, action string) error {
	switch action {
	case "freeze":
		s.reg.Freeze(wd.ID(), true)
		return nil
	case "unfreeze":
		s.reg.Unfreeze(wd.ID())
		return nil
	case "next", "prev", "autoscroll-on", "autoscroll-off":
		c, ok := wd.(*carousel.Carousel)
		if !ok {
			return fmt.Errorf("%s on %s: %w", action, wd.Type(), errUnsupported)
		}
		var done bool
		switch action {
		case "next":
			done = c.SlideForward(false)
		case "prev":
			done = c.SlideBackward(false)
		case "autoscroll-on":
			done = c.AutoscrollOn()
		default:
			done = c.AutoscrollOff()
		}
		if !done {
			return fmt.Errorf("%s: %w", action, errRejected)
		}
		return nil
	case "open", "close", "toggle":
		t, ok := wd.(*toggler.Toggler)
		if !ok {
			return fmt.Errorf("%s on %s: %w", action, wd.Type(), errUnsupported)
		}
		switch action {
		case "open":
			t.Open()
		case "close":
			t.Close()
		default:
			t.Toggle(t.Button())
		}
		return nil
	}
	return fmt.Errorf("%q: %w", action, errUnknownAction)
}

func widgetID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid widget id %q", chi.URLParam(r, "id")))
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
