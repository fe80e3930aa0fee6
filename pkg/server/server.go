// Package server exposes collections over HTTP.
//
// Routes:
//
//	POST /v1/collect                  run a collection (body: pipeline.Options)
//	GET  /v1/versions/{group}/{name}  list known versions of an artifact
//	GET  /healthz                     liveness and build version
//	GET  /metrics                     Prometheus metrics
//
// A collect response carries the flattened graph, its statistics and any
// recorded errors. Partial failures answer 200 with a non-empty errors
// list; a root that could not be collected answers 422.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/depcollect/pkg/buildinfo"
	errs "github.com/matzehuels/depcollect/pkg/errors"
	"github.com/matzehuels/depcollect/pkg/graph"
	pkgio "github.com/matzehuels/depcollect/pkg/io"
	"github.com/matzehuels/depcollect/pkg/pipeline"
)

const (
	// DefaultTimeout bounds a single collect request.
	DefaultTimeout = 2 * time.Minute

	maxBodyBytes = 1 << 20
)

// Options configures a Server.
type Options struct {
	Logger   *log.Logger
	Registry *prometheus.Registry // served on /metrics; nil disables the route
	Timeout  time.Duration        // default: DefaultTimeout
}

// Server routes HTTP requests to a pipeline.Runner.
type Server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	timeout time.Duration
	router  chi.Router
}

// New builds the router.
func New(runner *pipeline.Runner, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	s := &Server{runner: runner, logger: opts.Logger, timeout: opts.Timeout}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if opts.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/collect", s.handleCollect)
		r.Get("/versions/{group}/{name}", s.handleVersions)
	})
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// CollectResponse is the body of a collect response.
type CollectResponse struct {
	RequestID  string          `json:"request_id"`
	Root       string          `json:"root,omitempty"`
	Graph      json.RawMessage `json:"graph,omitempty"`
	Stats      *graph.Stats    `json:"stats,omitempty"`
	Errors     []string        `json:"errors,omitempty"`
	DurationMS int64           `json:"duration_ms"`
}

type errorResponse struct {
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	Message   string `json:"message"` // without code and cause
	Error     string `json:"error"`
}

func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		s.writeError(w, r, http.StatusBadRequest, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if err := opts.Validate(); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if opts.RequestContext == "" {
		opts.RequestContext = "api"
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	res, err := s.runner.Collect(ctx, opts)
	if res == nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	out := CollectResponse{
		RequestID:  RequestID(r.Context()),
		Errors:     res.Messages(),
		DurationMS: res.Duration.Milliseconds(),
	}
	status := http.StatusOK
	if res.Failed() {
		status = http.StatusUnprocessableEntity
	} else {
		out.Root = pkgio.Line(res.Collection.Root, false)
		out.Stats = &res.Stats
		var buf bytes.Buffer
		if werr := pkgio.WriteGraph(res.Collection.Root, &buf); werr != nil {
			s.writeError(w, r, http.StatusInternalServerError, werr)
			return
		}
		out.Graph = buf.Bytes()
	}
	writeJSON(w, status, out)
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	group, name := chi.URLParam(r, "group"), chi.URLParam(r, "name")
	versions, err := s.runner.Versions(r.Context(), group, name)
	if err != nil {
		status := http.StatusBadGateway
		switch errs.GetCode(err) {
		case errs.ErrCodeInvalidInput:
			status = http.StatusBadRequest
		case errs.ErrCodeVersionRange, errs.ErrCodeArtifactNotFound:
			status = http.StatusNotFound
		}
		s.writeError(w, r, status, err)
		return
	}
	if versions == nil {
		versions = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"group": group, "name": name, "versions": versions})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	s.logger.Debug("request failed", "request_id", RequestID(r.Context()), "status", status, "error", err)
	writeJSON(w, status, errorResponse{
		RequestID: RequestID(r.Context()),
		Code:      string(code),
		Message:   errs.UserMessage(err),
		Error:     err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
