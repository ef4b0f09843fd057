// Package server exposes name resolution over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/namecord/internal/core/domain"
	"github.com/vietddude/namecord/internal/core/worker"
	"github.com/vietddude/namecord/internal/infra/btn"
	"github.com/vietddude/namecord/internal/infra/pacing"
	"github.com/vietddude/namecord/internal/links"
	"github.com/vietddude/namecord/internal/resolve/resolver"
)

// NameResolver runs one resolution. *worker.Pool satisfies it.
type NameResolver interface {
	Resolve(ctx context.Context, req resolver.Request) (domain.ResolvedName, error)
}

// ProfileLookup checks profile pages. *links.Checker satisfies it.
type ProfileLookup interface {
	Lookup(ctx context.Context, names []string) (links.About, error)
}

// ProviderMonitor reports provider health. *btn.Monitor satisfies it.
type ProviderMonitor interface {
	Status() btn.Status
	Stats() btn.MonitorStats
}

// QuotaReporter reports the daily call budget. *pacing.Budget satisfies it.
type QuotaReporter interface {
	GetUsage() pacing.UsageStats
}

// Deps are the collaborators of the server. Monitor and Quota may be nil.
type Deps struct {
	Names   NameResolver
	About   ProfileLookup
	Monitor ProviderMonitor
	Quota   QuotaReporter
}

// Server provides the HTTP API plus health and metrics endpoints.
type Server struct {
	deps   Deps
	server *http.Server
	log    *slog.Logger
}

// NewServer creates a server listening on port.
func NewServer(deps Deps, port int) *Server {
	s := &Server{
		deps: deps,
		log:  slog.Default().With("component", "server"),
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/name", s.handleName)
		r.Get("/name/{first}", s.handleDebugName)
		r.Get("/about", s.handleAbout)
	})
	r.Get("/health", s.handleHealth)
	r.Get("/health/detailed", s.handleDetailed)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type nameLinks struct {
	First string `json:"first"`
	Last  string `json:"last,omitempty"`
}

type nameResponse struct {
	First    string    `json:"first"`
	Last     string    `json:"last,omitempty"`
	FullName string    `json:"full_name"`
	Mononym  bool      `json:"mononym"`
	Reason   string    `json:"reason,omitempty"`
	Attempts uint      `json:"attempts,omitempty"`
	Links    nameLinks `json:"links"`
}

func newNameResponse(name domain.ResolvedName) nameResponse {
	resp := nameResponse{
		First:    string(name.First),
		FullName: name.FullName(),
		Mononym:  name.IsMononym(),
		Links:    nameLinks{First: links.FirstNameURL(string(name.First))},
	}
	if name.IsMononym() {
		resp.Reason = name.LastErr.Message
		resp.Attempts = name.LastErr.Attempts
		return resp
	}
	resp.Last = string(name.Last)
	resp.Links.Last = links.LastNameURL(string(name.Last))
	return resp
}

func (s *Server) handleName(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.resolve(w, r, resolver.Request{
		Mode:   q.Get("mode"),
		Gender: q.Get("gender"),
	})
}

func (s *Server) handleDebugName(w http.ResponseWriter, r *http.Request) {
	s.resolve(w, r, resolver.Request{
		Gender:    r.URL.Query().Get("gender"),
		FirstName: chi.URLParam(r, "first"),
	})
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request, req resolver.Request) {
	name, err := s.deps.Names.Resolve(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newNameResponse(name))
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	var names []string
	for _, v := range r.URL.Query()["name"] {
		names = append(names, strings.Fields(v)...)
	}
	if len(names) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no name given"})
		return
	}

	about, err := s.deps.About.Lookup(r.Context(), names)
	if err != nil {
		s.log.Warn("Profile lookup failed", "names", names, "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "profile lookup failed"})
		return
	}
	if about.Fields == nil {
		about.Fields = []links.Field{}
	}
	writeJSON(w, http.StatusOK, about)
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := btn.StatusHealthy
	if s.deps.Monitor != nil {
		status = s.deps.Monitor.Status()
	}

	code := http.StatusOK
	if status == btn.StatusBlocked {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, healthResponse{Status: status.String()})
}

type detailedResponse struct {
	Status   string             `json:"status"`
	Provider *btn.MonitorStats  `json:"provider,omitempty"`
	Quota    *pacing.UsageStats `json:"quota,omitempty"`
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	resp := detailedResponse{Status: btn.StatusHealthy.String()}
	if s.deps.Monitor != nil {
		stats := s.deps.Monitor.Stats()
		resp.Status = stats.Status
		resp.Provider = &stats
	}
	if s.deps.Quota != nil {
		usage := s.deps.Quota.GetUsage()
		resp.Quota = &usage
	}
	writeJSON(w, http.StatusOK, resp)
}

type errorResponse struct {
	Error    string `json:"error"`
	Kind     string `json:"kind,omitempty"`
	Attempts uint   `json:"attempts,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var rerr *domain.ResolutionError
	switch {
	case errors.As(err, &rerr) && rerr.Kind == domain.KindInvalidInput:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: rerr.Message, Kind: string(rerr.Kind)})
	case errors.As(err, &rerr):
		s.log.Warn("Resolution failed", "request_id", middleware.GetReqID(r.Context()), "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:    "An error occurred.",
			Kind:     string(rerr.Kind),
			Attempts: rerr.Attempts,
		})
	case errors.Is(err, worker.ErrPoolClosed):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: err.Error()})
	default:
		s.log.Error("Unexpected resolution error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "An error occurred."})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
