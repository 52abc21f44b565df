// Package api exposes plate checks, lookup history, health and metrics over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/finecheck/internal/core/domain"
	"github.com/vietddude/finecheck/internal/lookup"
)

// Service is the lookup surface the API serves.
type Service interface {
	Check(ctx context.Context, plate string, vt domain.VehicleType) (domain.LookupEntry, error)
	History(ctx context.Context, plate string, limit int) ([]domain.LookupEntry, error)
}

// Server provides the HTTP endpoints.
type Server struct {
	service Service
	monitor *Monitor
	server  *http.Server
}

// NewServer creates a new API server.
func NewServer(service Service, monitor *Monitor, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		service: service,
		monitor: monitor,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	mux.HandleFunc("GET /check", s.handleCheck)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/detailed", s.handleDetailed)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	format, err := lookup.ParseFormat(q.Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	entry, err := s.service.Check(r.Context(), q.Get("plate"), domain.VehicleType(q.Get("type")))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	body, err := lookup.Render(entry.Plate, entry.Result(), format)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if format == lookup.FormatJSON {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.Header().Set("X-Lookup-Id", entry.ID)
	w.Header().Set("X-Cache", cacheHeader(entry.Cached))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = n
	}

	entries, err := s.service.History(r.Context(), q.Get("plate"), limit)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if entries == nil {
		entries = []domain.LookupEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.monitor.CheckHealth(r.Context())

	status := http.StatusOK
	if report.SystemStatus == StatusCritical {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"status": string(report.SystemStatus)})
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.CheckHealth(r.Context()))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidPlate), errors.Is(err, domain.ErrInvalidVehicleType):
		return http.StatusBadRequest
	case errors.Is(err, lookup.ErrHistoryDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func cacheHeader(cached bool) string {
	if cached {
		return "HIT"
	}
	return "MISS"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]any{"error": true, "message": err.Error()})
}
