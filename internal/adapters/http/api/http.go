// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/app"
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/domain/model"
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/domain/optimizer"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// ValidateOne validates a single raw payload of the given kind.
	ValidateOne(ctx context.Context, raw string, kind model.RecordKind, reqCtx model.RequestContext) service.Result

	// ValidateBatch validates a collection under bounded concurrency.
	ValidateBatch(ctx context.Context, items []service.BatchItem, kind model.RecordKind, opts service.BatchOptions) (service.BatchResult, error)

	// Read operations expose service statistics and tuning advice.
	GetStats() map[string]interface{}
	Report(ctx context.Context) optimizer.Report
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	validateHandler *ValidateHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		validateHandler: NewValidateHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/validate/batch", MetricsMiddleware(s.validateHandler.HandleValidateBatch, "validate_batch"))
	mux.HandleFunc("/validate", MetricsMiddleware(s.validateHandler.HandleValidate, "validate"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
