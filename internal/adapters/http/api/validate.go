// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/app"
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/domain/model"
)

// ValidateHandler handles single and batch validation requests.
type ValidateHandler struct {
	deps Dependencies
}

// NewValidateHandler creates a new validation handler.
func NewValidateHandler(deps Dependencies) *ValidateHandler {
	return &ValidateHandler{deps: deps}
}

// validateRequest mirrors the wire schema for POST /validate.
type validateRequest struct {
	Payload   string `json:"payload"`
	Kind      string `json:"kind"`
	SessionID string `json:"sessionId,omitempty"`
	ModelID   string `json:"modelId,omitempty"`
}

func (v validateRequest) validate() error {
	switch {
	case strings.TrimSpace(v.Payload) == "":
		return errors.New("missing payload")
	case strings.TrimSpace(v.Kind) == "":
		return errors.New("missing kind")
	}
	return nil
}

// batchRequest mirrors the wire schema for POST /validate/batch.
type batchRequest struct {
	Items []struct {
		ID      string `json:"id,omitempty"`
		Payload string `json:"payload"`
	} `json:"items"`
	Kind          string `json:"kind"`
	Concurrency   int    `json:"concurrency,omitempty"`
	BatchSizeHint int    `json:"batchSizeHint,omitempty"`
}

func (b batchRequest) validate() error {
	switch {
	case len(b.Items) == 0:
		return errors.New("missing items")
	case strings.TrimSpace(b.Kind) == "":
		return errors.New("missing kind")
	}
	return nil
}

// HandleValidate handles POST /validate requests.
func (h *ValidateHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	const op = "api.validate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	kind, err := model.ParseKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_kind", WrapKind(op, ErrBadRequest, err))
		return
	}

	res := h.deps.ValidateOne(r.Context(), req.Payload, kind, model.RequestContext{
		SessionID: req.SessionID,
		ModelID:   req.ModelID,
	})
	writeJSON(w, http.StatusOK, res)
}

// HandleValidateBatch handles POST /validate/batch requests.
func (h *ValidateHandler) HandleValidateBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.validate_batch"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	kind, err := model.ParseKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_kind", WrapKind(op, ErrBadRequest, err))
		return
	}

	items := make([]service.BatchItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.BatchItem{Raw: it.Payload, ID: it.ID}
	}

	out, err := h.deps.ValidateBatch(r.Context(), items, kind, service.BatchOptions{
		Concurrency:   req.Concurrency,
		BatchSizeHint: req.BatchSizeHint,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidOptions) {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
