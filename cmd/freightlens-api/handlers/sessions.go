package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/freightlens/freightlens/internal/domain"
	"github.com/freightlens/freightlens/internal/extract"
	"github.com/freightlens/freightlens/internal/observability"
	"github.com/freightlens/freightlens/internal/session"
)

// SessionHandler handles the document workflow endpoints.
type SessionHandler struct {
	logger    *observability.Logger
	manager   *session.Manager
	maxUpload int64
}

// NewSessionHandler creates a session workflow handler.
func NewSessionHandler(logger *observability.Logger, manager *session.Manager, maxUpload int64) *SessionHandler {
	if maxUpload <= 0 {
		maxUpload = 32 << 20
	}
	return &SessionHandler{
		logger:    logger.WithComponent("api.sessions"),
		manager:   manager,
		maxUpload: maxUpload,
	}
}

// Create handles POST /api/v1/sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, err := h.manager.Create(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

// Get handles GET /api/v1/sessions/{sessionID}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.manager.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Delete handles DELETE /api/v1/sessions/{sessionID}.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Upload handles POST /api/v1/sessions/{sessionID}/upload.
func (h *SessionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	pdf, fileName, err := readPDF(r, h.maxUpload)
	if err != nil {
		writeError(w, err)
		return
	}
	if fileName == "" {
		fileName = "document.pdf"
	}

	s, err := h.manager.Upload(r.Context(), chi.URLParam(r, "sessionID"), fileName, pdf)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

type selectionRequest struct {
	Pages []int `json:"pages"`
	All   *bool `json:"all"`
}

// Selection handles PUT /api/v1/sessions/{sessionID}/selection.
func (h *SessionHandler) Selection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ValidationError("invalid request body", err))
		return
	}
	if req.All == nil && req.Pages == nil {
		writeError(w, domain.ValidationError("supply pages or all", nil))
		return
	}

	s, err := h.manager.Select(r.Context(), chi.URLParam(r, "sessionID"), session.Selection{
		Pages: req.Pages,
		All:   req.All,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

type extractTriggerRequest struct {
	Schema string `json:"schema,omitempty"`
}

// Extract handles POST /api/v1/sessions/{sessionID}/extract. The body is
// optional; {"schema":"invoice"} switches the target schema.
func (h *SessionHandler) Extract(w http.ResponseWriter, r *http.Request) {
	variant := extract.SchemaShippingOrder
	if r.Body != nil && r.ContentLength != 0 {
		var req extractTriggerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, domain.ValidationError("invalid request body", err))
			return
		}
		switch req.Schema {
		case "", string(extract.SchemaShippingOrder):
		case string(extract.SchemaInvoice):
			variant = extract.SchemaInvoice
		default:
			writeError(w, domain.ValidationError("unknown schema "+req.Schema, nil))
			return
		}
	}

	s, err := h.manager.Extract(r.Context(), chi.URLParam(r, "sessionID"), variant)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

type comparisonRequest struct {
	FirstSessionID  string `json:"firstSessionId"`
	SecondSessionID string `json:"secondSessionId"`
}

// Compare handles POST /api/v1/comparisons.
func (h *SessionHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req comparisonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ValidationError("invalid request body", err))
		return
	}
	if req.FirstSessionID == "" || req.SecondSessionID == "" {
		writeError(w, domain.ValidationError("firstSessionId and secondSessionId are both required", nil))
		return
	}

	result, err := h.manager.Compare(r.Context(), req.FirstSessionID, req.SecondSessionID)
	if err != nil && result == nil {
		writeError(w, err)
		return
	}
	if err != nil {
		// The comparison ran and failed; the outcome is recorded for the
		// pair and surfaced with the upstream status.
		writeJSON(w, domain.StatusOf(err), result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetComparison handles GET /api/v1/comparisons/{firstSessionID}/{secondSessionID}.
func (h *SessionHandler) GetComparison(w http.ResponseWriter, r *http.Request) {
	rec, err := h.manager.Comparison(
		r.Context(),
		chi.URLParam(r, "firstSessionID"),
		chi.URLParam(r, "secondSessionID"),
	)
	if errors.Is(err, session.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no comparison recorded for this pair"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
