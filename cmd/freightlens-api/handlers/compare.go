package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/freightlens/freightlens/internal/compare"
	"github.com/freightlens/freightlens/internal/domain"
	"github.com/freightlens/freightlens/internal/observability"
)

// CompareHandler handles stateless order comparison requests.
type CompareHandler struct {
	logger     *observability.Logger
	comparator *compare.Service
}

// NewCompareHandler creates a comparison handler.
func NewCompareHandler(logger *observability.Logger, comparator *compare.Service) *CompareHandler {
	return &CompareHandler{
		logger:     logger.WithComponent("api.compare"),
		comparator: comparator,
	}
}

type compareRequest struct {
	Order1 json.RawMessage `json:"order1"`
	Order2 json.RawMessage `json:"order2"`
}

// Compare handles POST /api/v1/compare with two extracted order records.
func (h *CompareHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ValidationError("invalid request body", err))
		return
	}
	if len(req.Order1) == 0 || len(req.Order2) == 0 {
		writeError(w, domain.ValidationError("order1 and order2 are both required", nil))
		return
	}

	comparison, err := h.comparator.Compare(r.Context(), req.Order1, req.Order2)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Comparison failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domain.ComparisonResult{
		Success:           true,
		Comparison:        comparison,
		NeedsManualReview: comparison.NeedsManualReview(),
		ComparedAt:        time.Now().UTC(),
	})
}
