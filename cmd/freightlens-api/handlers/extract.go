package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/freightlens/freightlens/internal/domain"
	"github.com/freightlens/freightlens/internal/extract"
	"github.com/freightlens/freightlens/internal/observability"
)

// ExtractHandler handles stateless field extraction requests.
type ExtractHandler struct {
	logger    *observability.Logger
	extractor *extract.Service
	maxUpload int64
}

// NewExtractHandler creates an extraction handler.
func NewExtractHandler(logger *observability.Logger, extractor *extract.Service, maxUpload int64) *ExtractHandler {
	if maxUpload <= 0 {
		maxUpload = 32 << 20
	}
	return &ExtractHandler{
		logger:    logger.WithComponent("api.extract"),
		extractor: extractor,
		maxUpload: maxUpload,
	}
}

type extractRequest struct {
	Text         string `json:"text,omitempty"`
	ImageDataURL string `json:"imageDataUrl,omitempty"`
}

type extractResponse struct {
	Success     bool            `json:"success"`
	Data        json.RawMessage `json:"data,omitempty"`
	ExtractedAt time.Time       `json:"extractedAt"`
}

// ShippingOrder handles POST /api/v1/extract.
func (h *ExtractHandler) ShippingOrder(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, extract.SchemaShippingOrder)
}

// Invoice handles POST /api/v1/extract/invoice.
func (h *ExtractHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, extract.SchemaInvoice)
}

// handle accepts either a binary image body (image/*), or a JSON body
// carrying {text} or {imageDataUrl}. The schema is fixed by the route.
func (h *ExtractHandler) handle(w http.ResponseWriter, r *http.Request, variant extract.SchemaVariant) {
	contentType := r.Header.Get("Content-Type")

	var (
		data json.RawMessage
		err  error
	)
	switch {
	case strings.HasPrefix(contentType, "image/"):
		var body []byte
		body, err = io.ReadAll(io.LimitReader(r.Body, h.maxUpload+1))
		if err != nil {
			writeError(w, domain.ValidationError("failed to read image body", err))
			return
		}
		if int64(len(body)) > h.maxUpload {
			writeError(w, domain.ValidationError(fmt.Sprintf("image exceeds the %d byte limit", h.maxUpload), nil))
			return
		}
		dataURL := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(body)
		data, err = h.extractor.ExtractImage(r.Context(), dataURL, variant)

	default:
		var req extractRequest
		if decodeErr := json.NewDecoder(io.LimitReader(r.Body, h.maxUpload)).Decode(&req); decodeErr != nil {
			writeError(w, domain.ValidationError("invalid request body", decodeErr))
			return
		}
		switch {
		case req.ImageDataURL != "":
			data, err = h.extractor.ExtractImage(r.Context(), req.ImageDataURL, variant)
		case req.Text != "":
			data, err = h.extractor.ExtractText(r.Context(), req.Text, variant)
		default:
			writeError(w, domain.ValidationError("supply an image body, imageDataUrl, or text", nil))
			return
		}
	}

	if err != nil {
		h.logger.Warn().Str("schema", string(variant)).Err(err).Msg("Extraction failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, extractResponse{
		Success:     true,
		Data:        data,
		ExtractedAt: time.Now().UTC(),
	})
}
