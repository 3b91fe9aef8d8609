package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/freightlens/freightlens/internal/convert"
	"github.com/freightlens/freightlens/internal/domain"
	"github.com/freightlens/freightlens/internal/observability"
)

// ConvertHandler handles stateless PDF-to-image conversion requests.
type ConvertHandler struct {
	logger    *observability.Logger
	converter convert.Converter
	maxUpload int64
}

// NewConvertHandler creates a conversion handler.
func NewConvertHandler(logger *observability.Logger, converter convert.Converter, maxUpload int64) *ConvertHandler {
	if maxUpload <= 0 {
		maxUpload = convert.MaxPDFBytes
	}
	return &ConvertHandler{
		logger:    logger.WithComponent("api.convert"),
		converter: converter,
		maxUpload: maxUpload,
	}
}

type convertResponse struct {
	Success bool               `json:"success"`
	Pages   []domain.PageImage `json:"pages"`
}

// Convert handles POST /api/v1/convert. The PDF arrives either as a
// multipart form field named "file" or as a raw application/pdf body.
func (h *ConvertHandler) Convert(w http.ResponseWriter, r *http.Request) {
	pdf, _, err := readPDF(r, h.maxUpload)
	if err != nil {
		writeError(w, err)
		return
	}

	pages, err := h.converter.Convert(r.Context(), pdf)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Conversion failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, convertResponse{Success: true, Pages: pages})
}

// readPDF extracts the PDF body from a request, returning the bytes and
// the original file name when one was supplied.
func readPDF(r *http.Request, maxUpload int64) ([]byte, string, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUpload); err != nil {
			return nil, "", domain.ValidationError("invalid multipart form", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", domain.ValidationError(`multipart field "file" is required`, err)
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxUpload+1))
		if err != nil {
			return nil, "", domain.ValidationError("failed to read uploaded file", err)
		}
		if int64(len(data)) > maxUpload {
			return nil, "", domain.ValidationError("uploaded file exceeds the size limit", nil)
		}
		return data, header.Filename, nil
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxUpload+1))
	if err != nil {
		return nil, "", domain.ValidationError("failed to read request body", err)
	}
	if int64(len(data)) > maxUpload {
		return nil, "", domain.ValidationError("request body exceeds the size limit", nil)
	}
	return data, "", nil
}
