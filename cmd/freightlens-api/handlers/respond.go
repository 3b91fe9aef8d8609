// Package handlers provides HTTP handlers for the FreightLens API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/freightlens/freightlens/internal/domain"
	"github.com/freightlens/freightlens/internal/session"
)

// errorResponse is the uniform error body for every endpoint.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain error kinds onto HTTP statuses. Unknown
// sessions map to 404; everything else follows the error's own status.
func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
		return
	}

	writeJSON(w, domain.StatusOf(err), errorResponse{
		Error: err.Error(),
		Kind:  string(domain.KindOf(err)),
	})
}
