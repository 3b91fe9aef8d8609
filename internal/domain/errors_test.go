package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"validation is 400", ValidationError("no file supplied", nil), http.StatusBadRequest},
		{"configuration is 500", ConfigurationError("LLM_API_KEY not set", nil), http.StatusInternalServerError},
		{"conversion is 500", ConversionError("upstream returned 502", nil), http.StatusInternalServerError},
		{"extraction is 500", ExtractionError("model call failed", nil), http.StatusInternalServerError},
		{"comparison is 500", ComparisonError("model call failed", nil), http.StatusInternalServerError},
		{"upstream is 500", UpstreamError("service unavailable", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := ConversionError("upstream call failed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}

	wrapped := fmt.Errorf("convert document: %w", err)
	var de *Error
	if !errors.As(wrapped, &de) {
		t.Fatal("expected errors.As to find the domain error")
	}
	if de.Kind != KindConversion {
		t.Errorf("Kind = %q, want %q", de.Kind, KindConversion)
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(ValidationError("bad input", nil)); got != KindValidation {
		t.Errorf("KindOf(validation) = %q, want %q", got, KindValidation)
	}
	if got := KindOf(errors.New("plain")); got != KindUpstream {
		t.Errorf("KindOf(plain) = %q, want %q", got, KindUpstream)
	}
}

func TestStatusOf(t *testing.T) {
	if got := StatusOf(errors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("StatusOf(plain) = %d, want 500", got)
	}
	if got := StatusOf(fmt.Errorf("handler: %w", ValidationError("empty payload", nil))); got != http.StatusBadRequest {
		t.Errorf("StatusOf(wrapped validation) = %d, want 400", got)
	}
}
