// Package compare runs the structured discrepancy analysis over two
// extracted shipping-order records.
package compare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/freightlens/freightlens/internal/domain"
	"github.com/freightlens/freightlens/internal/llm"
	"github.com/freightlens/freightlens/internal/observability"
)

// Service is the order comparator.
type Service struct {
	completer llm.StructuredCompleter
	logger    *observability.Logger
}

// NewService creates a comparator on top of a structured completer.
func NewService(completer llm.StructuredCompleter, logger *observability.Logger) *Service {
	return &Service{
		completer: completer,
		logger:    logger.WithComponent("compare"),
	}
}

// emptyRecord reports whether a record carries no usable content.
func emptyRecord(r json.RawMessage) bool {
	trimmed := bytes.TrimSpace(r)
	return len(trimmed) == 0 ||
		bytes.Equal(trimmed, []byte("null")) ||
		bytes.Equal(trimmed, []byte("{}"))
}

// Compare accepts exactly two structured records of the same logical
// schema and returns the comparison. Fails with a comparison error when
// either input is absent or empty, or when the upstream call fails.
func (s *Service) Compare(ctx context.Context, order1, order2 json.RawMessage) (*domain.Comparison, error) {
	if emptyRecord(order1) || emptyRecord(order2) {
		return nil, domain.ComparisonError("both order records are required", nil)
	}

	start := time.Now()

	user := fmt.Sprintf("Order 1:\n%s\n\nOrder 2:\n%s", order1, order2)
	raw, err := s.completer.CompleteStructured(ctx, llm.StructuredRequest{
		System:     comparisonPrompt,
		Parts:      []llm.ContentPart{llm.TextPart(user)},
		SchemaName: "order_comparison",
		Schema:     llm.BuildComparisonSchema(),
	})
	if err != nil {
		return nil, domain.ComparisonError("compare orders", err)
	}

	var comparison domain.Comparison
	if err := json.Unmarshal(raw, &comparison); err != nil {
		return nil, domain.ComparisonError("decode comparison", err)
	}

	s.logger.Info().
		Int("discrepancies", len(comparison.Discrepancies)).
		Int("matches", len(comparison.Matches)).
		Float64("confidence", comparison.Analysis.OverallConfidence).
		Bool("needs_manual_review", comparison.NeedsManualReview()).
		Dur("elapsed", time.Since(start)).
		Msg("Orders compared")

	return &comparison, nil
}
