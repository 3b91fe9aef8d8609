// Package extract runs structured field extraction over page images or
// raw text against a fixed target schema.
package extract

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/freightlens/freightlens/internal/domain"
	"github.com/freightlens/freightlens/internal/llm"
	"github.com/freightlens/freightlens/internal/observability"
)

// SchemaVariant selects the target field schema. The variant is chosen by
// which endpoint is called, never by branching on content.
type SchemaVariant string

const (
	// SchemaShippingOrder is the generic shipping-order schema.
	SchemaShippingOrder SchemaVariant = "shipping_order"
	// SchemaInvoice is the domain-specific invoice schema.
	SchemaInvoice SchemaVariant = "invoice"
)

// Service is the field extractor. It performs no validation beyond what
// the schema constraint enforces; it trusts the upstream to conform.
type Service struct {
	completer llm.StructuredCompleter
	logger    *observability.Logger
}

// NewService creates a field extractor on top of a structured completer.
func NewService(completer llm.StructuredCompleter, logger *observability.Logger) *Service {
	return &Service{
		completer: completer,
		logger:    logger.WithComponent("extract"),
	}
}

func variantSchema(variant SchemaVariant) (string, map[string]any) {
	if variant == SchemaInvoice {
		return invoicePrompt, llm.BuildInvoiceSchema()
	}
	return shippingOrderPrompt, llm.BuildShippingOrderSchema()
}

// ExtractImage extracts fields from one page image (a data URL).
func (s *Service) ExtractImage(ctx context.Context, imageDataURL string, variant SchemaVariant) (json.RawMessage, error) {
	if strings.TrimSpace(imageDataURL) == "" {
		return nil, domain.ValidationError("no image supplied", nil)
	}

	prompt, schema := variantSchema(variant)
	data, err := s.completer.CompleteStructured(ctx, llm.StructuredRequest{
		System:     prompt,
		Parts:      []llm.ContentPart{llm.ImagePart(imageDataURL)},
		SchemaName: string(variant),
		Schema:     schema,
	})
	if err != nil {
		return nil, domain.ExtractionError("extract fields from image", err)
	}
	return data, nil
}

// ExtractText extracts fields from a raw text payload.
func (s *Service) ExtractText(ctx context.Context, text string, variant SchemaVariant) (json.RawMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ValidationError("no text supplied", nil)
	}

	prompt, schema := variantSchema(variant)
	data, err := s.completer.CompleteStructured(ctx, llm.StructuredRequest{
		System:     prompt,
		Parts:      []llm.ContentPart{llm.TextPart(text)},
		SchemaName: string(variant),
		Schema:     schema,
	})
	if err != nil {
		return nil, domain.ExtractionError("extract fields from text", err)
	}
	return data, nil
}

// ExtractPages runs extraction over the given pages one at a time, in
// page order. A failure on one page does not abort the remaining pages;
// each page's outcome is recorded independently.
func (s *Service) ExtractPages(ctx context.Context, pages []domain.PageImage, variant SchemaVariant) ([]domain.ExtractionResult, error) {
	if len(pages) == 0 {
		return nil, domain.ValidationError("no pages selected for extraction", nil)
	}

	results := make([]domain.ExtractionResult, 0, len(pages))
	for _, page := range pages {
		data, err := s.ExtractImage(ctx, page.ImageDataURL, variant)
		if err != nil {
			s.logger.Warn().
				Int("page", page.PageNumber).
				Err(err).
				Msg("Page extraction failed")
			results = append(results, domain.ExtractionResult{
				PageNumber: page.PageNumber,
				Success:    false,
				Error:      err.Error(),
			})
			continue
		}

		s.logger.Info().
			Int("page", page.PageNumber).
			Msg("Page extracted")
		results = append(results, domain.ExtractionResult{
			PageNumber:  page.PageNumber,
			Success:     true,
			Data:        data,
			ExtractedAt: time.Now().UTC(),
		})
	}

	return results, nil
}
