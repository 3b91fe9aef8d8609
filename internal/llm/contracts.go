// Package llm provides the schema-constrained model service client used
// by the field extractor and the order comparator.
package llm

import (
	"context"
	"encoding/json"
)

// ContentPart is one part of a user message: text or an image data URL.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL carries an image reference, usually a base64 data URL.
type ImageURL struct {
	URL string `json:"url"`
}

// TextPart builds a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

// ImagePart builds an image content part from a data URL.
func ImagePart(dataURL string) ContentPart {
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: dataURL}}
}

// StructuredRequest asks the model for a value of a declared output shape.
type StructuredRequest struct {
	System     string
	Parts      []ContentPart
	SchemaName string
	Schema     map[string]any
}

// StructuredCompleter is the abstract structured extraction capability:
// given a payload and a declared output shape, it returns a value of that
// shape or a typed failure. Keeps the model provider swappable.
type StructuredCompleter interface {
	CompleteStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error)
}
