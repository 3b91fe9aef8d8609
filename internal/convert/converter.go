// Package convert turns an uploaded PDF into an ordered sequence of page
// images, one per source page, numbered from 1.
package convert

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/freightlens/freightlens/internal/domain"
)

// Converter converts one binary PDF payload into page images. A single
// failure aborts the whole conversion; there is no retry and no caching.
type Converter interface {
	Convert(ctx context.Context, pdf []byte) ([]domain.PageImage, error)
}

// dataURL wraps encoded image bytes in a data URL for transport.
func dataURL(format string, data []byte) string {
	mime := "image/png"
	if format == "jpg" || format == "jpeg" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// imageDims decodes just the header of an encoded image. Nominal only:
// undecodable headers yield zero dimensions, not an error.
func imageDims(data []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

// decodeBase64Image tolerates both raw base64 and full data URLs.
func decodeBase64Image(s string) ([]byte, error) {
	if idx := strings.Index(s, ";base64,"); idx >= 0 {
		s = s[idx+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(s)
}
