package convert

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"

	"github.com/freightlens/freightlens/internal/domain"
	"github.com/freightlens/freightlens/internal/observability"
)

// LocalConverter rasterizes PDF pages in-process. Used when no remote
// conversion service is configured.
type LocalConverter struct {
	logger *observability.Logger
}

// NewLocalConverter creates an in-process converter.
func NewLocalConverter(logger *observability.Logger) *LocalConverter {
	return &LocalConverter{logger: logger.WithComponent("convert.local")}
}

// Convert implements Converter.
func (c *LocalConverter) Convert(ctx context.Context, pdf []byte) ([]domain.PageImage, error) {
	if err := ValidatePDF(pdf); err != nil {
		return nil, err
	}

	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, domain.ConversionError("open PDF", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return nil, domain.ConversionError("PDF has no pages", nil)
	}

	pages := make([]domain.PageImage, 0, pageCount)
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := doc.Image(pageNum)
		if err != nil {
			return nil, domain.ConversionError(fmt.Sprintf("render page %d", pageNum+1), err)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, domain.ConversionError(fmt.Sprintf("encode page %d", pageNum+1), err)
		}

		bounds := img.Bounds()
		pages = append(pages, domain.PageImage{
			PageNumber:   pageNum + 1,
			ImageDataURL: dataURL("png", buf.Bytes()),
			Width:        bounds.Dx(),
			Height:       bounds.Dy(),
		})
	}

	c.logger.Info().Int("pages", len(pages)).Msg("PDF rasterized locally")

	return pages, nil
}
