package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/freightlens/freightlens/internal/domain"
	"github.com/freightlens/freightlens/internal/observability"
)

// RemoteConverter forwards the PDF to an external conversion service and
// maps its per-page file list onto page images. One outbound call per
// invocation; repeated uploads of the same file re-convert from scratch.
type RemoteConverter struct {
	baseURL    string
	secret     string
	format     string
	httpClient *http.Client
	logger     *observability.Logger
}

// RemoteConfig holds settings for the external conversion service.
type RemoteConfig struct {
	BaseURL string
	Secret  string // bearer secret
	Format  string // png or jpg
	Timeout time.Duration
}

// NewRemoteConverter creates a converter backed by the external service.
func NewRemoteConverter(cfg RemoteConfig, logger *observability.Logger) *RemoteConverter {
	if cfg.Format == "" {
		cfg.Format = "png"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}

	return &RemoteConverter{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		secret:     cfg.Secret,
		format:     cfg.Format,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.WithComponent("convert.remote"),
	}
}

// conversionResponse mirrors the upstream service's file list payload.
type conversionResponse struct {
	Files []struct {
		FileName string `json:"FileName"`
		FileExt  string `json:"FileExt"`
		FileSize int    `json:"FileSize"`
		FileData string `json:"FileData"`
	} `json:"Files"`
}

// Convert implements Converter. Fails when no file is supplied, the file
// is not a PDF, or the upstream returns a non-success status or a
// response lacking the expected page list.
func (c *RemoteConverter) Convert(ctx context.Context, pdf []byte) ([]domain.PageImage, error) {
	if err := ValidatePDF(pdf); err != nil {
		return nil, err
	}

	start := time.Now()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("File", "document.pdf")
	if err != nil {
		return nil, domain.ConversionError("build upload form", err)
	}
	if _, err := part.Write(pdf); err != nil {
		return nil, domain.ConversionError("build upload form", err)
	}
	if err := writer.Close(); err != nil {
		return nil, domain.ConversionError("build upload form", err)
	}

	url := fmt.Sprintf("%s/convert/pdf/to/%s?StoreFile=false", c.baseURL, c.format)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, domain.ConversionError("build upstream request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.ConversionError("upstream conversion call failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.ConversionError("read upstream response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("body", truncate(string(raw), 512)).
			Msg("Conversion service returned non-success status")
		return nil, domain.ConversionError(fmt.Sprintf("conversion service returned status %d", resp.StatusCode), nil)
	}

	var parsed conversionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, domain.ConversionError("decode upstream response", err)
	}
	if len(parsed.Files) == 0 {
		return nil, domain.ConversionError("conversion response lacks page list", nil)
	}

	pages := make([]domain.PageImage, 0, len(parsed.Files))
	for i, f := range parsed.Files {
		decoded, err := decodeBase64Image(f.FileData)
		if err != nil {
			return nil, domain.ConversionError(fmt.Sprintf("decode page %d image data", i+1), err)
		}
		width, height := imageDims(decoded)
		pages = append(pages, domain.PageImage{
			PageNumber:   i + 1,
			ImageDataURL: dataURL(c.format, decoded),
			Width:        width,
			Height:       height,
		})
	}

	c.logger.Info().
		Int("pages", len(pages)).
		Dur("elapsed", time.Since(start)).
		Msg("PDF converted")

	return pages, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
