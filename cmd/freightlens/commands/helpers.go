package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/freightlens/freightlens/cmd/freightlens/ui"
	"github.com/freightlens/freightlens/internal/compare"
	"github.com/freightlens/freightlens/internal/config"
	"github.com/freightlens/freightlens/internal/convert"
	"github.com/freightlens/freightlens/internal/domain"
	"github.com/freightlens/freightlens/internal/extract"
	"github.com/freightlens/freightlens/internal/llm"
	"github.com/freightlens/freightlens/internal/observability"
)

// services bundles the in-process pipeline the CLI commands share.
type services struct {
	converter  convert.Converter
	extractor  *extract.Service
	comparator *compare.Service
}

func newLogger() *observability.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return observability.NewLogger(observability.LogConfig{
		Level:  level,
		Format: "console",
	})
}

// loadServices builds the full pipeline from configuration. Used by the
// commands that call the model service.
func loadServices() (*services, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := newLogger()

	var converter convert.Converter
	switch cfg.Convert.Provider {
	case "local":
		converter = convert.NewLocalConverter(logger)
	default:
		converter = convert.NewRemoteConverter(convert.RemoteConfig{
			BaseURL: cfg.Convert.Remote.BaseURL,
			Secret:  cfg.Convert.Remote.Secret,
			Format:  cfg.Convert.Remote.Format,
			Timeout: cfg.Convert.Remote.Timeout,
		}, logger)
	}

	client := llm.NewClient(llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
		MaxRetries:  cfg.LLM.MaxRetries,
	}, logger)

	return &services{
		converter:  converter,
		extractor:  extract.NewService(client, logger),
		comparator: compare.NewService(client, logger),
	}, nil
}

func readPDFFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := convert.ValidatePDF(data); err != nil {
		return nil, err
	}
	return data, nil
}

// parsePages parses a comma-separated page list like "1,3,4".
func parsePages(spec string) ([]int, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}

	seen := make(map[int]bool)
	var pages []int
	for _, part := range strings.Split(spec, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid page number %q", part)
		}
		if n < 1 {
			return nil, fmt.Errorf("page numbers start at 1, got %d", n)
		}
		if !seen[n] {
			seen[n] = true
			pages = append(pages, n)
		}
	}
	sort.Ints(pages)
	return pages, nil
}

// selectPages marks the requested pages, or every page when the list is
// empty. Unknown page numbers are an error.
func selectPages(pages []domain.PageImage, wanted []int) ([]domain.PageImage, error) {
	if len(wanted) == 0 {
		selected := make([]domain.PageImage, len(pages))
		copy(selected, pages)
		for i := range selected {
			selected[i].Selected = true
		}
		return selected, nil
	}

	byNumber := make(map[int]domain.PageImage, len(pages))
	for _, p := range pages {
		byNumber[p.PageNumber] = p
	}

	selected := make([]domain.PageImage, 0, len(wanted))
	for _, n := range wanted {
		p, ok := byNumber[n]
		if !ok {
			return nil, fmt.Errorf("page %d does not exist (document has %d pages)", n, len(pages))
		}
		p.Selected = true
		selected = append(selected, p)
	}
	return selected, nil
}

// extractDocument converts a PDF and extracts the selected pages with a
// per-page progress bar. Returns the per-page results.
func extractDocument(ctx context.Context, svc *services, path, pagesSpec string, variant extract.SchemaVariant) ([]domain.ExtractionResult, error) {
	pdf, err := readPDFFile(path)
	if err != nil {
		return nil, err
	}

	wanted, err := parsePages(pagesSpec)
	if err != nil {
		return nil, err
	}

	spin := ui.NewSpinner(fmt.Sprintf("Converting %s...", path))
	spin.Start()
	pages, err := svc.converter.Convert(ctx, pdf)
	spin.Stop()
	if err != nil {
		return nil, err
	}

	selected, err := selectPages(pages, wanted)
	if err != nil {
		return nil, err
	}

	bar := ui.NewProgressBar(int64(len(selected)), fmt.Sprintf("Extracting %s", path))
	results := make([]domain.ExtractionResult, 0, len(selected))
	for _, page := range selected {
		pageResults, err := svc.extractor.ExtractPages(ctx, []domain.PageImage{page}, variant)
		if err != nil {
			bar.Finish()
			return nil, err
		}
		results = append(results, pageResults...)
		bar.Add(1)
	}
	bar.Finish()

	return results, nil
}

// printRecord renders an extracted record as a flat key table. Nested
// values are summarized rather than expanded.
func printRecord(data json.RawMessage) {
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		fmt.Println(string(data))
		return
	}

	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, summarizeValue(record[k])})
	}
	ui.Table([]string{"Field", "Value"}, rows)
}

func summarizeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		return fmt.Sprintf("(%d items)", len(val))
	case map[string]any:
		parts := make([]string, 0, len(val))
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s, ok := val[k].(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			return fmt.Sprintf("(%d fields)", len(val))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", val)
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
