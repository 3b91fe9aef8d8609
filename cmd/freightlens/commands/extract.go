package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/freightlens/freightlens/cmd/freightlens/ui"
	"github.com/freightlens/freightlens/internal/extract"
)

var (
	extractPDFPath string
	extractPages   string
	extractInvoice bool
	extractJSON    bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract structured fields from a shipping order PDF",
	Long: `Extract converts the PDF to page images and runs structured field
extraction over the selected pages (all pages by default). Each page is
extracted independently; one failed page does not abort the rest.`,
	RunE: runExtractCmd,
}

func init() {
	extractCmd.Flags().StringVarP(&extractPDFPath, "pdf", "p", "", "Path to PDF file (required)")
	extractCmd.Flags().StringVar(&extractPages, "pages", "", "Comma-separated page numbers (default: all)")
	extractCmd.Flags().BoolVar(&extractInvoice, "invoice", false, "Use the invoice schema instead of shipping order")
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "Print raw JSON results")
	extractCmd.MarkFlagRequired("pdf")
	rootCmd.AddCommand(extractCmd)
}

func runExtractCmd(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	svc, err := loadServices()
	if err != nil {
		return err
	}

	variant := extract.SchemaShippingOrder
	if extractInvoice {
		variant = extract.SchemaInvoice
	}

	if !extractJSON {
		ui.Section("Field Extraction")
		ui.KeyValue("File", extractPDFPath)
		ui.KeyValue("Schema", string(variant))
		ui.Newline()
	}

	results, err := extractDocument(ctx, svc, extractPDFPath, extractPages, variant)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	if extractJSON {
		return printJSON(results)
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
			ui.Newline()
			ui.Success("Page %d", r.PageNumber)
			printRecord(r.Data)
		} else {
			ui.Newline()
			ui.Error("Page %d: %s", r.PageNumber, r.Error)
		}
	}

	ui.Newline()
	if succeeded == 0 {
		return fmt.Errorf("no page extracted successfully")
	}
	ui.Success("Extracted %d of %d pages", succeeded, len(results))
	return nil
}
