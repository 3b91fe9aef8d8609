package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/freightlens/freightlens/cmd/freightlens/ui"
	"github.com/freightlens/freightlens/internal/domain"
	"github.com/freightlens/freightlens/internal/extract"
)

var (
	compareFirstPath   string
	compareSecondPath  string
	compareFirstPages  string
	compareSecondPages string
	compareJSON        bool
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare two shipping order PDFs for discrepancies",
	Long: `Compare runs the full workflow over two PDFs: conversion, field
extraction, and a structured comparison. The first successfully
extracted record of each document is compared; discrepancies are graded
critical, major, or minor, and a confidence below 0.8 flags the result
for manual review.`,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().StringVar(&compareFirstPath, "first", "", "Path to the first PDF (required)")
	compareCmd.Flags().StringVar(&compareSecondPath, "second", "", "Path to the second PDF (required)")
	compareCmd.Flags().StringVar(&compareFirstPages, "first-pages", "", "Pages of the first PDF (default: all)")
	compareCmd.Flags().StringVar(&compareSecondPages, "second-pages", "", "Pages of the second PDF (default: all)")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "Print the raw comparison JSON")
	compareCmd.MarkFlagRequired("first")
	compareCmd.MarkFlagRequired("second")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Minute)
	defer cancel()

	svc, err := loadServices()
	if err != nil {
		return err
	}

	if !compareJSON {
		ui.Section("Order Comparison")
		ui.KeyValue("Order 1", compareFirstPath)
		ui.KeyValue("Order 2", compareSecondPath)
		ui.Newline()
	}

	firstResults, err := extractDocument(ctx, svc, compareFirstPath, compareFirstPages, extract.SchemaShippingOrder)
	if err != nil {
		return fmt.Errorf("extract %s: %w", compareFirstPath, err)
	}
	secondResults, err := extractDocument(ctx, svc, compareSecondPath, compareSecondPages, extract.SchemaShippingOrder)
	if err != nil {
		return fmt.Errorf("extract %s: %w", compareSecondPath, err)
	}

	firstRecord, ok := firstSuccess(firstResults)
	if !ok {
		return fmt.Errorf("no page of %s extracted successfully", compareFirstPath)
	}
	secondRecord, ok := firstSuccess(secondResults)
	if !ok {
		return fmt.Errorf("no page of %s extracted successfully", compareSecondPath)
	}

	spin := ui.NewSpinner("Comparing orders...")
	spin.Start()
	comparison, err := svc.comparator.Compare(ctx, firstRecord.Data, secondRecord.Data)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	if compareJSON {
		return printJSON(domain.ComparisonResult{
			Success:           true,
			Comparison:        comparison,
			NeedsManualReview: comparison.NeedsManualReview(),
			ComparedAt:        time.Now().UTC(),
		})
	}

	printComparison(comparison)
	return nil
}

func firstSuccess(results []domain.ExtractionResult) (domain.ExtractionResult, bool) {
	for _, r := range results {
		if r.Success {
			return r, true
		}
	}
	return domain.ExtractionResult{}, false
}

func printComparison(c *domain.Comparison) {
	if len(c.Discrepancies) > 0 {
		ui.Section("Discrepancies")
		rows := make([][]string, 0, len(c.Discrepancies))
		for _, d := range c.Discrepancies {
			rows = append(rows, []string{
				ui.ColorSeverity(string(d.Severity)),
				d.Field,
				d.Order1Value,
				d.Order2Value,
				d.Description,
			})
		}
		ui.Table([]string{"Severity", "Field", "Order 1", "Order 2", "Description"}, rows)
	} else {
		ui.Newline()
		ui.Success("No discrepancies found")
	}

	if len(c.Matches) > 0 {
		ui.Section("Matches")
		rows := make([][]string, 0, len(c.Matches))
		for _, m := range c.Matches {
			rows = append(rows, []string{
				m.Field,
				m.Value,
				fmt.Sprintf("%.2f", m.Confidence),
			})
		}
		ui.Table([]string{"Field", "Value", "Confidence"}, rows)
	}

	ui.Section("Analysis")
	content := fmt.Sprintf("Confidence: %.2f\nData quality: %s\nRecommendation: %s",
		c.Analysis.OverallConfidence, c.Analysis.Quality, c.Analysis.Recommendation)
	if len(c.Analysis.PotentialIssues) > 0 {
		content += "\n\nPotential issues:\n" + ui.FormatList(c.Analysis.PotentialIssues)
	}
	ui.Box("Summary", c.Summary+"\n\n"+content)

	if c.NeedsManualReview() {
		ui.WarningBox("Manual Review Required",
			fmt.Sprintf("Overall confidence %.2f is below the %.1f acceptance threshold.",
				c.Analysis.OverallConfidence, domain.ManualReviewThreshold))
	}
}
