package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/freightlens/freightlens/cmd/freightlens/ui"
	"github.com/freightlens/freightlens/internal/convert"
)

var (
	convertPDFPath string
	convertRemote  bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a shipping order PDF to page images",
	Long: `Convert rasterizes a PDF into one image per page and reports the page
count and dimensions. By default the in-process rasterizer is used; pass
--remote to go through the configured conversion service.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertPDFPath, "pdf", "p", "", "Path to PDF file (required)")
	convertCmd.Flags().BoolVar(&convertRemote, "remote", false, "Use the configured remote conversion service")
	convertCmd.MarkFlagRequired("pdf")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var converter convert.Converter
	if convertRemote {
		svc, err := loadServices()
		if err != nil {
			return err
		}
		converter = svc.converter
	} else {
		converter = convert.NewLocalConverter(newLogger())
	}

	pdf, err := readPDFFile(convertPDFPath)
	if err != nil {
		return err
	}

	ui.Section("PDF Conversion")
	ui.KeyValue("File", convertPDFPath)
	ui.Newline()

	spin := ui.NewSpinner("Converting PDF to images...")
	spin.Start()
	pages, err := converter.Convert(ctx, pdf)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	rows := make([][]string, 0, len(pages))
	for _, p := range pages {
		rows = append(rows, []string{
			fmt.Sprintf("%d", p.PageNumber),
			fmt.Sprintf("%dx%d", p.Width, p.Height),
			fmt.Sprintf("%d KB", len(p.ImageDataURL)/1024),
		})
	}
	ui.Table([]string{"Page", "Dimensions", "Data Size"}, rows)

	ui.Newline()
	ui.Success("Converted %d pages", len(pages))
	return nil
}
