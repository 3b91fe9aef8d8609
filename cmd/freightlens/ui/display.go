package ui

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// Table displays data in a formatted table.
func Table(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join(headers, "\t"))

	separator := make([]string, len(headers))
	for i := range separator {
		separator[i] = strings.Repeat("-", len(headers[i]))
	}
	fmt.Fprintln(w, strings.Join(separator, "\t"))

	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	_ = w.Flush()
}

// Box displays text in a bordered box.
func Box(title string, content string) {
	lines := strings.Split(content, "\n")
	maxWidth := len([]rune(title))
	for _, line := range lines {
		if n := len([]rune(line)); n > maxWidth {
			maxWidth = n
		}
	}
	if maxWidth < 40 {
		maxWidth = 40
	}

	fmt.Printf("┌%s┐\n", strings.Repeat("─", maxWidth+2))
	if title != "" {
		fmt.Printf("│ %-*s │\n", maxWidth, title)
		fmt.Printf("├%s┤\n", strings.Repeat("─", maxWidth+2))
	}
	for _, line := range lines {
		fmt.Printf("│ %-*s │\n", maxWidth, line)
	}
	fmt.Printf("└%s┘\n", strings.Repeat("─", maxWidth+2))
}

// WarningBox displays a warning message in a box.
func WarningBox(title, message string) {
	fmt.Fprintln(os.Stdout)
	Box("⚠ "+title, message)
	fmt.Fprintln(os.Stdout)
}

// KeyValue displays a key-value pair in a formatted way.
func KeyValue(key, value string) {
	fmt.Fprintf(os.Stdout, "  %s: %s\n", key, value)
}

// Step displays a step indicator message.
func Step(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, "→ %s\n", fmt.Sprintf(format, args...))
}

// FormatList formats a list of items as bullets.
func FormatList(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("  • %s\n", item))
	}
	return sb.String()
}
