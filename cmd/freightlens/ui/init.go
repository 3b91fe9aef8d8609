package ui

import (
	"github.com/fatih/color"
)

var (
	noColorFlag bool
	verboseFlag bool
)

// InitUI initializes the UI with color and verbose settings.
func InitUI(noColor, verbose bool) {
	noColorFlag = noColor
	verboseFlag = verbose

	if noColor {
		color.NoColor = true
	}
}

// Verbose reports whether verbose output was requested.
func Verbose() bool {
	return verboseFlag
}

// Severity color printers for discrepancy rows.
var (
	criticalColor = color.New(color.FgRed, color.Bold)
	majorColor    = color.New(color.FgYellow)
	minorColor    = color.New(color.FgCyan)
)

// ColorSeverity returns the severity label wrapped in its color.
func ColorSeverity(severity string) string {
	switch severity {
	case "critical":
		return criticalColor.Sprint("CRITICAL")
	case "major":
		return majorColor.Sprint("MAJOR")
	case "minor":
		return minorColor.Sprint("minor")
	default:
		return severity
	}
}
