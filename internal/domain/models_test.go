package domain

import "testing"

func TestComparisonNeedsManualReview(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		want       bool
	}{
		{"zero confidence", 0.0, true},
		{"well below threshold", 0.5, true},
		{"just below threshold", 0.79, true},
		{"exactly at threshold", 0.8, false},
		{"just above threshold", 0.81, false},
		{"full confidence", 1.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Comparison{Analysis: Analysis{OverallConfidence: tt.confidence}}
			if got := c.NeedsManualReview(); got != tt.want {
				t.Errorf("NeedsManualReview() with confidence %v = %v, want %v", tt.confidence, got, tt.want)
			}
		})
	}
}

func TestSeverityValues(t *testing.T) {
	// The wire values are part of the comparison schema contract.
	if SeverityCritical != "critical" || SeverityMajor != "major" || SeverityMinor != "minor" {
		t.Errorf("unexpected severity wire values: %q %q %q", SeverityCritical, SeverityMajor, SeverityMinor)
	}
}

func TestQualityValues(t *testing.T) {
	if QualityExcellent != "excellent" || QualityGood != "good" || QualityFair != "fair" || QualityPoor != "poor" {
		t.Errorf("unexpected quality wire values: %q %q %q %q", QualityExcellent, QualityGood, QualityFair, QualityPoor)
	}
}
