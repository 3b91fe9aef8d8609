package domain

import (
	"encoding/json"
	"time"
)

// ManualReviewThreshold is the overall-confidence floor below which a
// comparison is flagged for manual review.
const ManualReviewThreshold = 0.8

// PageImage is one rasterized PDF page. Page numbers are 1-based and
// follow the source PDF's page order. Everything except Selected is
// immutable once the conversion gateway has produced the page.
type PageImage struct {
	PageNumber   int    `json:"pageNumber"`
	ImageDataURL string `json:"imageDataUrl"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	Selected     bool   `json:"selected"`
}

// ExtractionResult is the tagged outcome of extracting one page or one
// text payload. Exactly one of Data/Error is meaningful depending on
// Success. Results are never mutated after creation; a document's result
// set is replaced wholesale on each extraction run.
type ExtractionResult struct {
	PageNumber  int             `json:"pageNumber"`
	Success     bool            `json:"success"`
	Data        json.RawMessage `json:"data,omitempty"`
	Error       string          `json:"error,omitempty"`
	ExtractedAt time.Time       `json:"extractedAt,omitempty"`
}

// Severity classifies a discrepancy's operational impact.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// Quality grades the comparator's view of the underlying data.
type Quality string

const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityFair      Quality = "fair"
	QualityPoor      Quality = "poor"
)

// Discrepancy is one field the comparator found to differ.
type Discrepancy struct {
	Field       string   `json:"field"`
	Order1Value string   `json:"order1Value"`
	Order2Value string   `json:"order2Value"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// Match is one field the comparator found to agree.
type Match struct {
	Field      string  `json:"field"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Analysis is the comparator's overall assessment.
type Analysis struct {
	OverallConfidence float64  `json:"overallConfidence"`
	Quality           Quality  `json:"dataQuality"`
	PotentialIssues   []string `json:"potentialIssues"`
	Recommendation    string   `json:"recommendation"`
}

// Comparison is the structured discrepancy report for two orders.
type Comparison struct {
	Discrepancies []Discrepancy `json:"discrepancies"`
	Matches       []Match       `json:"matches"`
	Analysis      Analysis      `json:"analysis"`
	Summary       string        `json:"summary"`
}

// NeedsManualReview reports whether the comparison confidence fell below
// the acceptance threshold. Computed locally, never left to the model.
func (c *Comparison) NeedsManualReview() bool {
	return c.Analysis.OverallConfidence < ManualReviewThreshold
}

// ComparisonResult is the tagged outcome of one comparison invocation.
// Fully replaced on re-comparison.
type ComparisonResult struct {
	Success           bool        `json:"success"`
	Comparison        *Comparison `json:"comparison,omitempty"`
	NeedsManualReview bool        `json:"needsManualReview"`
	Error             string      `json:"error,omitempty"`
	ComparedAt        time.Time   `json:"comparedAt,omitempty"`
}
