// Package session implements the document workflow: one session per
// uploaded PDF, driven through upload, page selection, extraction, and a
// cross-session comparison.
package session

import (
	"time"

	"github.com/freightlens/freightlens/internal/domain"
)

// State is the lifecycle state of a document session.
type State string

const (
	StateEmpty      State = "empty"
	StateUploading  State = "uploading"
	StatePagesReady State = "pages_ready"
	StateExtracting State = "extracting"
	StateExtracted  State = "extracted"
)

// ComparisonState is the lifecycle state of a cross-session comparison.
// Re-enterable from either terminal state by re-triggering.
type ComparisonState string

const (
	ComparisonIdle    ComparisonState = "idle"
	ComparisonRunning ComparisonState = "comparing"
	ComparisonSuccess ComparisonState = "compared_success"
	ComparisonFailure ComparisonState = "compared_failure"
)

// DocumentSession holds the per-document state slice. Two sessions never
// block or observe each other; everything here is session-scoped and
// discarded when the session ends.
type DocumentSession struct {
	ID        string                    `json:"id"`
	State     State                     `json:"state"`
	FileName  string                    `json:"fileName,omitempty"`
	Pages     []domain.PageImage        `json:"pages,omitempty"`
	Results   []domain.ExtractionResult `json:"results,omitempty"`
	CreatedAt time.Time                 `json:"createdAt"`
	UpdatedAt time.Time                 `json:"updatedAt"`
}

// SelectedPages returns the pages currently marked for extraction, in
// page order.
func (s *DocumentSession) SelectedPages() []domain.PageImage {
	var selected []domain.PageImage
	for _, p := range s.Pages {
		if p.Selected {
			selected = append(selected, p)
		}
	}
	return selected
}

// HasSuccessfulResult reports whether at least one page extracted
// successfully. This is the gate for comparison.
func (s *DocumentSession) HasSuccessfulResult() bool {
	for _, r := range s.Results {
		if r.Success {
			return true
		}
	}
	return false
}

// FirstSuccessfulResult returns the first successful extraction result.
// The comparator uses this single record, not an aggregate.
func (s *DocumentSession) FirstSuccessfulResult() (domain.ExtractionResult, bool) {
	for _, r := range s.Results {
		if r.Success {
			return r, true
		}
	}
	return domain.ExtractionResult{}, false
}

// ComparisonRecord is the shared comparison state for one session pair.
type ComparisonRecord struct {
	State    ComparisonState          `json:"state"`
	Result   *domain.ComparisonResult `json:"result,omitempty"`
	FirstID  string                   `json:"firstSessionId"`
	SecondID string                   `json:"secondSessionId"`
}
