package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/freightlens/freightlens/internal/compare"
	"github.com/freightlens/freightlens/internal/convert"
	"github.com/freightlens/freightlens/internal/domain"
	"github.com/freightlens/freightlens/internal/extract"
	"github.com/freightlens/freightlens/internal/observability"
)

// Manager drives document sessions through the workflow. Sessions are
// independent state slices; the only cross-session operation is the
// comparison, which reads a snapshot of both sessions at invocation time.
// All state, comparison records included, lives in the Store, so any
// instance sharing the store sees the same sessions and pair outcomes.
//
// In-flight work is never cancelled: a new trigger on a busy session or
// pair is rejected instead.
type Manager struct {
	store      Store
	converter  convert.Converter
	extractor  *extract.Service
	comparator *compare.Service
	logger     *observability.Logger

	mu sync.Mutex
}

// NewManager creates a workflow manager.
func NewManager(store Store, converter convert.Converter, extractor *extract.Service, comparator *compare.Service, logger *observability.Logger) *Manager {
	return &Manager{
		store:      store,
		converter:  converter,
		extractor:  extractor,
		comparator: comparator,
		logger:     logger.WithComponent("session"),
	}
}

// Create starts a new empty document session.
func (m *Manager) Create(ctx context.Context) (*DocumentSession, error) {
	now := time.Now().UTC()
	s := &DocumentSession{
		ID:        uuid.New().String(),
		State:     StateEmpty,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	m.logger.Info().Str("session_id", s.ID).Msg("Session created")
	return s, nil
}

// Get returns a session snapshot.
func (m *Manager) Get(ctx context.Context, id string) (*DocumentSession, error) {
	return m.store.Get(ctx, id)
}

// Delete discards a session.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// Upload converts a PDF into page images for the session. Any prior
// pages and results are cleared at the moment of file selection. On
// conversion failure the session returns to empty with the file name
// retained, and the error is surfaced to the caller.
func (m *Manager) Upload(ctx context.Context, id, fileName string, pdf []byte) (*DocumentSession, error) {
	m.mu.Lock()
	s, err := m.store.Get(ctx, id)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if s.State == StateUploading || s.State == StateExtracting {
		m.mu.Unlock()
		return nil, domain.ValidationError(fmt.Sprintf("session is busy (%s)", s.State), nil)
	}

	s.State = StateUploading
	s.FileName = fileName
	s.Pages = nil
	s.Results = nil
	s.UpdatedAt = time.Now().UTC()
	if err := m.store.Save(ctx, s); err != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("save session: %w", err)
	}
	m.mu.Unlock()

	pages, convErr := m.converter.Convert(ctx, pdf)

	m.mu.Lock()
	defer m.mu.Unlock()

	// The session may have been deleted while the converter ran; a
	// deleted session stays deleted.
	s, err = m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if convErr != nil {
		s.State = StateEmpty
		s.UpdatedAt = time.Now().UTC()
		if err := m.store.Save(ctx, s); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
		m.logger.Warn().Str("session_id", id).Err(convErr).Msg("Conversion failed")
		return nil, convErr
	}

	s.State = StatePagesReady
	s.Pages = pages
	s.UpdatedAt = time.Now().UTC()
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	m.logger.Info().
		Str("session_id", id).
		Str("file", fileName).
		Int("pages", len(pages)).
		Msg("Document uploaded")
	return s, nil
}

// Selection describes a page selection change. When All is set it wins
// over Pages.
type Selection struct {
	Pages []int
	All   *bool
}

// Select updates the per-page selection flags. Selection never triggers
// extraction and is only legal once pages exist.
func (m *Manager) Select(ctx context.Context, id string, sel Selection) (*DocumentSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.State != StatePagesReady && s.State != StateExtracted {
		return nil, domain.ValidationError(fmt.Sprintf("cannot change selection in state %s", s.State), nil)
	}

	if sel.All != nil {
		for i := range s.Pages {
			s.Pages[i].Selected = *sel.All
		}
	} else {
		wanted := make(map[int]bool, len(sel.Pages))
		for _, n := range sel.Pages {
			wanted[n] = true
		}
		for n := range wanted {
			if n < 1 || n > len(s.Pages) {
				return nil, domain.ValidationError(fmt.Sprintf("page %d does not exist", n), nil)
			}
		}
		for i := range s.Pages {
			s.Pages[i].Selected = wanted[s.Pages[i].PageNumber]
		}
	}

	s.UpdatedAt = time.Now().UTC()
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

// Extract runs sequential per-page extraction over the selected pages.
// Triggering with zero selected pages is rejected with no state change
// and no outbound call. The results array replaces any previous run.
func (m *Manager) Extract(ctx context.Context, id string, variant extract.SchemaVariant) (*DocumentSession, error) {
	m.mu.Lock()
	s, err := m.store.Get(ctx, id)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if s.State == StateExtracting {
		m.mu.Unlock()
		return nil, domain.ValidationError("extraction already in progress", nil)
	}
	if s.State != StatePagesReady && s.State != StateExtracted {
		m.mu.Unlock()
		return nil, domain.ValidationError(fmt.Sprintf("cannot extract in state %s", s.State), nil)
	}

	selected := s.SelectedPages()
	if len(selected) == 0 {
		m.mu.Unlock()
		return nil, domain.ValidationError("select at least one page before extracting", nil)
	}

	s.State = StateExtracting
	s.UpdatedAt = time.Now().UTC()
	if err := m.store.Save(ctx, s); err != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("save session: %w", err)
	}
	m.mu.Unlock()

	// Each page is awaited to completion before the next begins.
	results, extErr := m.extractor.ExtractPages(ctx, selected, variant)

	m.mu.Lock()
	defer m.mu.Unlock()

	// The session may have been deleted while extraction ran; a deleted
	// session stays deleted.
	s, err = m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if extErr != nil {
		// Only possible for an empty page list, which the guard above
		// excludes; restore the session rather than wedge it.
		s.State = StatePagesReady
		s.UpdatedAt = time.Now().UTC()
		if err := m.store.Save(ctx, s); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
		return nil, extErr
	}

	s.State = StateExtracted
	s.Results = results
	s.UpdatedAt = time.Now().UTC()
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	m.logger.Info().
		Str("session_id", id).
		Int("pages", len(results)).
		Int("succeeded", succeeded).
		Msg("Extraction finished")
	return s, nil
}

// Compare runs the cross-session comparison. Gated on both sessions
// being extracted with at least one success each; uses the first
// successful result per document. The outcome for the pair is fully
// replaced on every invocation.
func (m *Manager) Compare(ctx context.Context, firstID, secondID string) (*domain.ComparisonResult, error) {
	m.mu.Lock()
	rec, err := m.store.GetComparison(ctx, firstID, secondID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		m.mu.Unlock()
		return nil, fmt.Errorf("load comparison: %w", err)
	}
	if rec != nil && rec.State == ComparisonRunning {
		m.mu.Unlock()
		return nil, domain.ValidationError("comparison already in progress for this pair", nil)
	}

	first, err := m.store.Get(ctx, firstID)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	second, err := m.store.Get(ctx, secondID)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}

	firstResult, ok1 := first.FirstSuccessfulResult()
	secondResult, ok2 := second.FirstSuccessfulResult()
	if first.State != StateExtracted || second.State != StateExtracted || !ok1 || !ok2 {
		m.mu.Unlock()
		return nil, domain.ValidationError("both documents need at least one successful extraction before comparing", nil)
	}

	// Snapshot taken; changes to either session after this point do not
	// affect the in-flight comparison.
	running := &ComparisonRecord{
		State:    ComparisonRunning,
		FirstID:  firstID,
		SecondID: secondID,
	}
	if err := m.store.SaveComparison(ctx, running); err != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("save comparison: %w", err)
	}
	m.mu.Unlock()

	comparison, cmpErr := m.comparator.Compare(ctx, firstResult.Data, secondResult.Data)

	m.mu.Lock()
	defer m.mu.Unlock()

	result := &domain.ComparisonResult{ComparedAt: time.Now().UTC()}
	if cmpErr != nil {
		result.Success = false
		result.Error = cmpErr.Error()
		if err := m.store.SaveComparison(ctx, &ComparisonRecord{
			State:    ComparisonFailure,
			Result:   result,
			FirstID:  firstID,
			SecondID: secondID,
		}); err != nil {
			return nil, fmt.Errorf("save comparison: %w", err)
		}
		return result, cmpErr
	}

	result.Success = true
	result.Comparison = comparison
	result.NeedsManualReview = comparison.NeedsManualReview()
	if err := m.store.SaveComparison(ctx, &ComparisonRecord{
		State:    ComparisonSuccess,
		Result:   result,
		FirstID:  firstID,
		SecondID: secondID,
	}); err != nil {
		return nil, fmt.Errorf("save comparison: %w", err)
	}

	m.logger.Info().
		Str("first", firstID).
		Str("second", secondID).
		Bool("needs_manual_review", result.NeedsManualReview).
		Msg("Comparison finished")
	return result, nil
}

// Comparison returns the last comparison record for a pair, or
// ErrNotFound when the pair was never compared.
func (m *Manager) Comparison(ctx context.Context, firstID, secondID string) (*ComparisonRecord, error) {
	return m.store.GetComparison(ctx, firstID, secondID)
}
