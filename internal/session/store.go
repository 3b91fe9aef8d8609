package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound indicates the entry does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Store persists document sessions and pair comparison records for the
// duration of one interaction. Entries expire after the configured TTL;
// nothing outlives the session. Comparison records live in the same
// store so every API instance sees the same pair state.
type Store interface {
	Get(ctx context.Context, id string) (*DocumentSession, error)
	Save(ctx context.Context, s *DocumentSession) error
	Delete(ctx context.Context, id string) error
	GetComparison(ctx context.Context, firstID, secondID string) (*ComparisonRecord, error)
	SaveComparison(ctx context.Context, rec *ComparisonRecord) error
	Close() error
}

// comparisonKey identifies one ordered session pair. Order is
// significant: (a,b) and (b,a) are distinct comparisons.
func comparisonKey(firstID, secondID string) string {
	return firstID + "|" + secondID
}

// MemoryStore is the default in-process session store.
type MemoryStore struct {
	mu          sync.RWMutex
	ttl         time.Duration
	entries     map[string]memoryEntry
	comparisons map[string]memoryComparison

	// now is swappable for expiry tests.
	now func() time.Time
}

type memoryEntry struct {
	session   *DocumentSession
	expiresAt time.Time
}

type memoryComparison struct {
	record    *ComparisonRecord
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory store with the given TTL. A zero
// TTL means entries never expire.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:         ttl,
		entries:     make(map[string]memoryEntry),
		comparisons: make(map[string]memoryComparison),
		now:         time.Now,
	}
}

// Get retrieves a session by ID.
func (m *MemoryStore) Get(_ context.Context, id string) (*DocumentSession, error) {
	m.mu.RLock()
	entry, ok := m.entries[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, id)
		m.mu.Unlock()
		return nil, ErrNotFound
	}

	// Copy so callers never mutate stored state without Save.
	cp := *entry.session
	return &cp, nil
}

// Save stores a session, resetting its TTL.
func (m *MemoryStore) Save(_ context.Context, s *DocumentSession) error {
	cp := *s

	var expiresAt time.Time
	if m.ttl > 0 {
		expiresAt = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.entries[s.ID] = memoryEntry{session: &cp, expiresAt: expiresAt}
	m.mu.Unlock()
	return nil
}

// Delete removes a session.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

// GetComparison retrieves the comparison record for an ordered pair.
func (m *MemoryStore) GetComparison(_ context.Context, firstID, secondID string) (*ComparisonRecord, error) {
	key := comparisonKey(firstID, secondID)

	m.mu.RLock()
	entry, ok := m.comparisons[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.comparisons, key)
		m.mu.Unlock()
		return nil, ErrNotFound
	}

	return copyComparison(entry.record), nil
}

// SaveComparison stores a comparison record, resetting its TTL.
func (m *MemoryStore) SaveComparison(_ context.Context, rec *ComparisonRecord) error {
	cp := copyComparison(rec)

	var expiresAt time.Time
	if m.ttl > 0 {
		expiresAt = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.comparisons[comparisonKey(rec.FirstID, rec.SecondID)] = memoryComparison{record: cp, expiresAt: expiresAt}
	m.mu.Unlock()
	return nil
}

func copyComparison(rec *ComparisonRecord) *ComparisonRecord {
	cp := *rec
	if rec.Result != nil {
		result := *rec.Result
		cp.Result = &result
	}
	return &cp
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}
