package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveAndGet(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	s := &DocumentSession{ID: "s1", State: StateEmpty}
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, StateEmpty, got.State)
}

func TestMemoryStore_GetUnknown(t *testing.T) {
	store := NewMemoryStore(time.Hour)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &DocumentSession{ID: "s1"}))
	require.NoError(t, store.Delete(ctx, "s1"))

	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }
	require.NoError(t, store.Save(ctx, &DocumentSession{ID: "s1"}))

	store.now = func() time.Time { return base.Add(59 * time.Minute) }
	_, err := store.Get(ctx, "s1")
	require.NoError(t, err)

	store.now = func() time.Time { return base.Add(61 * time.Minute) }
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SaveResetsTTL(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }
	require.NoError(t, store.Save(ctx, &DocumentSession{ID: "s1"}))

	store.now = func() time.Time { return base.Add(50 * time.Minute) }
	require.NoError(t, store.Save(ctx, &DocumentSession{ID: "s1", State: StatePagesReady}))

	store.now = func() time.Time { return base.Add(90 * time.Minute) }
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, StatePagesReady, got.State)
}

func TestMemoryStore_ZeroTTLNeverExpires(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &DocumentSession{ID: "s1"}))
	store.now = func() time.Time { return time.Now().Add(1000 * time.Hour) }

	_, err := store.Get(ctx, "s1")
	assert.NoError(t, err)
}

func TestMemoryStore_SaveAndGetComparison(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	rec := &ComparisonRecord{State: ComparisonSuccess, FirstID: "a", SecondID: "b"}
	require.NoError(t, store.SaveComparison(ctx, rec))

	got, err := store.GetComparison(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, ComparisonSuccess, got.State)
	assert.Equal(t, "a", got.FirstID)
	assert.Equal(t, "b", got.SecondID)

	_, err = store.GetComparison(ctx, "b", "a")
	assert.ErrorIs(t, err, ErrNotFound, "pair order is significant")
}

func TestMemoryStore_ComparisonTTLExpiry(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }
	require.NoError(t, store.SaveComparison(ctx, &ComparisonRecord{State: ComparisonSuccess, FirstID: "a", SecondID: "b"}))

	store.now = func() time.Time { return base.Add(61 * time.Minute) }
	_, err := store.GetComparison(ctx, "a", "b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_GetComparisonReturnsCopy(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	require.NoError(t, store.SaveComparison(ctx, &ComparisonRecord{State: ComparisonRunning, FirstID: "a", SecondID: "b"}))

	got, err := store.GetComparison(ctx, "a", "b")
	require.NoError(t, err)
	got.State = ComparisonFailure

	again, err := store.GetComparison(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, ComparisonRunning, again.State, "mutation without SaveComparison must not leak into the store")
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &DocumentSession{ID: "s1", State: StateEmpty}))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	got.State = StateExtracted

	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, StateEmpty, again.State, "mutation without Save must not leak into the store")
}
