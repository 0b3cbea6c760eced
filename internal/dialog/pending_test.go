package dialog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkellerman/gutlog/internal/nlu"
)

func TestScopeKey(t *testing.T) {
	key, err := Scope{Channel: "cli", User: "u1", Thread: "t9"}.Key()
	require.NoError(t, err)
	assert.Equal(t, "cli|u1|t9", key)

	key, err = Scope{Channel: "cli", User: "u1"}.Key()
	require.NoError(t, err)
	assert.Equal(t, "cli|u1|", key)

	_, err = Scope{Channel: "cli"}.Key()
	assert.ErrorIs(t, err, ErrInvalidScope)

	_, err = Scope{User: "u1"}.Key()
	assert.ErrorIs(t, err, ErrInvalidScope)

	_, err = Scope{Channel: "  ", User: "u1"}.Key()
	assert.ErrorIs(t, err, ErrInvalidScope)
}

func pendingFor(intent nlu.Intent) Pending {
	r := &nlu.ParseResult{Intent: intent, Slots: nlu.NewSymptomSlots(intent)}
	r.RecomputeMissing()
	return Pending{Result: r, Ask: nlu.SlotSeverity, Text: "reflux"}
}

func TestPendingStoreSetGetClear(t *testing.T) {
	s := NewPendingStore(time.Minute)

	_, ok := s.Get("k")
	assert.False(t, ok)

	s.Set("k", pendingFor(nlu.IntentReflux))
	got, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, nlu.SlotSeverity, got.Ask)
	assert.Equal(t, "reflux", got.Text)
	assert.False(t, got.CreatedAt.IsZero())
	assert.True(t, got.ExpiresAt.After(got.CreatedAt))
	assert.Equal(t, 1, s.Len())

	s.Clear("k")
	_, ok = s.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestPendingStoreExpiry(t *testing.T) {
	s := NewPendingStore(10 * time.Millisecond)
	s.Set("k", pendingFor(nlu.IntentReflux))

	time.Sleep(20 * time.Millisecond)
	_, ok := s.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestPendingStoreReplacesExisting(t *testing.T) {
	s := NewPendingStore(time.Minute)
	s.Set("k", pendingFor(nlu.IntentReflux))
	s.Set("k", pendingFor(nlu.IntentSymptom))

	got, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, nlu.IntentSymptom, got.Result.Intent)
	assert.Equal(t, 1, s.Len())
}

func TestGetSoftExtendsNearDeadline(t *testing.T) {
	s := NewPendingStore(time.Hour)
	s.Set("k", pendingFor(nlu.IntentReflux))

	// Force the entry to the brink of expiry.
	s.mu.Lock()
	p := s.entries["k"]
	p.ExpiresAt = time.Now().Add(5 * time.Second)
	s.entries["k"] = p
	s.mu.Unlock()

	_, ok := s.GetSoft("k", 30*time.Second, time.Minute)
	require.True(t, ok)

	s.mu.Lock()
	extended := s.entries["k"].ExpiresAt
	s.mu.Unlock()
	assert.Greater(t, time.Until(extended), 30*time.Second)
}

func TestGetSoftLeavesHealthyEntryAlone(t *testing.T) {
	s := NewPendingStore(time.Hour)
	s.Set("k", pendingFor(nlu.IntentReflux))

	before, ok := s.Get("k")
	require.True(t, ok)

	got, ok := s.GetSoft("k", 30*time.Second, time.Minute)
	require.True(t, ok)
	assert.Equal(t, before.ExpiresAt, got.ExpiresAt)
}

func TestGetSoftDropsExpired(t *testing.T) {
	s := NewPendingStore(time.Hour)
	s.Set("k", pendingFor(nlu.IntentReflux))

	s.mu.Lock()
	p := s.entries["k"]
	p.ExpiresAt = time.Now().Add(-time.Second)
	s.entries["k"] = p
	s.mu.Unlock()

	_, ok := s.GetSoft("k", 30*time.Second, time.Minute)
	assert.False(t, ok)
}

func TestSweepRemovesExpiredEntries(t *testing.T) {
	s := NewPendingStore(time.Hour)
	s.Set("live", pendingFor(nlu.IntentReflux))
	s.Set("dead", pendingFor(nlu.IntentSymptom))

	s.mu.Lock()
	p := s.entries["dead"]
	p.ExpiresAt = time.Now().Add(-time.Second)
	s.entries["dead"] = p
	s.mu.Unlock()

	s.sweep(time.Now())

	s.mu.Lock()
	_, live := s.entries["live"]
	_, dead := s.entries["dead"]
	s.mu.Unlock()
	assert.True(t, live)
	assert.False(t, dead)
}
