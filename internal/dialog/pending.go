// Package dialog tracks multi-turn clarification state: when a parse
// comes back needing a slot, the manager parks it, asks, and resumes
// with the user's next message.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mkellerman/gutlog/internal/nlu"
)

// ErrInvalidScope is returned when a conversation scope cannot be keyed.
var ErrInvalidScope = errors.New("dialog: scope requires channel and user")

// Scope identifies one conversation. Thread is optional; channel and
// user are not, and an incomplete scope fails fast rather than silently
// sharing state across users.
type Scope struct {
	Channel string
	User    string
	Thread  string
}

// Key returns the pending-store key for this scope.
func (s Scope) Key() (string, error) {
	if strings.TrimSpace(s.Channel) == "" || strings.TrimSpace(s.User) == "" {
		return "", ErrInvalidScope
	}
	return fmt.Sprintf("%s|%s|%s", s.Channel, s.User, s.Thread), nil
}

// Pending is a parked parse awaiting one more answer from the user.
type Pending struct {
	Result    *nlu.ParseResult
	Ask       nlu.SlotName
	Text      string // the original utterance
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (p Pending) expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// PendingStore holds parked parses keyed by conversation scope. Expiry
// is lazy on read; StartSweeper adds periodic cleanup for long-lived
// processes.
type PendingStore struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]Pending
}

// NewPendingStore creates a store whose entries live for ttl.
func NewPendingStore(ttl time.Duration) *PendingStore {
	return &PendingStore{ttl: ttl, entries: make(map[string]Pending)}
}

// Set parks a pending parse, replacing any previous one for the scope.
func (s *PendingStore) Set(key string, p Pending) {
	now := time.Now()
	p.CreatedAt = now
	p.ExpiresAt = now.Add(s.ttl)

	s.mu.Lock()
	s.entries[key] = p
	s.mu.Unlock()
}

// Get returns the pending parse for key if it has not expired.
func (s *PendingStore) Get(key string) (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.entries[key]
	if !ok {
		return Pending{}, false
	}
	if p.expired(time.Now()) {
		delete(s.entries, key)
		return Pending{}, false
	}
	return p, true
}

// GetSoft is Get with a grace window: if the entry is alive but has less
// than minRemaining left, its expiry is pushed out by extendBy so a user
// answering right at the deadline is not cut off mid-exchange.
func (s *PendingStore) GetSoft(key string, minRemaining, extendBy time.Duration) (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.entries[key]
	if !ok {
		return Pending{}, false
	}
	now := time.Now()
	if p.expired(now) {
		delete(s.entries, key)
		return Pending{}, false
	}
	if p.ExpiresAt.Sub(now) < minRemaining {
		p.ExpiresAt = now.Add(extendBy)
		s.entries[key] = p
	}
	return p, true
}

// Clear removes the pending parse for key.
func (s *PendingStore) Clear(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Len reports how many unexpired entries are parked.
func (s *PendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	n := 0
	for key, p := range s.entries {
		if p.expired(now) {
			delete(s.entries, key)
			continue
		}
		n++
	}
	return n
}

// StartSweeper removes expired entries every interval until ctx is done.
func (s *PendingStore) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(time.Now())
			}
		}
	}()
}

func (s *PendingStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, p := range s.entries {
		if p.expired(now) {
			delete(s.entries, key)
		}
	}
}
