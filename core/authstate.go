package core

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	defaultAuthStateTTL = 10 * time.Minute
	authStateTokenBytes = 16
)

// MemoryAuthStateStore keeps pending authorization records in a mutex-guarded
// map. Expired entries are pruned opportunistically on every Create call; no
// background timer runs, so a store that stops receiving Create calls sheds
// stale entries only at the next creation.
type MemoryAuthStateStore struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]AuthorizationState
	now        func() time.Time
}

func NewMemoryAuthStateStore(ttl time.Duration) *MemoryAuthStateStore {
	return NewMemoryAuthStateStoreWithLimits(ttl, 0)
}

// NewMemoryAuthStateStoreWithLimits caps the store at maxEntries records,
// evicting the oldest pending records first. maxEntries <= 0 disables the
// cap.
func NewMemoryAuthStateStoreWithLimits(ttl time.Duration, maxEntries int) *MemoryAuthStateStore {
	if ttl <= 0 {
		ttl = defaultAuthStateTTL
	}
	return &MemoryAuthStateStore{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    map[string]AuthorizationState{},
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (s *MemoryAuthStateStore) Create(_ context.Context, state AuthorizationState) (string, error) {
	if s == nil {
		return "", fmt.Errorf("core: auth state store is not configured")
	}
	if err := state.Validate(); err != nil {
		return "", err
	}

	token, err := generateAuthStateToken()
	if err != nil {
		return "", err
	}

	now := s.now()
	state.Token = token
	if state.CreatedAt.IsZero() {
		state.CreatedAt = now
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.entries[token] = state
	s.evictOldestLocked()

	return token, nil
}

func (s *MemoryAuthStateStore) Consume(_ context.Context, token string) (AuthorizationState, error) {
	if s == nil {
		return AuthorizationState{}, fmt.Errorf("core: auth state store is not configured")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return AuthorizationState{}, ErrAuthStateNotFound
	}

	s.mu.Lock()
	state, ok := s.entries[token]
	if ok {
		delete(s.entries, token)
	}
	s.mu.Unlock()

	// An expired record and a record that never existed are indistinguishable
	// to the caller; stale tokens leak no information.
	if !ok || s.now().Sub(state.CreatedAt) > s.ttl {
		return AuthorizationState{}, ErrAuthStateNotFound
	}
	return state, nil
}

func (s *MemoryAuthStateStore) pruneLocked(now time.Time) {
	for token, state := range s.entries {
		if now.Sub(state.CreatedAt) > s.ttl {
			delete(s.entries, token)
		}
	}
}

func (s *MemoryAuthStateStore) evictOldestLocked() {
	if s.maxEntries <= 0 || len(s.entries) <= s.maxEntries {
		return
	}
	tokens := make([]string, 0, len(s.entries))
	for token := range s.entries {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool {
		return s.entries[tokens[i]].CreatedAt.Before(s.entries[tokens[j]].CreatedAt)
	})
	for _, token := range tokens {
		if len(s.entries) <= s.maxEntries {
			return
		}
		delete(s.entries, token)
	}
}

func generateAuthStateToken() (string, error) {
	raw := make([]byte, authStateTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("core: generate auth state token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
