package intake

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// SessionStore keeps in-flight sessions keyed by call id.
type SessionStore interface {
	// GetOrCreate returns the session for in.CallID, starting a new one when
	// none exists. The bool reports whether it was created.
	GetOrCreate(ctx context.Context, in Input) (*Session, bool, error)
	Get(ctx context.Context, callID string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, callID string) error
}

const (
	DefaultIdleTTL    = 30 * time.Minute
	DefaultMaxEntries = 10000
)

// MemoryStore is a process-local SessionStore. Sessions idle for longer than
// the TTL are dropped, and the least recently saved session is evicted once
// maxEntries is reached.
type MemoryStore struct {
	cache *expirable.LRU[string, *Session]
	now   func() time.Time
}

// NewMemoryStore creates a memory store. Zero values fall back to the defaults.
func NewMemoryStore(maxEntries int, idleTTL time.Duration) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &MemoryStore{
		cache: expirable.NewLRU[string, *Session](maxEntries, nil, idleTTL),
		now:   time.Now,
	}
}

func (m *MemoryStore) GetOrCreate(ctx context.Context, in Input) (*Session, bool, error) {
	if in.CallID == "" {
		return nil, false, ErrCallIDRequired
	}
	if s, ok := m.cache.Get(in.CallID); ok {
		cp := *s
		return &cp, false, nil
	}
	return NewSession(in, m.now()), true, nil
}

func (m *MemoryStore) Get(ctx context.Context, callID string) (*Session, error) {
	s, ok := m.cache.Get(callID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

// Save stores a copy of s and restarts its idle timer.
func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	if s == nil || s.CallID == "" {
		return ErrCallIDRequired
	}
	cp := *s
	m.cache.Add(s.CallID, &cp)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, callID string) error {
	m.cache.Remove(callID)
	return nil
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len() int {
	return m.cache.Len()
}
