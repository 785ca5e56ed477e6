package leads

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sink receives finished call records.
type Sink interface {
	Save(ctx context.Context, rec *Record) error
}

// Repository is a Sink that can also be read back for the admin API.
type Repository interface {
	Sink
	GetByCallID(ctx context.Context, callID string) (*Record, error)
	List(ctx context.Context, filter ListFilter) ([]*Record, error)
}

// InMemoryRepository keeps records in process memory. It is the default for
// local development and tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		records: make(map[string]*Record),
	}
}

// Save stores a copy of rec, keyed by call id. A later save for the same call
// replaces the earlier one.
func (r *InMemoryRepository) Save(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	cp := *rec
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	if cp.Timestamp.IsZero() {
		cp.Timestamp = time.Now().UTC()
	}

	r.mu.Lock()
	r.records[cp.CallID] = &cp
	r.mu.Unlock()
	return nil
}

// GetByCallID retrieves a record by call id
func (r *InMemoryRepository) GetByCallID(ctx context.Context, callID string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[callID]
	if !ok {
		return nil, ErrLeadNotFound
	}
	cp := *rec
	return &cp, nil
}

// List returns records newest first.
func (r *InMemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Record, error) {
	r.mu.RLock()
	out := make([]*Record, 0, len(r.records))
	for _, rec := range r.records {
		if filter.Status != "" && rec.AutoOfferStatus != filter.Status {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if filter.Offset >= len(out) {
		return []*Record{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
