package requests

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mbd888/paylink/internal/pagination"
)

// MemoryStore is an in-memory request store for demo/development mode.
type MemoryStore struct {
	requests map[string]*Request
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory request store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requests: make(map[string]*Request),
	}
}

func (m *MemoryStore) Create(_ context.Context, request *Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *request
	m.requests[request.ID] = &cp
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	request, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *request
	return &cp, nil
}

func (m *MemoryStore) MarkClaimed(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	request, ok := m.requests[id]
	if !ok {
		return ErrNotFound
	}
	if request.Status != StatusPending {
		return ErrAlreadyClaimed
	}
	request.Status = StatusClaimed
	request.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) List(_ context.Context, limit int, cursor *pagination.Cursor) ([]*Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Request, 0, len(m.requests))
	for _, r := range m.requests {
		if cursor != nil && !olderThan(r, cursor) {
			continue
		}
		cp := *r
		result = append(result, &cp)
	}

	// Ties on created_at break on ID so the order is stable across pages.
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func olderThan(r *Request, cursor *pagination.Cursor) bool {
	if r.CreatedAt.Equal(cursor.CreatedAt) {
		return r.ID < cursor.ID
	}
	return r.CreatedAt.Before(cursor.CreatedAt)
}

// Compile-time assertion.
var _ Store = (*MemoryStore)(nil)
