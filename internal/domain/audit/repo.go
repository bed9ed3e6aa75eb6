package audit

import (
	"context"
	"sync"
)

type Repository interface {
	Create(ctx context.Context, r *Record) error
	// List returns matching records newest first, plus the total match count.
	List(ctx context.Context, f Filter, limit, offset int) ([]*Record, int, error)
}

// DefaultMemoryCapacity bounds MemoryRepo when no capacity is given.
const DefaultMemoryCapacity = 10000

// MemoryRepo keeps the most recent records in a fixed-size ring. It backs the
// audit log when no database is configured.
type MemoryRepo struct {
	mu    sync.RWMutex
	ring  []*Record
	next  int
	count int
}

func NewMemoryRepo(capacity int) *MemoryRepo {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryRepo{ring: make([]*Record, capacity)}
}

func (m *MemoryRepo) Create(_ context.Context, r *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ring[m.next] = r
	m.next = (m.next + 1) % len(m.ring)
	if m.count < len(m.ring) {
		m.count++
	}
	return nil
}

func (m *MemoryRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Record, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*Record
	for i := 1; i <= m.count; i++ {
		r := m.ring[(m.next-i+len(m.ring))%len(m.ring)]
		if f.matches(r) {
			matched = append(matched, r)
		}
	}

	total := len(matched)
	if offset >= total {
		return []*Record{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	page := make([]*Record, end-offset)
	copy(page, matched[offset:end])
	return page, total, nil
}

// Len reports how many records are held.
func (m *MemoryRepo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count
}
