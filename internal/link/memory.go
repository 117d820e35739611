package link

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository used by tests and by local runs
// without a database. Safe for concurrent use.
type MemoryRepository struct {
	mu    sync.RWMutex
	links map[string]*Link
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{links: make(map[string]*Link)}
}

func (r *MemoryRepository) Insert(_ context.Context, l *Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.links[l.Slug]; exists {
		return ErrSlugTaken
	}
	l.ID = uuid.NewString()
	l.IsActive = true
	l.CreatedAt = time.Now().UTC()
	cp := *l
	r.links[l.Slug] = &cp
	return nil
}

func (r *MemoryRepository) GetBySlug(_ context.Context, slug string) (*Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.links[slug]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *MemoryRepository) Deactivate(_ context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[slug]
	if !ok {
		return ErrNotFound
	}
	l.IsActive = false
	return nil
}

func (r *MemoryRepository) Stats(_ context.Context) (*Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := &Stats{}
	for _, l := range r.links {
		s.TotalLinks++
		if l.IsActive {
			s.ActiveLinks++
		}
		s.TotalBytes += l.SizeBytes
	}
	return s, nil
}
