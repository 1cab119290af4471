package repository

import (
	"context"
	"sync"
	"time"

	"bulkdelete/internal/sandbox/model"
)

// MemoryRepository keeps resources in process memory.
type MemoryRepository struct {
	mu        sync.Mutex
	resources map[string]*model.Resource
	now       func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		resources: make(map[string]*model.Resource),
		now:       time.Now,
	}
}

func (r *MemoryRepository) EnsureIndexes(ctx context.Context) error {
	return nil
}

func (r *MemoryRepository) Seed(ctx context.Context, ids []string, locked bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := 0
	for _, id := range ids {
		if res, ok := r.resources[id]; ok && res.DeletedAt == nil {
			continue
		}
		r.resources[id] = &model.Resource{
			ResourceID: id,
			Locked:     locked,
			CreatedAt:  r.now(),
		}
		created++
	}
	return created, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*model.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.resources[id]
	if !ok || res.DeletedAt != nil {
		return nil, ErrNotFound
	}
	cp := *res
	return &cp, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.resources[id]
	if !ok || res.DeletedAt != nil {
		return ErrNotFound
	}
	if res.Locked {
		return ErrLocked
	}
	now := r.now()
	res.DeletedAt = &now
	return nil
}
