package repository

import (
	"context"
	"errors"

	"bulkdelete/internal/sandbox/model"
)

var (
	ErrNotFound = errors.New("resource not found")
	ErrLocked   = errors.New("resource is locked")
)

type ResourceRepository interface {
	// Initialize Indexes
	EnsureIndexes(ctx context.Context) error
	// Create live resources for ids; existing live ones are left alone,
	// deleted ones are revived. Returns how many were created or revived.
	Seed(ctx context.Context, ids []string, locked bool) (int, error)
	// Get a live resource
	Get(ctx context.Context, id string) (*model.Resource, error)
	// Soft delete a live resource. ErrNotFound if absent or already deleted,
	// ErrLocked if it refuses deletion.
	Delete(ctx context.Context, id string) error
}
