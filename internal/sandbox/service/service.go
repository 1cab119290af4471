package service

import (
	"context"
	"errors"
	"log/slog"

	"bulkdelete/internal/sandbox/model"
	"bulkdelete/internal/sandbox/repository"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict: resource is locked")
	ErrBadRequest   = errors.New("bad request")
)

type ResourceService interface {
	SeedResources(ctx context.Context, req model.SeedResourcesReq) (*model.SeedResult, error)
	GetResource(ctx context.Context, id string) (*model.Resource, error)
	DeleteResource(ctx context.Context, id string) error
}

type Service struct {
	Repo   repository.ResourceRepository
	logger *slog.Logger
}

func NewService(repo repository.ResourceRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{Repo: repo, logger: logger}
}

func (s *Service) SeedResources(ctx context.Context, req model.SeedResourcesReq) (*model.SeedResult, error) {
	created, err := s.Repo.Seed(ctx, req.IDs, false)
	if err != nil {
		return nil, err
	}
	locked, err := s.Repo.Seed(ctx, req.LockedIDs, true)
	if err != nil {
		return nil, err
	}

	result := &model.SeedResult{
		Created: created + locked,
		Total:   len(req.IDs) + len(req.LockedIDs),
	}
	s.logger.InfoContext(ctx, "Seeded resources", "created", result.Created, "requested", result.Total)
	return result, nil
}

func (s *Service) GetResource(ctx context.Context, id string) (*model.Resource, error) {
	if id == "" {
		return nil, ErrBadRequest
	}
	res, err := s.Repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return res, err
}

func (s *Service) DeleteResource(ctx context.Context, id string) error {
	if id == "" {
		return ErrBadRequest
	}

	err := s.Repo.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrLocked):
		return ErrConflict
	case err != nil:
		return err
	}

	s.logger.InfoContext(ctx, "Deleted resource", "id", id)
	return nil
}
