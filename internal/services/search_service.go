package services

import (
	"context"
	stderrors "errors"

	"github.com/vytor/web3profile/internal/errors"
	"github.com/vytor/web3profile/internal/logger"
	"github.com/vytor/web3profile/internal/models"
	"github.com/vytor/web3profile/internal/repository"
)

// SearchService exposes lookup history
type SearchService interface {
	Recent(ctx context.Context, limit int) ([]models.SearchEntry, error)
	Popular(ctx context.Context, limit int) ([]models.SearchEntry, error)
	Delete(ctx context.Context, id int64) error
}

type searchService struct {
	repo repository.SearchRepository
}

// NewSearchService creates a new SearchService
func NewSearchService(repo repository.SearchRepository) SearchService {
	return &searchService{repo: repo}
}

func (s *searchService) Recent(ctx context.Context, limit int) ([]models.SearchEntry, error) {
	entries, err := s.repo.Recent(ctx, limit)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list recent searches: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return entries, nil
}

func (s *searchService) Popular(ctx context.Context, limit int) ([]models.SearchEntry, error) {
	entries, err := s.repo.Popular(ctx, limit)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list popular searches: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return entries, nil
}

func (s *searchService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.NewValidationError("id", "must be positive")
	}
	err := s.repo.Delete(ctx, id)
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NewNotFoundError("search", id)
	}
	if err != nil {
		logger.FromContext(ctx).Error("failed to delete search %d: %v", id, err)
		return errors.NewInternalError(err)
	}
	return nil
}
