package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/forum/internal/repository"
)

// StatsService reports store-wide counts
type StatsService struct {
	statsRepo repository.StatsRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(statsRepo repository.StatsRepository) *StatsService {
	return &StatsService{statsRepo: statsRepo}
}

// Counts returns the number of users, posts, comments and votes
func (s *StatsService) Counts(ctx context.Context) (repository.Counts, error) {
	counts, err := s.statsRepo.Counts(ctx)
	if err != nil {
		return repository.Counts{}, fmt.Errorf("failed to count rows: %w", err)
	}
	return counts, nil
}
