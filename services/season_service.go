package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/courtside/league-engine/models"
	"github.com/courtside/league-engine/repositories"
)

type SeasonService interface {
	// GetCurrentSeason resolves the season whose range contains now().
	GetCurrentSeason(ctx context.Context) (*models.Season, error)
	GetSeasonByID(ctx context.Context, id int) (*models.Season, error)
}

type seasonService struct {
	seasonRepo repositories.SeasonRepository
	now        func() time.Time
}

func NewSeasonService(seasonRepo repositories.SeasonRepository) SeasonService {
	return &seasonService{seasonRepo: seasonRepo, now: time.Now}
}

func (s *seasonService) GetCurrentSeason(ctx context.Context) (*models.Season, error) {
	season, err := s.seasonRepo.GetCurrent(ctx, s.now())
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrNoCurrentSeason
		}
		return nil, fmt.Errorf("failed to resolve current season: %w", err)
	}
	return season, nil
}

func (s *seasonService) GetSeasonByID(ctx context.Context, id int) (*models.Season, error) {
	season, err := s.seasonRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to load season %d: %w", id, err)
	}
	return season, nil
}
