package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/courtside/league-engine/models"
)

var ErrSeasonNotFound = errors.New("season not found")

type SeasonRepository interface {
	GetByID(ctx context.Context, id int) (*models.Season, error)
	// GetCurrent returns the season whose date range contains the given
	// instant. Multiple seasons may coexist in storage; the one starting
	// latest wins if ranges ever overlap.
	GetCurrent(ctx context.Context, now time.Time) (*models.Season, error)
}

type postgresSeasonRepository struct {
	db *sql.DB
}

func NewPostgresSeasonRepository(db *sql.DB) SeasonRepository {
	return &postgresSeasonRepository{db: db}
}

func (r *postgresSeasonRepository) GetByID(ctx context.Context, id int) (*models.Season, error) {
	query := `SELECT id, name, start_at, end_at FROM seasons WHERE id = $1`

	var season models.Season
	err := r.db.QueryRowContext(ctx, query, id).Scan(&season.ID, &season.Name, &season.StartAt, &season.EndAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeasonNotFound
		}
		return nil, err
	}
	return &season, nil
}

func (r *postgresSeasonRepository) GetCurrent(ctx context.Context, now time.Time) (*models.Season, error) {
	query := `
		SELECT id, name, start_at, end_at
		FROM seasons
		WHERE start_at <= $1 AND end_at >= $1
		ORDER BY start_at DESC
		LIMIT 1`

	var season models.Season
	err := r.db.QueryRowContext(ctx, query, now).Scan(&season.ID, &season.Name, &season.StartAt, &season.EndAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeasonNotFound
		}
		return nil, err
	}
	return &season, nil
}
