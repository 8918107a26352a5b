package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtside/league-engine/models"
)

var ErrStageNotFound = errors.New("competition stage not found")

type StageRepository interface {
	GetByID(ctx context.Context, id int) (*models.CompetitionStage, error)
	// ListByCategoryAndSeason returns a category's stages for one season,
	// ordered by stage precedence (group_stage first, finals last).
	ListByCategoryAndSeason(ctx context.Context, categoryID, seasonID int) ([]*models.CompetitionStage, error)
}

type postgresStageRepository struct {
	db *sql.DB
}

func NewPostgresStageRepository(db *sql.DB) StageRepository {
	return &postgresStageRepository{db: db}
}

func (r *postgresStageRepository) GetByID(ctx context.Context, id int) (*models.CompetitionStage, error) {
	query := `
		SELECT id, sport_category_id, season_id, competition_stage
		FROM competition_stages
		WHERE id = $1`

	var stage models.CompetitionStage
	err := r.db.QueryRowContext(ctx, query, id).Scan(&stage.ID, &stage.CategoryID, &stage.SeasonID, &stage.Kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to scan competition stage %d: %w", id, err)
	}
	return &stage, nil
}

func (r *postgresStageRepository) ListByCategoryAndSeason(ctx context.Context, categoryID, seasonID int) ([]*models.CompetitionStage, error) {
	query := `
		SELECT id, sport_category_id, season_id, competition_stage
		FROM competition_stages
		WHERE sport_category_id = $1 AND season_id = $2
		ORDER BY CASE competition_stage
			WHEN 'group_stage' THEN 1
			WHEN 'playins' THEN 2
			WHEN 'playoffs' THEN 3
			WHEN 'finals' THEN 4
		END`

	rows, err := r.db.QueryContext(ctx, query, categoryID, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stages for category %d, season %d: %w", categoryID, seasonID, err)
	}
	defer rows.Close()

	stages := make([]*models.CompetitionStage, 0)
	for rows.Next() {
		var stage models.CompetitionStage
		if scanErr := rows.Scan(&stage.ID, &stage.CategoryID, &stage.SeasonID, &stage.Kind); scanErr != nil {
			return nil, fmt.Errorf("failed to scan competition stage row: %w", scanErr)
		}
		stages = append(stages, &stage)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during stage rows iteration: %w", err)
	}
	return stages, nil
}
