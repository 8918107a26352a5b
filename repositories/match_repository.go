package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/courtside/league-engine/models"
	"github.com/courtside/league-engine/schedule"
)

var ErrMatchNotFound = errors.New("match not found")

const matchColumns = `m.id, m.stage_id, m.name, m.venue, m.scheduled_at, m.start_at, m.end_at,
	       m.best_of, m.status, m.round, m.position, m.group_key`

type MatchRepository interface {
	GetByID(ctx context.Context, id int) (*models.Match, error)
	// ListByStage returns a stage's matches with participants, games and
	// game scores attached, ordered by scheduled time then id.
	ListByStage(ctx context.Context, stageID int) ([]*models.Match, error)
	// FetchPage runs one seek-paginated schedule query, satisfying
	// schedule.PageFetcher. Rows without a scheduled_at are excluded at the
	// query; the returned page is sorted ascending regardless of direction
	// and carries participants only.
	FetchPage(ctx context.Context, req schedule.PageRequest) (*schedule.Page, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	err := rowScanner.Scan(
		&m.ID, &m.StageID, &m.Name, &m.Venue, &m.ScheduledAt, &m.StartAt, &m.EndAt,
		&m.BestOf, &m.Status, &m.Round, &m.Position, &m.GroupKey,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches m WHERE m.id = $1`

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	if err := r.attachDetails(ctx, []*models.Match{match}, true); err != nil {
		return nil, err
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByStage(ctx context.Context, stageID int) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches m
		WHERE m.stage_id = $1
		ORDER BY m.scheduled_at ASC NULLS LAST, m.id ASC`

	rows, err := r.db.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}

	if err := r.attachDetails(ctx, matches, true); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) FetchPage(ctx context.Context, req schedule.PageRequest) (*schedule.Page, error) {
	if !req.Direction.Valid() {
		return nil, schedule.ErrInvalidDirection
	}

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT ` + matchColumns + `
		FROM matches m
		JOIN competition_stages cs ON cs.id = m.stage_id
		JOIN sport_categories sc ON sc.id = cs.sport_category_id
		WHERE m.scheduled_at IS NOT NULL`)

	args := make([]interface{}, 0, 8)
	placeholder := func() string {
		return "$" + strconv.Itoa(len(args))
	}

	f := req.Filters
	if f.SeasonID != nil {
		args = append(args, *f.SeasonID)
		queryBuilder.WriteString(" AND cs.season_id = " + placeholder())
	}
	if f.SportID != nil {
		args = append(args, *f.SportID)
		queryBuilder.WriteString(" AND sc.sport_id = " + placeholder())
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		queryBuilder.WriteString(" AND cs.sport_category_id = " + placeholder())
	}
	if f.StageID != nil {
		args = append(args, *f.StageID)
		queryBuilder.WriteString(" AND m.stage_id = " + placeholder())
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		queryBuilder.WriteString(" AND m.status = " + placeholder())
	}
	if f.From != nil {
		args = append(args, *f.From)
		queryBuilder.WriteString(" AND m.scheduled_at >= " + placeholder())
	}
	if f.To != nil {
		args = append(args, *f.To)
		queryBuilder.WriteString(" AND m.scheduled_at <= " + placeholder())
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		p := placeholder()
		queryBuilder.WriteString(" AND (m.name ILIKE " + p + " OR m.venue ILIKE " + p + ")")
	}

	if req.Cursor != nil {
		args = append(args, req.Cursor.ScheduledAt)
		tArg := placeholder()
		args = append(args, req.Cursor.MatchID)
		idArg := placeholder()
		if req.Direction == schedule.DirectionFuture {
			queryBuilder.WriteString(" AND (m.scheduled_at, m.id) > (" + tArg + ", " + idArg + ")")
		} else {
			queryBuilder.WriteString(" AND (m.scheduled_at, m.id) < (" + tArg + ", " + idArg + ")")
		}
	}

	if req.Direction == schedule.DirectionFuture {
		queryBuilder.WriteString(" ORDER BY m.scheduled_at ASC, m.id ASC")
	} else {
		queryBuilder.WriteString(" ORDER BY m.scheduled_at DESC, m.id DESC")
	}
	// Probe one row past the page to learn whether more data remains.
	args = append(args, req.Limit+1)
	queryBuilder.WriteString(" LIMIT " + placeholder())

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule page: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0, req.Limit+1)
	for rows.Next() {
		match, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", scanErr)
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during schedule rows iteration: %w", err)
	}

	hasMore := len(matches) > req.Limit
	if hasMore {
		matches = matches[:req.Limit]
	}
	if req.Direction == schedule.DirectionPast {
		// The page was walked newest-first; hand it back ascending.
		for i, j := 0, len(matches)-1; i < j; i, j = i+1, j-1 {
			matches[i], matches[j] = matches[j], matches[i]
		}
	}

	if err := r.attachDetails(ctx, matches, false); err != nil {
		return nil, err
	}
	return &schedule.Page{Matches: matches, HasMore: hasMore}, nil
}

// attachDetails loads participants for the given matches, plus games and
// game scores when withGames is set, and stitches them in place.
func (r *postgresMatchRepository) attachDetails(ctx context.Context, matches []*models.Match, withGames bool) error {
	if len(matches) == 0 {
		return nil
	}
	byID := make(map[int]*models.Match, len(matches))
	ids := make([]int64, 0, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
		ids = append(ids, int64(m.ID))
	}

	participantQuery := `
		SELECT id, match_id, team_id, match_score
		FROM match_participants
		WHERE match_id = ANY($1)
		ORDER BY match_id, id`
	rows, err := r.db.QueryContext(ctx, participantQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query match participants: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p models.MatchParticipant
		if err := rows.Scan(&p.ID, &p.MatchID, &p.TeamID, &p.MatchScore); err != nil {
			return fmt.Errorf("failed to scan match participant row: %w", err)
		}
		if m, ok := byID[p.MatchID]; ok {
			m.Participants = append(m.Participants, p)
		}
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("error during participant rows iteration: %w", err)
	}

	if !withGames {
		return nil
	}

	gameQuery := `
		SELECT id, match_id, game_number, start_at, end_at
		FROM games
		WHERE match_id = ANY($1)
		ORDER BY match_id, game_number`
	gameRows, err := r.db.QueryContext(ctx, gameQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query games: %w", err)
	}
	defer gameRows.Close()

	gamesByID := make(map[int]*models.Game)
	gameOrder := make([]int, 0)
	for gameRows.Next() {
		var g models.Game
		if err := gameRows.Scan(&g.ID, &g.MatchID, &g.GameNumber, &g.StartAt, &g.EndAt); err != nil {
			return fmt.Errorf("failed to scan game row: %w", err)
		}
		gamesByID[g.ID] = &g
		gameOrder = append(gameOrder, g.ID)
	}
	if err = gameRows.Err(); err != nil {
		return fmt.Errorf("error during game rows iteration: %w", err)
	}

	scoreQuery := `
		SELECT gs.id, gs.game_id, gs.participant_id, gs.score
		FROM game_scores gs
		JOIN games g ON g.id = gs.game_id
		WHERE g.match_id = ANY($1)
		ORDER BY gs.game_id, gs.participant_id`
	scoreRows, err := r.db.QueryContext(ctx, scoreQuery, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query game scores: %w", err)
	}
	defer scoreRows.Close()
	for scoreRows.Next() {
		var s models.GameScore
		if err := scoreRows.Scan(&s.ID, &s.GameID, &s.ParticipantID, &s.Score); err != nil {
			return fmt.Errorf("failed to scan game score row: %w", err)
		}
		if g, ok := gamesByID[s.GameID]; ok {
			g.Scores = append(g.Scores, s)
		}
	}
	if err = scoreRows.Err(); err != nil {
		return fmt.Errorf("error during game score rows iteration: %w", err)
	}

	for _, gameID := range gameOrder {
		g := gamesByID[gameID]
		if m, ok := byID[g.MatchID]; ok {
			m.Games = append(m.Games, *g)
		}
	}
	return nil
}
