package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/league-engine/models"
	"github.com/courtside/league-engine/repositories"
	"github.com/courtside/league-engine/schedule"
	"github.com/courtside/league-engine/standings"
)

type fakeStageRepo struct {
	stages   map[int]*models.CompetitionStage
	byIDHits int
	listed   []*models.CompetitionStage
}

func (f *fakeStageRepo) GetByID(_ context.Context, id int) (*models.CompetitionStage, error) {
	f.byIDHits++
	if s, ok := f.stages[id]; ok {
		return s, nil
	}
	return nil, repositories.ErrStageNotFound
}

func (f *fakeStageRepo) ListByCategoryAndSeason(_ context.Context, _, _ int) ([]*models.CompetitionStage, error) {
	return f.listed, nil
}

type fakeMatchRepo struct {
	byStage  map[int][]*models.Match
	listHits int
}

func (f *fakeMatchRepo) GetByID(_ context.Context, _ int) (*models.Match, error) {
	return nil, repositories.ErrMatchNotFound
}

func (f *fakeMatchRepo) ListByStage(_ context.Context, stageID int) ([]*models.Match, error) {
	f.listHits++
	return f.byStage[stageID], nil
}

func (f *fakeMatchRepo) FetchPage(_ context.Context, _ schedule.PageRequest) (*schedule.Page, error) {
	return &schedule.Page{}, nil
}

type fakeNotifier struct {
	stageIDs []int
}

func (f *fakeNotifier) BroadcastStageUpdate(stageID int, _ interface{}) {
	f.stageIDs = append(f.stageIDs, stageID)
}

// finishedMatch builds a completed best-of-3 swept by the first team.
func finishedMatch(id, teamA, teamB int) *models.Match {
	pA := id*10 + 1
	pB := id*10 + 2
	m := &models.Match{
		ID:     id,
		BestOf: 3,
		Status: models.StatusCompleted,
		Participants: []models.MatchParticipant{
			{ID: pA, MatchID: id, TeamID: teamA},
			{ID: pB, MatchID: id, TeamID: teamB},
		},
	}
	for n := 1; n <= 2; n++ {
		m.Games = append(m.Games, models.Game{
			ID: id*10 + n, MatchID: id, GameNumber: n,
			Scores: []models.GameScore{
				{ParticipantID: pA, Score: 25},
				{ParticipantID: pB, Score: 19},
			},
		})
	}
	return m
}

func newStageFixture(kind models.StageKind, matches []*models.Match) (*fakeStageRepo, *fakeMatchRepo, *fakeNotifier, StageService) {
	stageRepo := &fakeStageRepo{stages: map[int]*models.CompetitionStage{
		7: {ID: 7, CategoryID: 1, SeasonID: 1, Kind: kind},
	}}
	matchRepo := &fakeMatchRepo{byStage: map[int][]*models.Match{7: matches}}
	notifier := &fakeNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return stageRepo, matchRepo, notifier, NewStageService(stageRepo, matchRepo, notifier, logger)
}

func TestGetStageViewGroupStage(t *testing.T) {
	_, _, _, svc := newStageFixture(models.StageGroup, []*models.Match{
		finishedMatch(1, 10, 20),
	})

	view, err := svc.GetStageView(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, models.StageGroup, view.Kind)
	require.NotNil(t, view.Standings)
	assert.Nil(t, view.Bracket)
	assert.Nil(t, view.Playins)
	require.Len(t, view.Standings.Tables, 1)
	assert.Equal(t, standings.DefaultScoringRule(), view.Standings.Rule)
}

func TestGetStageViewPlayins(t *testing.T) {
	_, _, _, svc := newStageFixture(models.StagePlayins, []*models.Match{
		finishedMatch(1, 10, 20),
	})

	view, err := svc.GetStageView(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, view.Playins)
	require.Len(t, view.Playins.Matches, 1)
	assert.Equal(t, 10, *view.Playins.Matches[0].WinnerTeamID)
}

func TestGetStageViewBracketKinds(t *testing.T) {
	for _, kind := range []models.StageKind{models.StagePlayoffs, models.StageFinals} {
		round, position := 1, 1
		m := finishedMatch(1, 10, 20)
		m.Round = &round
		m.Position = &position
		_, _, _, svc := newStageFixture(kind, []*models.Match{m})

		bracket, err := svc.GetBracket(context.Background(), 7)
		require.NoError(t, err, "kind %s", kind)
		require.Len(t, bracket.Nodes, 1)
		assert.Equal(t, 10, *bracket.Nodes[0].WinnerTeamID)
	}
}

func TestGetStageViewCaches(t *testing.T) {
	stageRepo, matchRepo, _, svc := newStageFixture(models.StageGroup, nil)
	ctx := context.Background()

	first, err := svc.GetStageView(ctx, 7)
	require.NoError(t, err)
	second, err := svc.GetStageView(ctx, 7)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, stageRepo.byIDHits)
	assert.Equal(t, 1, matchRepo.listHits)
}

func TestInvalidateStageDropsCacheAndNotifies(t *testing.T) {
	stageRepo, matchRepo, notifier, svc := newStageFixture(models.StageGroup, nil)
	ctx := context.Background()

	_, err := svc.GetStageView(ctx, 7)
	require.NoError(t, err)
	require.NoError(t, svc.InvalidateStage(ctx, 7))
	assert.Equal(t, []int{7}, notifier.stageIDs)

	_, err = svc.GetStageView(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, matchRepo.listHits)
	// Invalidation itself verifies the stage exists.
	assert.Equal(t, 3, stageRepo.byIDHits)
}

func TestInvalidateStageUnknownStage(t *testing.T) {
	_, _, notifier, svc := newStageFixture(models.StageGroup, nil)

	err := svc.InvalidateStage(context.Background(), 99)
	assert.ErrorIs(t, err, ErrStageNotFound)
	assert.Empty(t, notifier.stageIDs)
}

func TestGetBracketOnGroupStage(t *testing.T) {
	_, _, _, svc := newStageFixture(models.StageGroup, nil)

	_, err := svc.GetBracket(context.Background(), 7)
	assert.ErrorIs(t, err, ErrWrongStageKind)
}

func TestGetPlayinsOnBracketStage(t *testing.T) {
	round, position := 1, 1
	m := finishedMatch(1, 10, 20)
	m.Round = &round
	m.Position = &position
	_, _, _, svc := newStageFixture(models.StagePlayoffs, []*models.Match{m})

	_, err := svc.GetPlayins(context.Background(), 7)
	assert.ErrorIs(t, err, ErrWrongStageKind)
}

func TestGetStageViewUnknownStage(t *testing.T) {
	_, _, _, svc := newStageFixture(models.StageGroup, nil)

	_, err := svc.GetStageView(context.Background(), 99)
	assert.ErrorIs(t, err, ErrStageNotFound)
}

func TestGetGroupStandingsCustomRuleBypassesCache(t *testing.T) {
	_, matchRepo, _, svc := newStageFixture(models.StageGroup, []*models.Match{
		finishedMatch(1, 10, 20),
	})
	ctx := context.Background()

	_, err := svc.GetGroupStandings(ctx, 7, nil)
	require.NoError(t, err)
	require.Equal(t, 1, matchRepo.listHits)

	custom := standings.ScoringRule{Win: 2, Draw: 1, Loss: 0, Goals: standings.GoalsFromPoints}
	view, err := svc.GetGroupStandings(ctx, 7, &custom)
	require.NoError(t, err)
	assert.Equal(t, custom, view.Rule)
	assert.Equal(t, 2, matchRepo.listHits)

	// Default rule still serves from cache.
	_, err = svc.GetGroupStandings(ctx, 7, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, matchRepo.listHits)
}

func TestListCategoryStagesPassesThrough(t *testing.T) {
	stageRepo, _, _, svc := newStageFixture(models.StageGroup, nil)
	stageRepo.listed = []*models.CompetitionStage{
		{ID: 1, Kind: models.StageGroup},
		{ID: 2, Kind: models.StageFinals},
	}

	stages, err := svc.ListCategoryStages(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, stages, 2)
	assert.Equal(t, models.StageGroup, stages[0].Kind)
}
