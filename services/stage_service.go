package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/courtside/league-engine/models"
	"github.com/courtside/league-engine/repositories"
	"github.com/courtside/league-engine/standings"
)

// GroupStandingsView is the ranked-table view of a group stage. Unresolved
// lists matches the aggregation had to skip; the tables still render for
// everything that did resolve.
type GroupStandingsView struct {
	StageID    int                         `json:"stage_id"`
	Rule       standings.ScoringRule       `json:"scoring_rule"`
	Tables     []standings.GroupTable      `json:"tables"`
	Unresolved []standings.UnresolvedMatch `json:"unresolved,omitempty"`
}

// BracketView is the elimination-tree view of a playoffs or finals stage.
type BracketView struct {
	StageID    int                         `json:"stage_id"`
	Nodes      []standings.BracketNode     `json:"nodes"`
	Unresolved []standings.UnresolvedMatch `json:"unresolved,omitempty"`
}

// PlayinsView is the flat chronological view of a play-in stage.
type PlayinsView struct {
	StageID    int                         `json:"stage_id"`
	Matches    []standings.PlayinMatch     `json:"matches"`
	Unresolved []standings.UnresolvedMatch `json:"unresolved,omitempty"`
}

// StageView is the tagged union over the three view shapes; exactly one of
// Standings, Bracket and Playins is set, selected by Kind.
type StageView struct {
	StageID   int                 `json:"stage_id"`
	Kind      models.StageKind    `json:"competition_stage"`
	Standings *GroupStandingsView `json:"standings,omitempty"`
	Bracket   *BracketView        `json:"bracket,omitempty"`
	Playins   *PlayinsView        `json:"playins,omitempty"`
}

// StageNotifier receives stage invalidation broadcasts; satisfied by
// *standings.Hub.
type StageNotifier interface {
	BroadcastStageUpdate(stageID int, payload interface{})
}

type StageService interface {
	// GetStageView dispatches on the stage's competition_stage kind and
	// returns the matching view shape. Default-rule views are served from
	// the per-stage cache until invalidated.
	GetStageView(ctx context.Context, stageID int) (*StageView, error)
	// GetGroupStandings computes a group stage's tables. A nil rule means
	// the default scoring rule (win 3, draw 1, loss 0, goals from game
	// wins); non-default rules bypass the cache.
	GetGroupStandings(ctx context.Context, stageID int, rule *standings.ScoringRule) (*GroupStandingsView, error)
	GetBracket(ctx context.Context, stageID int) (*BracketView, error)
	GetPlayins(ctx context.Context, stageID int) (*PlayinsView, error)
	// ListCategoryStages returns a category's stages for one season in
	// precedence order (group_stage < playins < playoffs < finals).
	ListCategoryStages(ctx context.Context, categoryID, seasonID int) ([]*models.CompetitionStage, error)
	// InvalidateStage drops the stage's cached views and notifies
	// subscribers. Result corrections upstream call this for the affected
	// stage.
	InvalidateStage(ctx context.Context, stageID int) error
}

type stageService struct {
	stageRepo repositories.StageRepository
	matchRepo repositories.MatchRepository
	notifier  StageNotifier
	logger    *slog.Logger

	cacheMu sync.RWMutex
	cache   map[int]*StageView
}

func NewStageService(
	stageRepo repositories.StageRepository,
	matchRepo repositories.MatchRepository,
	notifier StageNotifier,
	logger *slog.Logger,
) StageService {
	return &stageService{
		stageRepo: stageRepo,
		matchRepo: matchRepo,
		notifier:  notifier,
		logger:    logger,
		cache:     make(map[int]*StageView),
	}
}

// loadStage fetches the stage and its matches, mapping repository errors to
// the service taxonomy.
func (s *stageService) loadStage(ctx context.Context, stageID int) (*models.CompetitionStage, []*models.Match, error) {
	stage, err := s.stageRepo.GetByID(ctx, stageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, nil, ErrStageNotFound
		}
		return nil, nil, fmt.Errorf("failed to load stage %d: %w", stageID, err)
	}
	matches, err := s.matchRepo.ListByStage(ctx, stageID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load matches for stage %d: %w", stageID, err)
	}
	return stage, matches, nil
}

func (s *stageService) GetStageView(ctx context.Context, stageID int) (*StageView, error) {
	s.cacheMu.RLock()
	if view, ok := s.cache[stageID]; ok {
		s.cacheMu.RUnlock()
		return view, nil
	}
	s.cacheMu.RUnlock()

	stage, matches, err := s.loadStage(ctx, stageID)
	if err != nil {
		return nil, err
	}

	view := &StageView{StageID: stageID, Kind: stage.Kind}
	switch stage.Kind {
	case models.StageGroup:
		view.Standings = buildGroupView(stageID, matches, standings.DefaultScoringRule())
	case models.StagePlayoffs, models.StageFinals:
		bracket, buildErr := buildBracketView(stageID, matches)
		if buildErr != nil {
			return nil, buildErr
		}
		view.Bracket = bracket
	case models.StagePlayins:
		view.Playins = buildPlayinsView(stageID, matches)
	default:
		return nil, fmt.Errorf("%w: unknown stage kind %q", ErrWrongStageKind, stage.Kind)
	}

	s.cacheMu.Lock()
	s.cache[stageID] = view
	s.cacheMu.Unlock()
	return view, nil
}

func (s *stageService) GetGroupStandings(ctx context.Context, stageID int, rule *standings.ScoringRule) (*GroupStandingsView, error) {
	if rule == nil {
		defaultRule := standings.DefaultScoringRule()
		rule = &defaultRule
	}

	if *rule == standings.DefaultScoringRule() {
		view, err := s.getKindView(ctx, stageID, models.StageGroup)
		if err != nil {
			return nil, err
		}
		return view.Standings, nil
	}

	// Custom rules are computed fresh; the cache only holds default views.
	stage, matches, err := s.loadStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if stage.Kind != models.StageGroup {
		return nil, fmt.Errorf("%w: stage %d is %s, want %s", ErrWrongStageKind, stageID, stage.Kind, models.StageGroup)
	}
	return buildGroupView(stageID, matches, *rule), nil
}

func (s *stageService) GetBracket(ctx context.Context, stageID int) (*BracketView, error) {
	view, err := s.getKindView(ctx, stageID, models.StagePlayoffs)
	if err != nil {
		return nil, err
	}
	return view.Bracket, nil
}

func (s *stageService) GetPlayins(ctx context.Context, stageID int) (*PlayinsView, error) {
	view, err := s.getKindView(ctx, stageID, models.StagePlayins)
	if err != nil {
		return nil, err
	}
	return view.Playins, nil
}

// getKindView fetches the stage view and enforces the expected kind.
// Playoffs and finals share the bracket shape.
func (s *stageService) getKindView(ctx context.Context, stageID int, want models.StageKind) (*StageView, error) {
	view, err := s.GetStageView(ctx, stageID)
	if err != nil {
		return nil, err
	}
	ok := view.Kind == want
	if want == models.StagePlayoffs {
		ok = view.Kind.IsBracket()
	}
	if !ok {
		return nil, fmt.Errorf("%w: stage %d is %s", ErrWrongStageKind, stageID, view.Kind)
	}
	return view, nil
}

func (s *stageService) ListCategoryStages(ctx context.Context, categoryID, seasonID int) ([]*models.CompetitionStage, error) {
	stages, err := s.stageRepo.ListByCategoryAndSeason(ctx, categoryID, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages for category %d: %w", categoryID, err)
	}
	return stages, nil
}

func (s *stageService) InvalidateStage(ctx context.Context, stageID int) error {
	if _, err := s.stageRepo.GetByID(ctx, stageID); err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return ErrStageNotFound
		}
		return fmt.Errorf("failed to load stage %d: %w", stageID, err)
	}

	s.cacheMu.Lock()
	delete(s.cache, stageID)
	s.cacheMu.Unlock()

	if s.notifier != nil {
		s.notifier.BroadcastStageUpdate(stageID, nil)
	}
	s.logger.InfoContext(ctx, "stage views invalidated", slog.Int("stage_id", stageID))
	return nil
}

func buildGroupView(stageID int, matches []*models.Match, rule standings.ScoringRule) *GroupStandingsView {
	tables, unresolved := standings.ComputeGroup(matches, rule)
	return &GroupStandingsView{StageID: stageID, Rule: rule, Tables: tables, Unresolved: unresolved}
}

func buildBracketView(stageID int, matches []*models.Match) (*BracketView, error) {
	nodes, unresolved, err := standings.BuildBracket(matches)
	if err != nil {
		return nil, fmt.Errorf("failed to build bracket for stage %d: %w", stageID, err)
	}
	return &BracketView{StageID: stageID, Nodes: nodes, Unresolved: unresolved}, nil
}

func buildPlayinsView(stageID int, matches []*models.Match) *PlayinsView {
	entries, unresolved := standings.ListPlayins(matches)
	return &PlayinsView{StageID: stageID, Matches: entries, Unresolved: unresolved}
}
