package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/courtside/league-engine/models"
	"github.com/courtside/league-engine/schedule"
)

// DayGroupView is one calendar date's matches in a schedule page.
type DayGroupView struct {
	Date    string          `json:"date"`
	Matches []*models.Match `json:"matches"`
}

// SchedulePageView is the wire shape of one schedule page: the matches in
// ascending scheduled order, their date grouping, and opaque cursors for the
// adjacent page in either temporal direction.
type SchedulePageView struct {
	Matches         []*models.Match `json:"matches"`
	Days            []DayGroupView  `json:"days"`
	HasNextPage     bool            `json:"has_next_page"`
	HasPreviousPage bool            `json:"has_previous_page"`
	NextCursor      *string         `json:"next_cursor,omitempty"`
	PreviousCursor  *string         `json:"previous_cursor,omitempty"`
}

// SchedulePageParams carries a validated page request. CursorToken is the
// opaque token from a previous page, empty for the first load.
type SchedulePageParams struct {
	Direction   schedule.Direction
	Limit       int
	Filters     schedule.Filters
	CursorToken string
}

const (
	DefaultScheduleLimit = 20
	maxScheduleLimit     = 100
)

type ScheduleService interface {
	// GetSchedulePage fetches one page of the schedule in the requested
	// temporal direction, plus boundary flags for both directions.
	GetSchedulePage(ctx context.Context, params SchedulePageParams) (*SchedulePageView, error)
	// NewFeed builds an in-process feed over the same storage, for
	// consumers that keep a live merged view instead of single pages.
	NewFeed(limit int, filters schedule.Filters, anchor *schedule.Cursor) *schedule.Feed
}

type scheduleService struct {
	fetcher schedule.PageFetcher
	loc     *time.Location
}

func NewScheduleService(fetcher schedule.PageFetcher, loc *time.Location) ScheduleService {
	if loc == nil {
		loc = time.UTC
	}
	return &scheduleService{fetcher: fetcher, loc: loc}
}

func (s *scheduleService) GetSchedulePage(ctx context.Context, params SchedulePageParams) (*SchedulePageView, error) {
	if !params.Direction.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDirection, params.Direction)
	}
	if params.Limit == 0 {
		params.Limit = DefaultScheduleLimit
	}
	if params.Limit < 0 || params.Limit > maxScheduleLimit {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, params.Limit)
	}

	var cursor *schedule.Cursor
	if params.CursorToken != "" {
		decoded, err := schedule.DecodeCursor(params.CursorToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
		}
		cursor = decoded
	}

	var (
		page        *schedule.Page
		hasOpposite bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.fetcher.FetchPage(gctx, schedule.PageRequest{
			Direction: params.Direction,
			Limit:     params.Limit,
			Filters:   params.Filters,
			Cursor:    cursor,
		})
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	if cursor != nil {
		// A mid-stream page also needs the boundary flag for the opposite
		// direction; probe one row concurrently with the main fetch.
		g.Go(func() error {
			probe, err := s.fetcher.FetchPage(gctx, schedule.PageRequest{
				Direction: opposite(params.Direction),
				Limit:     1,
				Filters:   params.Filters,
				Cursor:    cursor,
			})
			if err != nil {
				return err
			}
			hasOpposite = len(probe.Matches) > 0
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, schedule.ErrInvalidDirection) {
			return nil, ErrInvalidDirection
		}
		return nil, fmt.Errorf("failed to fetch schedule page: %w", err)
	}

	view := &SchedulePageView{Matches: page.Matches}
	if params.Direction == schedule.DirectionFuture {
		view.HasNextPage = page.HasMore
		view.HasPreviousPage = hasOpposite
	} else {
		view.HasPreviousPage = page.HasMore
		view.HasNextPage = hasOpposite
	}

	if len(page.Matches) > 0 {
		first := page.Matches[0]
		last := page.Matches[len(page.Matches)-1]
		prevToken := (&schedule.Cursor{ScheduledAt: *first.ScheduledAt, MatchID: first.ID}).Encode()
		nextToken := (&schedule.Cursor{ScheduledAt: *last.ScheduledAt, MatchID: last.ID}).Encode()
		view.PreviousCursor = &prevToken
		view.NextCursor = &nextToken
	} else if params.CursorToken != "" {
		// Empty page at a boundary: echo the inbound cursor so a retried
		// request stays replay-safe.
		token := params.CursorToken
		view.NextCursor = &token
		view.PreviousCursor = &token
	}

	for _, day := range schedule.GroupByDay(page.Matches, s.loc) {
		view.Days = append(view.Days, DayGroupView{Date: day.Date, Matches: day.Matches})
	}
	return view, nil
}

func (s *scheduleService) NewFeed(limit int, filters schedule.Filters, anchor *schedule.Cursor) *schedule.Feed {
	if limit <= 0 || limit > maxScheduleLimit {
		limit = DefaultScheduleLimit
	}
	return schedule.NewFeed(s.fetcher, limit, filters, anchor, s.loc)
}

func opposite(d schedule.Direction) schedule.Direction {
	if d == schedule.DirectionFuture {
		return schedule.DirectionPast
	}
	return schedule.DirectionFuture
}
