package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/league-engine/models"
	"github.com/courtside/league-engine/schedule"
)

// scriptedFetcher answers each direction with a fixed page and records every
// request it sees.
type scriptedFetcher struct {
	mu       sync.Mutex
	pages    map[schedule.Direction]*schedule.Page
	requests []schedule.PageRequest
}

func (f *scriptedFetcher) FetchPage(_ context.Context, req schedule.PageRequest) (*schedule.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if p, ok := f.pages[req.Direction]; ok {
		return p, nil
	}
	return &schedule.Page{}, nil
}

func (f *scriptedFetcher) requestFor(dir schedule.Direction) (schedule.PageRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.Direction == dir {
			return r, true
		}
	}
	return schedule.PageRequest{}, false
}

func pageMatch(id int, at time.Time) *models.Match {
	return &models.Match{ID: id, ScheduledAt: &at, Status: models.StatusScheduled}
}

func TestGetSchedulePageEmptySeason(t *testing.T) {
	fetcher := &scriptedFetcher{}
	svc := NewScheduleService(fetcher, time.UTC)

	view, err := svc.GetSchedulePage(context.Background(), SchedulePageParams{
		Direction: schedule.DirectionFuture,
	})
	require.NoError(t, err)

	assert.Empty(t, view.Matches)
	assert.Empty(t, view.Days)
	assert.False(t, view.HasNextPage)
	assert.False(t, view.HasPreviousPage)
	assert.Nil(t, view.NextCursor)
	assert.Nil(t, view.PreviousCursor)

	// First load: exactly one fetch, at the default limit, no probe.
	require.Len(t, fetcher.requests, 1)
	assert.Equal(t, DefaultScheduleLimit, fetcher.requests[0].Limit)
	assert.Nil(t, fetcher.requests[0].Cursor)
}

func TestGetSchedulePageValidation(t *testing.T) {
	svc := NewScheduleService(&scriptedFetcher{}, time.UTC)
	ctx := context.Background()

	_, err := svc.GetSchedulePage(ctx, SchedulePageParams{Direction: "sideways"})
	assert.ErrorIs(t, err, ErrInvalidDirection)

	_, err = svc.GetSchedulePage(ctx, SchedulePageParams{
		Direction: schedule.DirectionFuture, Limit: 500,
	})
	assert.ErrorIs(t, err, ErrInvalidLimit)

	_, err = svc.GetSchedulePage(ctx, SchedulePageParams{
		Direction: schedule.DirectionFuture, CursorToken: "not-a-cursor!!",
	})
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestGetSchedulePageCursorsAndDays(t *testing.T) {
	base := time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC)
	fetcher := &scriptedFetcher{pages: map[schedule.Direction]*schedule.Page{
		schedule.DirectionFuture: {
			Matches: []*models.Match{
				pageMatch(1, base),
				pageMatch(2, base.Add(time.Hour)),
				pageMatch(3, base.AddDate(0, 0, 1)),
			},
			HasMore: true,
		},
	}}
	svc := NewScheduleService(fetcher, time.UTC)

	view, err := svc.GetSchedulePage(context.Background(), SchedulePageParams{
		Direction: schedule.DirectionFuture,
		Limit:     3,
	})
	require.NoError(t, err)

	assert.True(t, view.HasNextPage)
	assert.False(t, view.HasPreviousPage)

	require.NotNil(t, view.NextCursor)
	next, err := schedule.DecodeCursor(*view.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, 3, next.MatchID)

	require.NotNil(t, view.PreviousCursor)
	prev, err := schedule.DecodeCursor(*view.PreviousCursor)
	require.NoError(t, err)
	assert.Equal(t, 1, prev.MatchID)

	require.Len(t, view.Days, 2)
	assert.Equal(t, "2026-04-02", view.Days[0].Date)
	assert.Len(t, view.Days[0].Matches, 2)
	assert.Equal(t, "2026-04-03", view.Days[1].Date)
}

func TestGetSchedulePageProbesOppositeDirection(t *testing.T) {
	base := time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC)
	fetcher := &scriptedFetcher{pages: map[schedule.Direction]*schedule.Page{
		schedule.DirectionFuture: {
			Matches: []*models.Match{pageMatch(5, base.Add(time.Hour))},
		},
		schedule.DirectionPast: {
			Matches: []*models.Match{pageMatch(4, base.Add(-time.Hour))},
		},
	}}
	svc := NewScheduleService(fetcher, time.UTC)

	token := schedule.Cursor{ScheduledAt: base, MatchID: 4}.Encode()
	view, err := svc.GetSchedulePage(context.Background(), SchedulePageParams{
		Direction:   schedule.DirectionFuture,
		CursorToken: token,
	})
	require.NoError(t, err)

	// The past probe found a row behind the cursor.
	assert.True(t, view.HasPreviousPage)
	assert.False(t, view.HasNextPage)

	probe, ok := fetcher.requestFor(schedule.DirectionPast)
	require.True(t, ok)
	assert.Equal(t, 1, probe.Limit)
	require.NotNil(t, probe.Cursor)
	assert.Equal(t, 4, probe.Cursor.MatchID)
}

func TestGetSchedulePagePastDirectionFlags(t *testing.T) {
	base := time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC)
	fetcher := &scriptedFetcher{pages: map[schedule.Direction]*schedule.Page{
		schedule.DirectionPast: {
			Matches: []*models.Match{pageMatch(2, base.Add(-time.Hour))},
			HasMore: true,
		},
		schedule.DirectionFuture: {
			Matches: []*models.Match{pageMatch(9, base.Add(time.Hour))},
		},
	}}
	svc := NewScheduleService(fetcher, time.UTC)

	token := schedule.Cursor{ScheduledAt: base, MatchID: 3}.Encode()
	view, err := svc.GetSchedulePage(context.Background(), SchedulePageParams{
		Direction:   schedule.DirectionPast,
		CursorToken: token,
	})
	require.NoError(t, err)

	assert.True(t, view.HasPreviousPage)
	assert.True(t, view.HasNextPage)
}

func TestGetSchedulePageEmptyPageEchoesCursor(t *testing.T) {
	fetcher := &scriptedFetcher{}
	svc := NewScheduleService(fetcher, time.UTC)

	token := schedule.Cursor{
		ScheduledAt: time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC),
		MatchID:     7,
	}.Encode()
	view, err := svc.GetSchedulePage(context.Background(), SchedulePageParams{
		Direction:   schedule.DirectionFuture,
		CursorToken: token,
	})
	require.NoError(t, err)

	require.NotNil(t, view.NextCursor)
	assert.Equal(t, token, *view.NextCursor)
	require.NotNil(t, view.PreviousCursor)
	assert.Equal(t, token, *view.PreviousCursor)
}

func TestNewFeedClampsLimit(t *testing.T) {
	svc := NewScheduleService(&scriptedFetcher{}, time.UTC)

	feed := svc.NewFeed(0, schedule.Filters{}, nil)
	require.NotNil(t, feed)
	feed = svc.NewFeed(10_000, schedule.Filters{}, nil)
	require.NotNil(t, feed)
}
