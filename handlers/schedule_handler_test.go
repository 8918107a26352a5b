package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/league-engine/schedule"
	"github.com/courtside/league-engine/services"
)

type fakeScheduleService struct {
	page       *services.SchedulePageView
	err        error
	lastParams services.SchedulePageParams
}

func (f *fakeScheduleService) GetSchedulePage(_ context.Context, params services.SchedulePageParams) (*services.SchedulePageView, error) {
	f.lastParams = params
	return f.page, f.err
}

func (f *fakeScheduleService) NewFeed(limit int, filters schedule.Filters, anchor *schedule.Cursor) *schedule.Feed {
	return schedule.NewFeed(nil, limit, filters, anchor, nil)
}

func scheduleRequest(t *testing.T, svc *fakeScheduleService, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	NewScheduleHandler(svc).GetSchedulePageHandler(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestGetSchedulePageHandlerDefaults(t *testing.T) {
	svc := &fakeScheduleService{page: &services.SchedulePageView{}}
	rec := scheduleRequest(t, svc, "/schedule")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, schedule.DirectionFuture, svc.lastParams.Direction)
	assert.Zero(t, svc.lastParams.Limit)
	assert.Empty(t, svc.lastParams.CursorToken)
}

func TestGetSchedulePageHandlerParsesFilters(t *testing.T) {
	svc := &fakeScheduleService{page: &services.SchedulePageView{}}
	rec := scheduleRequest(t, svc,
		"/schedule?direction=past&limit=50&season_id=5&stage_id=7&status=completed&q=final&from=2026-04-01T00:00:00Z&cursor=abc")

	assert.Equal(t, http.StatusOK, rec.Code)
	p := svc.lastParams
	assert.Equal(t, schedule.DirectionPast, p.Direction)
	assert.Equal(t, 50, p.Limit)
	require.NotNil(t, p.Filters.SeasonID)
	assert.Equal(t, 5, *p.Filters.SeasonID)
	require.NotNil(t, p.Filters.StageID)
	assert.Equal(t, 7, *p.Filters.StageID)
	require.NotNil(t, p.Filters.Status)
	assert.Equal(t, "completed", string(*p.Filters.Status))
	assert.Equal(t, "final", p.Filters.Search)
	require.NotNil(t, p.Filters.From)
	assert.Equal(t, "abc", p.CursorToken)
}

func TestGetSchedulePageHandlerRejectsBadQuery(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{name: "bad limit", target: "/schedule?limit=many"},
		{name: "bad status", target: "/schedule?status=unknown"},
		{name: "bad from", target: "/schedule?from=yesterday"},
		{name: "bad season id", target: "/schedule?season_id=-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := scheduleRequest(t, &fakeScheduleService{}, tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetSchedulePageHandlerServiceError(t *testing.T) {
	svc := &fakeScheduleService{err: services.ErrInvalidCursor}
	rec := scheduleRequest(t, svc, "/schedule?cursor=stale")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
