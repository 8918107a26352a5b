package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/courtside/league-engine/models"
	"github.com/courtside/league-engine/schedule"
	"github.com/courtside/league-engine/services"
)

type ScheduleHandler struct {
	scheduleService services.ScheduleService
}

func NewScheduleHandler(scheduleService services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// GetSchedulePageHandler serves one page of the match feed.
//
//	GET /schedule?direction=future&limit=20&cursor=...&season_id=5&q=semifinal
func (h *ScheduleHandler) GetSchedulePageHandler(w http.ResponseWriter, r *http.Request) {
	params, err := schedulePageParamsFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	page, err := h.scheduleService.GetSchedulePage(r.Context(), *params)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"schedule": page}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func schedulePageParamsFromQuery(r *http.Request) (*services.SchedulePageParams, error) {
	q := r.URL.Query()

	direction := schedule.Direction(q.Get("direction"))
	if direction == "" {
		direction = schedule.DirectionFuture
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid limit query parameter: %q", raw)
		}
		limit = v
	}

	filters := schedule.Filters{Search: q.Get("q")}
	for name, dst := range map[string]**int{
		"season_id":   &filters.SeasonID,
		"sport_id":    &filters.SportID,
		"category_id": &filters.CategoryID,
		"stage_id":    &filters.StageID,
	} {
		v, err := queryInt(r, name)
		if err != nil {
			return nil, err
		}
		*dst = v
	}

	if raw := q.Get("status"); raw != "" {
		status := models.MatchStatus(raw)
		if !status.Valid() {
			return nil, fmt.Errorf("invalid status query parameter: %q", raw)
		}
		filters.Status = &status
	}

	for name, dst := range map[string]**time.Time{"from": &filters.From, "to": &filters.To} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s query parameter, want RFC3339: %q", name, raw)
		}
		*dst = &t
	}

	return &services.SchedulePageParams{
		Direction:   direction,
		Limit:       limit,
		Filters:     filters,
		CursorToken: q.Get("cursor"),
	}, nil
}
