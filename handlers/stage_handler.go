package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/courtside/league-engine/services"
	"github.com/courtside/league-engine/standings"
)

type StageHandler struct {
	stageService services.StageService
}

func NewStageHandler(stageService services.StageService) *StageHandler {
	return &StageHandler{stageService: stageService}
}

// GetStageViewHandler returns whichever view shape matches the stage's kind.
func (h *StageHandler) GetStageViewHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.stageService.GetStageView(r.Context(), stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"stage": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetStandingsHandler returns a group stage's ranked tables. The scoring
// rule is overridable per request through win/draw/loss/goals query
// parameters.
func (h *StageHandler) GetStandingsHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rule, err := scoringRuleFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.stageService.GetGroupStandings(r.Context(), stageID, rule)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StageHandler) GetBracketHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.stageService.GetBracket(r.Context(), stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StageHandler) GetPlayinsHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.stageService.GetPlayins(r.Context(), stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"playins": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListCategoryStagesHandler returns one category's stages for a season in
// precedence order.
func (h *StageHandler) ListCategoryStagesHandler(w http.ResponseWriter, r *http.Request) {
	categoryID, err := getIDFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	seasonID, err := queryInt(r, "season_id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if seasonID == nil {
		badRequestResponse(w, r, fmt.Errorf("season_id query parameter is required"))
		return
	}

	stages, err := h.stageService.ListCategoryStages(r.Context(), categoryID, *seasonID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"stages": stages}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// InvalidateStageHandler is the correction hook: result edits upstream call
// it to drop the stage's cached views and notify live subscribers.
func (h *StageHandler) InvalidateStageHandler(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.stageService.InvalidateStage(r.Context(), stageID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"invalidated": stageID}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func scoringRuleFromQuery(r *http.Request) (*standings.ScoringRule, error) {
	q := r.URL.Query()
	if q.Get("win") == "" && q.Get("draw") == "" && q.Get("loss") == "" && q.Get("goals") == "" {
		return nil, nil
	}

	rule := standings.DefaultScoringRule()
	for name, dst := range map[string]*int{"win": &rule.Win, "draw": &rule.Draw, "loss": &rule.Loss} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s query parameter: %q", name, raw)
		}
		*dst = v
	}
	switch goals := q.Get("goals"); goals {
	case "":
	case string(standings.GoalsFromGameWins), string(standings.GoalsFromPoints):
		rule.Goals = standings.GoalAccounting(goals)
	default:
		return nil, fmt.Errorf("invalid goals query parameter: %q", goals)
	}
	return &rule, nil
}
