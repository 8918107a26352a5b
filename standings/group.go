package standings

import (
	"sort"

	"github.com/courtside/league-engine/models"
)

// GoalAccounting selects what goals_for/goals_against accumulate. Best-of
// formats have no natural "goals", so the mapping is configuration, not a
// fixed rule.
type GoalAccounting string

const (
	// GoalsFromGameWins counts each participant's game wins as goals.
	GoalsFromGameWins GoalAccounting = "game_wins"
	// GoalsFromPoints sums the raw point scores of every recorded game.
	GoalsFromPoints GoalAccounting = "points"
)

// ScoringRule is the injectable points configuration for a group table.
type ScoringRule struct {
	Win   int            `json:"win"`
	Draw  int            `json:"draw"`
	Loss  int            `json:"loss"`
	Goals GoalAccounting `json:"goals"`
}

func DefaultScoringRule() ScoringRule {
	return ScoringRule{Win: 3, Draw: 1, Loss: 0, Goals: GoalsFromGameWins}
}

// TableRow is one team's line in a group table.
type TableRow struct {
	TeamID         int `json:"team_id"`
	Position       int `json:"position"`
	Played         int `json:"matches_played"`
	Wins           int `json:"wins"`
	Draws          int `json:"draws"`
	Losses         int `json:"losses"`
	GoalsFor       int `json:"goals_for"`
	GoalsAgainst   int `json:"goals_against"`
	GoalDifference int `json:"goal_difference"`
	Points         int `json:"points"`
}

// GroupTable is the ranked table of one group within a stage.
type GroupTable struct {
	GroupKey string     `json:"group_key"`
	Rows     []TableRow `json:"rows"`
}

// UnresolvedMatch flags a match the aggregation had to skip, so a table can
// still render for the matches that did resolve.
type UnresolvedMatch struct {
	MatchID int    `json:"match_id"`
	Reason  string `json:"reason"`
}

type resolvedMatch struct {
	match   *models.Match
	outcome *Outcome
}

// ComputeGroup folds a group stage's completed matches into ranked tables,
// one per group key. Matches whose outcome cannot be resolved are skipped
// and reported separately rather than failing the whole computation.
//
// Ranking: points desc, then goal difference, goals for, head-to-head when
// exactly two teams remain tied, and finally team id for a deterministic
// total order. Two rows share a numeric position only when head-to-head
// could not break their tie either.
func ComputeGroup(matches []*models.Match, rule ScoringRule) ([]GroupTable, []UnresolvedMatch) {
	byGroup := make(map[string][]resolvedMatch)
	var unresolved []UnresolvedMatch

	for _, m := range matches {
		if m.Status != models.StatusCompleted {
			continue
		}
		out, err := ResolveOutcome(m)
		if err != nil {
			unresolved = append(unresolved, UnresolvedMatch{MatchID: m.ID, Reason: err.Error()})
			continue
		}
		if out.WinnerParticipantID == nil {
			// Completed upstream but undecided; ResolveOutcome reports this
			// as an error, so reaching here means a draw-permitting format.
			unresolved = append(unresolved, UnresolvedMatch{MatchID: m.ID, Reason: "no winner determinable"})
			continue
		}
		key := ""
		if m.GroupKey != nil {
			key = *m.GroupKey
		}
		byGroup[key] = append(byGroup[key], resolvedMatch{match: m, outcome: out})
	}

	keys := make([]string, 0, len(byGroup))
	for k := range byGroup {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tables := make([]GroupTable, 0, len(keys))
	for _, key := range keys {
		tables = append(tables, GroupTable{
			GroupKey: key,
			Rows:     rankGroup(byGroup[key], rule),
		})
	}
	return tables, unresolved
}

func rankGroup(results []resolvedMatch, rule ScoringRule) []TableRow {
	rows := make(map[int]*TableRow)
	rowFor := func(teamID int) *TableRow {
		if r, ok := rows[teamID]; ok {
			return r
		}
		r := &TableRow{TeamID: teamID}
		rows[teamID] = r
		return r
	}

	// headToHead[a][b] counts a's wins in direct meetings with b.
	headToHead := make(map[int]map[int]int)
	recordH2H := func(winner, loser int) {
		if headToHead[winner] == nil {
			headToHead[winner] = make(map[int]int)
		}
		headToHead[winner][loser]++
	}

	for _, res := range results {
		m := res.match
		out := res.outcome
		p1 := m.Participants[0]
		p2 := m.Participants[1]

		r1 := rowFor(p1.TeamID)
		r2 := rowFor(p2.TeamID)
		r1.Played++
		r2.Played++

		gf1, gf2 := goalsFor(m, out, rule.Goals)
		r1.GoalsFor += gf1
		r1.GoalsAgainst += gf2
		r2.GoalsFor += gf2
		r2.GoalsAgainst += gf1

		// Best-of outcomes never draw, and a draw-capable format would not
		// have a winner here, so only win/loss accrues.
		if *out.WinnerParticipantID == p1.ID {
			r1.Wins++
			r1.Points += rule.Win
			r2.Losses++
			r2.Points += rule.Loss
			recordH2H(p1.TeamID, p2.TeamID)
		} else {
			r2.Wins++
			r2.Points += rule.Win
			r1.Losses++
			r1.Points += rule.Loss
			recordH2H(p2.TeamID, p1.TeamID)
		}
	}

	ranked := make([]TableRow, 0, len(rows))
	for _, r := range rows {
		ranked = append(ranked, *r)
	}
	for i := range ranked {
		ranked[i].GoalDifference = ranked[i].GoalsFor - ranked[i].GoalsAgainst
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.TeamID < b.TeamID
	})

	// sharesPosition[i] is true when row i is tied with row i-1 even after
	// every break including head-to-head.
	sharesPosition := make([]bool, len(ranked))

	// Walk runs of rows equal on (points, gd, gf). A run of exactly two may
	// still be broken by their direct meetings.
	for start := 0; start < len(ranked); {
		end := start + 1
		for end < len(ranked) && tiedOnMetrics(ranked[start], ranked[end]) {
			end++
		}
		if end-start == 2 {
			a, b := ranked[start], ranked[start+1]
			aWins := headToHead[a.TeamID][b.TeamID]
			bWins := headToHead[b.TeamID][a.TeamID]
			if bWins > aWins {
				ranked[start], ranked[start+1] = b, a
			}
			if aWins == bWins {
				sharesPosition[start+1] = true
			}
		} else if end-start > 2 {
			for i := start + 1; i < end; i++ {
				sharesPosition[i] = true
			}
		}
		start = end
	}

	for i := range ranked {
		if i > 0 && sharesPosition[i] {
			ranked[i].Position = ranked[i-1].Position
		} else {
			ranked[i].Position = i + 1
		}
	}
	return ranked
}

func tiedOnMetrics(a, b TableRow) bool {
	return a.Points == b.Points && a.GoalDifference == b.GoalDifference && a.GoalsFor == b.GoalsFor
}

// goalsFor returns the goal contribution of one match for participant 1 and
// participant 2, per the configured accounting.
func goalsFor(m *models.Match, out *Outcome, mode GoalAccounting) (int, int) {
	p1 := m.Participants[0]
	p2 := m.Participants[1]

	if mode == GoalsFromPoints {
		var t1, t2 int
		for _, g := range m.Games {
			s1, ok1 := g.ScoreFor(p1.ID)
			s2, ok2 := g.ScoreFor(p2.ID)
			if !ok1 || !ok2 {
				continue
			}
			t1 += s1
			t2 += s2
		}
		return t1, t2
	}
	return out.GameWins[p1.ID], out.GameWins[p2.ID]
}
