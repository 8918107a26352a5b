package standings

import (
	"sort"
	"time"

	"github.com/courtside/league-engine/models"
)

// PlayinMatch is one entry in the flat play-in listing. Play-ins carry no
// point table and no forward linkage, just the stage's matches in
// chronological order.
type PlayinMatch struct {
	MatchID      int                `json:"match_id"`
	Name         string             `json:"name"`
	Venue        *string            `json:"venue,omitempty"`
	ScheduledAt  *time.Time         `json:"scheduled_at,omitempty"`
	StartAt      *time.Time         `json:"start_at,omitempty"`
	EndAt        *time.Time         `json:"end_at,omitempty"`
	Status       models.MatchStatus `json:"status"`
	Team1ID      *int               `json:"team1_id"`
	Team2ID      *int               `json:"team2_id"`
	Team1Score   *int               `json:"team1_score,omitempty"`
	Team2Score   *int               `json:"team2_score,omitempty"`
	Team1Wins    int                `json:"team1_game_wins"`
	Team2Wins    int                `json:"team2_game_wins"`
	WinnerTeamID *int               `json:"winner_team_id"`
}

// ListPlayins flattens a play-in stage into chronological entries. Matches
// the resolver cannot decide keep their explicit status and a nil winner,
// and are flagged separately.
func ListPlayins(matches []*models.Match) ([]PlayinMatch, []UnresolvedMatch) {
	entries := make([]PlayinMatch, 0, len(matches))
	var unresolved []UnresolvedMatch

	for _, m := range matches {
		entry := PlayinMatch{
			MatchID:     m.ID,
			Name:        m.Name,
			Venue:       m.Venue,
			ScheduledAt: m.ScheduledAt,
			StartAt:     m.StartAt,
			EndAt:       m.EndAt,
			Status:      m.Status,
		}
		if len(m.Participants) > 0 {
			p := m.Participants[0]
			entry.Team1ID = &p.TeamID
			entry.Team1Score = p.MatchScore
		}
		if len(m.Participants) > 1 {
			p := m.Participants[1]
			entry.Team2ID = &p.TeamID
			entry.Team2Score = p.MatchScore
		}

		if out, err := ResolveOutcome(m); err != nil {
			unresolved = append(unresolved, UnresolvedMatch{MatchID: m.ID, Reason: err.Error()})
		} else {
			entry.Status = out.Status
			entry.WinnerTeamID = out.WinnerTeamID
			if len(m.Participants) == 2 {
				entry.Team1Wins = out.GameWins[m.Participants[0].ID]
				entry.Team2Wins = out.GameWins[m.Participants[1].ID]
			}
		}
		entries = append(entries, entry)
	}

	// Stage-defined sequence: scheduled time first, unscheduled last, id as
	// the stable fallback.
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.ScheduledAt == nil && b.ScheduledAt == nil:
			return a.MatchID < b.MatchID
		case a.ScheduledAt == nil:
			return false
		case b.ScheduledAt == nil:
			return true
		case a.ScheduledAt.Equal(*b.ScheduledAt):
			return a.MatchID < b.MatchID
		default:
			return a.ScheduledAt.Before(*b.ScheduledAt)
		}
	})
	return entries, unresolved
}
