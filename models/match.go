package models

import "time"

type MatchStatus string

const (
	StatusScheduled  MatchStatus = "scheduled"
	StatusInProgress MatchStatus = "in_progress"
	StatusCompleted  MatchStatus = "completed"
	StatusCancelled  MatchStatus = "cancelled"
	StatusPostponed  MatchStatus = "postponed"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled, StatusPostponed:
		return true
	}
	return false
}

// Administrative reports whether the status was set by an administrator and
// must never be overridden by outcome resolution.
func (s MatchStatus) Administrative() bool {
	return s == StatusCancelled || s == StatusPostponed
}

// Match is a single fixture inside a competition stage. Round and Position
// are only set for bracket stages (playoffs/finals), GroupKey only for group
// stages with parallel groups.
type Match struct {
	ID          int         `json:"id" db:"id"`
	StageID     int         `json:"stage_id" db:"stage_id"`
	Name        string      `json:"name" db:"name"`
	Venue       *string     `json:"venue,omitempty" db:"venue"`
	ScheduledAt *time.Time  `json:"scheduled_at,omitempty" db:"scheduled_at"`
	StartAt     *time.Time  `json:"start_at,omitempty" db:"start_at"`
	EndAt       *time.Time  `json:"end_at,omitempty" db:"end_at"`
	BestOf      int         `json:"best_of" db:"best_of"`
	Status      MatchStatus `json:"status" db:"status"`
	Round       *int        `json:"round,omitempty" db:"round"`
	Position    *int        `json:"position,omitempty" db:"position"`
	GroupKey    *string     `json:"group_key,omitempty" db:"group_key"`

	// Optional linked entities, populated by the repository.
	Participants []MatchParticipant `json:"participants,omitempty" db:"-"`
	Games        []Game             `json:"games,omitempty" db:"-"`
}

// MatchParticipant is a school/team entry in a match. MatchScore is the
// optional cumulative score used for display and tie-breaks; it is not
// authoritative for winner determination in multi-game formats.
type MatchParticipant struct {
	ID         int  `json:"id" db:"id"`
	MatchID    int  `json:"match_id" db:"match_id"`
	TeamID     int  `json:"team_id" db:"team_id"`
	MatchScore *int `json:"match_score,omitempty" db:"match_score"`
}

// ParticipantByTeam returns the participant entry for the given team, or nil.
func (m *Match) ParticipantByTeam(teamID int) *MatchParticipant {
	for i := range m.Participants {
		if m.Participants[i].TeamID == teamID {
			return &m.Participants[i]
		}
	}
	return nil
}
