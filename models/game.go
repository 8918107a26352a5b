package models

import "time"

// Game is one game within a match, numbered 1..best_of.
type Game struct {
	ID         int        `json:"id" db:"id"`
	MatchID    int        `json:"match_id" db:"match_id"`
	GameNumber int        `json:"game_number" db:"game_number"`
	StartAt    *time.Time `json:"start_at,omitempty" db:"start_at"`
	EndAt      *time.Time `json:"end_at,omitempty" db:"end_at"`

	Scores []GameScore `json:"scores,omitempty" db:"-"`
}

// GameScore is one row per (game, participant) pair. Score is validated as
// non-negative at write time, before it ever reaches aggregation.
type GameScore struct {
	ID            int `json:"id" db:"id"`
	GameID        int `json:"game_id" db:"game_id"`
	ParticipantID int `json:"participant_id" db:"participant_id"`
	Score         int `json:"score" db:"score"`
}

// ScoreFor returns the recorded score for the given participant, if any.
func (g *Game) ScoreFor(participantID int) (int, bool) {
	for _, s := range g.Scores {
		if s.ParticipantID == participantID {
			return s.Score, true
		}
	}
	return 0, false
}
