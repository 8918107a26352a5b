package models

import "time"

// Season is one competitive year, e.g. "2026/27". Exactly one season is
// expected to be current at any instant; overlaps are resolved at query time.
type Season struct {
	ID      int       `json:"id" db:"id"`
	Name    string    `json:"name" db:"name"`
	StartAt time.Time `json:"start_at" db:"start_at"`
	EndAt   time.Time `json:"end_at" db:"end_at"`
}

// IsCurrentAt reports whether the instant falls within the season's range,
// bounds inclusive.
func (s *Season) IsCurrentAt(at time.Time) bool {
	return !at.Before(s.StartAt) && !at.After(s.EndAt)
}
