package models

// Sport represents a sport discipline, the top-level taxonomy node.
type Sport struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// SportCategory splits a sport by division and level
// (e.g. men/women, college/high-school).
type SportCategory struct {
	ID       int    `json:"id" db:"id"`
	SportID  int    `json:"sport_id" db:"sport_id"`
	Division string `json:"division" db:"division"`
	Levels   string `json:"levels" db:"levels"`

	// Optional linked entity, populated by the service layer.
	Sport *Sport `json:"sport,omitempty" db:"-"`
}
