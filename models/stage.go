package models

// StageKind represents competition stage kinds, matching the ENUM in the DB.
type StageKind string

const (
	StageGroup    StageKind = "group_stage"
	StagePlayins  StageKind = "playins"
	StagePlayoffs StageKind = "playoffs"
	StageFinals   StageKind = "finals"
)

// stageOrder fixes the precedence of stage kinds when several stages of one
// category run concurrently: group_stage < playins < playoffs < finals.
var stageOrder = map[StageKind]int{
	StageGroup:    1,
	StagePlayins:  2,
	StagePlayoffs: 3,
	StageFinals:   4,
}

func (k StageKind) Order() int {
	return stageOrder[k]
}

func (k StageKind) Valid() bool {
	_, ok := stageOrder[k]
	return ok
}

// IsBracket reports whether the kind is rendered as an elimination tree.
func (k StageKind) IsBracket() bool {
	return k == StagePlayoffs || k == StageFinals
}

// CompetitionStage is one phase of a competition, scoped to a season and a
// sport category.
type CompetitionStage struct {
	ID         int       `json:"id" db:"id"`
	CategoryID int       `json:"sport_category_id" db:"sport_category_id"`
	SeasonID   int       `json:"season_id" db:"season_id"`
	Kind       StageKind `json:"competition_stage" db:"competition_stage"`

	// Optional linked entities, populated by the service layer.
	Category *SportCategory `json:"category,omitempty" db:"-"`
	Season   *Season        `json:"season,omitempty" db:"-"`
}
