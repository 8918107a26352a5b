package services

import "errors"

// Shared error taxonomy for the service layer and its HTTP mapping.
var (
	// Lookup failures
	ErrStageNotFound   = errors.New("competition stage not found")
	ErrSeasonNotFound  = errors.New("season not found")
	ErrNoCurrentSeason = errors.New("no season is current right now")

	// Stage-kind dispatch
	ErrWrongStageKind = errors.New("operation does not apply to this stage kind")

	// Schedule feed validation
	ErrInvalidDirection = errors.New("direction must be future or past")
	ErrInvalidLimit     = errors.New("limit must be between 1 and 100")
	ErrInvalidCursor    = errors.New("malformed schedule cursor")
)
