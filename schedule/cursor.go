// Package schedule produces the time-ordered, bidirectionally paginated,
// date-grouped view of matches consumed by the reactive schedule UI.
package schedule

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidCursor = errors.New("malformed schedule cursor")

// Cursor marks a pagination boundary: the (scheduled_at, match id) seek key
// of the row at the edge of a page. It travels opaque, as a base64 token.
type Cursor struct {
	ScheduledAt time.Time `json:"t"`
	MatchID     int       `json:"id"`
}

func (c Cursor) Encode() string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

func DecodeCursor(token string) (*Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if c.ScheduledAt.IsZero() || c.MatchID <= 0 {
		return nil, fmt.Errorf("%w: missing seek key", ErrInvalidCursor)
	}
	return &c, nil
}
