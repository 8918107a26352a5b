package schedule

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/courtside/league-engine/models"
)

// Direction is the temporal direction of a page fetch.
type Direction string

const (
	DirectionFuture Direction = "future"
	DirectionPast   Direction = "past"
)

func (d Direction) Valid() bool {
	return d == DirectionFuture || d == DirectionPast
}

var ErrInvalidDirection = errors.New("direction must be future or past")

// Filters narrows the schedule feed. Nil fields match everything.
type Filters struct {
	SeasonID   *int
	SportID    *int
	CategoryID *int
	StageID    *int
	Status     *models.MatchStatus
	From       *time.Time
	To         *time.Time
	Search     string
}

// PageRequest describes one storage fetch. A nil cursor starts at the
// earliest row for future, at the latest for past.
type PageRequest struct {
	Direction Direction
	Limit     int
	Filters   Filters
	Cursor    *Cursor
}

// Page is one fetched slice of the schedule, sorted ascending by
// (scheduled_at, id) regardless of fetch direction. HasMore reports whether
// rows remain beyond this page in the request direction.
type Page struct {
	Matches []*models.Match
	HasMore bool
}

// PageFetcher is the storage boundary of the feed. A retried fetch with the
// same cursor must return the same or a superset-safe result; callers own
// retry and backoff.
type PageFetcher interface {
	FetchPage(ctx context.Context, req PageRequest) (*Page, error)
}

// DayGroup is one calendar date's worth of matches, keyed YYYY-MM-DD in the
// feed's reference timezone.
type DayGroup struct {
	Date    string
	Matches []*models.Match
}

// Feed merges pages fetched in either temporal direction into one
// continuously ordered sequence with no gaps and no duplicate match ids.
// At most one fetch may be outstanding per direction; results arriving
// after Close are discarded rather than applied to a stale view.
type Feed struct {
	fetcher PageFetcher
	limit   int
	filters Filters
	loc     *time.Location
	anchor  *Cursor

	mu      sync.Mutex
	entries map[int]*models.Match
	order   []int
	// Per-direction seek boundaries, advanced only by that direction's own
	// successful fetches. Deriving them from the merged sequence instead
	// would let one direction's result shift the other direction's boundary
	// off the anchor, making the loaded set depend on fetch interleaving.
	nextCursor   *Cursor
	prevCursor   *Cursor
	hasNext      bool
	hasPrev      bool
	fetchingNext bool
	fetchingPrev bool
	closed       bool
}

// NewFeed builds an empty feed anchored at the given cursor. A nil anchor
// anchors at the beginning of time, so there is nothing to page backwards
// into until a past boundary appears.
func NewFeed(fetcher PageFetcher, limit int, filters Filters, anchor *Cursor, loc *time.Location) *Feed {
	if loc == nil {
		loc = time.UTC
	}
	return &Feed{
		fetcher:    fetcher,
		limit:      limit,
		filters:    filters,
		loc:        loc,
		anchor:     anchor,
		entries:    make(map[int]*models.Match),
		nextCursor: anchor,
		prevCursor: anchor,
		hasNext:    true,
		hasPrev:    anchor != nil,
	}
}

// Load performs the initial fill: the future page always, plus the past page
// concurrently when the feed is anchored mid-stream. Both directions seek
// from their own boundary, so the fetches may complete in any interleaving
// and still load the same rows.
func (f *Feed) Load(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return f.fetch(gctx, DirectionFuture) })

	f.mu.Lock()
	anchored := f.anchor != nil
	f.mu.Unlock()
	if anchored {
		g.Go(func() error { return f.fetch(gctx, DirectionPast) })
	}
	return g.Wait()
}

// FetchNextPage extends the feed forward in time from the last loaded item.
// It is an idempotent no-op while a forward fetch is in flight or once the
// forward boundary is exhausted.
func (f *Feed) FetchNextPage(ctx context.Context) error {
	return f.fetch(ctx, DirectionFuture)
}

// FetchPreviousPage extends the feed backward in time from the first loaded
// item, with the same in-flight and boundary guards as FetchNextPage.
func (f *Feed) FetchPreviousPage(ctx context.Context) error {
	return f.fetch(ctx, DirectionPast)
}

func (f *Feed) fetch(ctx context.Context, dir Direction) error {
	f.mu.Lock()
	if f.closed || !f.shouldFetchLocked(dir) {
		f.mu.Unlock()
		return nil
	}
	f.setFetchingLocked(dir, true)
	cursor := f.boundaryCursorLocked(dir)
	req := PageRequest{Direction: dir, Limit: f.limit, Filters: f.filters, Cursor: cursor}
	f.mu.Unlock()

	page, err := f.fetcher.FetchPage(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.setFetchingLocked(dir, false)
	if f.closed {
		// Consumer torn down mid-fetch: discard, never apply to a stale view.
		return nil
	}
	if err != nil {
		return err
	}
	if dir == DirectionFuture {
		f.hasNext = page.HasMore
	} else {
		f.hasPrev = page.HasMore
	}
	f.advanceCursorLocked(dir, page.Matches)
	f.mergeLocked(page.Matches)
	return nil
}

// advanceCursorLocked moves the direction's seek boundary to the far edge of
// a successfully fetched page: the newest row for future, the oldest for
// past. An empty page leaves the boundary where it was.
func (f *Feed) advanceCursorLocked(dir Direction, matches []*models.Match) {
	if dir == DirectionFuture {
		for i := len(matches) - 1; i >= 0; i-- {
			if m := matches[i]; m.ScheduledAt != nil {
				f.nextCursor = &Cursor{ScheduledAt: *m.ScheduledAt, MatchID: m.ID}
				return
			}
		}
		return
	}
	for _, m := range matches {
		if m.ScheduledAt != nil {
			f.prevCursor = &Cursor{ScheduledAt: *m.ScheduledAt, MatchID: m.ID}
			return
		}
	}
}

func (f *Feed) shouldFetchLocked(dir Direction) bool {
	if dir == DirectionFuture {
		return !f.fetchingNext && f.hasNext
	}
	return !f.fetchingPrev && f.hasPrev
}

func (f *Feed) setFetchingLocked(dir Direction, v bool) {
	if dir == DirectionFuture {
		f.fetchingNext = v
	} else {
		f.fetchingPrev = v
	}
}

// boundaryCursorLocked returns the direction's current seek key: the anchor
// until that direction has fetched, then the edge of its own last page.
func (f *Feed) boundaryCursorLocked(dir Direction) *Cursor {
	if dir == DirectionFuture {
		return f.nextCursor
	}
	return f.prevCursor
}

func (f *Feed) mergeLocked(matches []*models.Match) {
	added := false
	for _, m := range matches {
		if m.ScheduledAt == nil {
			// Cannot be ordered; excluded from the feed entirely.
			continue
		}
		if _, dup := f.entries[m.ID]; dup {
			continue
		}
		f.entries[m.ID] = m
		f.order = append(f.order, m.ID)
		added = true
	}
	if !added {
		return
	}
	sort.Slice(f.order, func(i, j int) bool {
		a := f.entries[f.order[i]]
		b := f.entries[f.order[j]]
		if a.ScheduledAt.Equal(*b.ScheduledAt) {
			return a.ID < b.ID
		}
		return a.ScheduledAt.Before(*b.ScheduledAt)
	})
}

func (f *Feed) HasNextPage() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasNext
}

func (f *Feed) HasPreviousPage() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasPrev
}

// Matches returns the merged sequence in ascending scheduled order.
func (f *Feed) Matches() []*models.Match {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Match, len(f.order))
	for i, id := range f.order {
		out[i] = f.entries[id]
	}
	return out
}

// DayGroups regroups the merged sequence by calendar date in the feed's
// reference timezone. Date keys come out in ascending chronological order
// regardless of the order pages were fetched in.
func (f *Feed) DayGroups() []DayGroup {
	return GroupByDay(f.Matches(), f.loc)
}

// GroupByDay splits an ascending match sequence into calendar-date groups
// (YYYY-MM-DD in the given timezone). Matches without a scheduled time are
// skipped; they cannot be ordered, so they never appear in the feed.
func GroupByDay(matches []*models.Match, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.UTC
	}
	groups := make([]DayGroup, 0)
	for _, m := range matches {
		if m.ScheduledAt == nil {
			continue
		}
		date := m.ScheduledAt.In(loc).Format("2006-01-02")
		if n := len(groups); n > 0 && groups[n-1].Date == date {
			groups[n-1].Matches = append(groups[n-1].Matches, m)
			continue
		}
		groups = append(groups, DayGroup{Date: date, Matches: []*models.Match{m}})
	}
	return groups
}

// Close tears the feed down. Fetches already in flight have their results
// discarded when they arrive.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}
