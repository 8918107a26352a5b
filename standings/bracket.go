package standings

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dominikbraun/graph"

	"github.com/courtside/league-engine/models"
)

var (
	ErrMissingBracketSlot   = errors.New("bracket match is missing its round or position")
	ErrDuplicateBracketSlot = errors.New("two bracket matches share the same round and position")
)

// Slot identifies one node of an elimination tree.
type Slot struct {
	Round    int `json:"round"`
	Position int `json:"position"`
}

func (s Slot) key() int {
	return s.Round<<16 | s.Position
}

// feeders returns the two slots whose winners this slot receives, using
// standard single-elimination indexing: round r slot p is fed by round r-1
// slots 2p-1 and 2p.
func (s Slot) feeders() (Slot, Slot) {
	return Slot{Round: s.Round - 1, Position: 2*s.Position - 1},
		Slot{Round: s.Round - 1, Position: 2 * s.Position}
}

// advancesTo returns the successor slot of this one.
func (s Slot) advancesTo() Slot {
	return Slot{Round: s.Round + 1, Position: (s.Position + 1) / 2}
}

// BracketNode is the read view of one match slot in an elimination tree.
// Team sides stay nil until both feeder matches are completed; the builder
// never guesses advancement.
type BracketNode struct {
	Slot
	MatchID      int                `json:"match_id"`
	Name         string             `json:"name"`
	Team1ID      *int               `json:"team1_id"`
	Team2ID      *int               `json:"team2_id"`
	WinnerTeamID *int               `json:"winner_team_id"`
	Status       models.MatchStatus `json:"match_status"`
	ScheduledAt  *time.Time         `json:"scheduled_at,omitempty"`
	Venue        *string            `json:"venue,omitempty"`
	AdvancesTo   *Slot              `json:"advances_to,omitempty"`
}

// BuildBracket assembles a playoffs/finals stage's matches into the
// elimination tree keyed by (round, position). It only assembles the read
// view; moving teams between rounds is an administrative action upstream.
// Matches whose outcome cannot be resolved are flagged and treated as
// undecided feeders. The finals stage is simply a bracket of one match.
func BuildBracket(matches []*models.Match) ([]BracketNode, []UnresolvedMatch, error) {
	type slotState struct {
		match   *models.Match
		outcome *Outcome
	}

	slots := make(map[Slot]*slotState, len(matches))
	var unresolved []UnresolvedMatch

	for _, m := range matches {
		if m.Round == nil || m.Position == nil {
			return nil, nil, fmt.Errorf("%w: match %d", ErrMissingBracketSlot, m.ID)
		}
		slot := Slot{Round: *m.Round, Position: *m.Position}
		if _, exists := slots[slot]; exists {
			return nil, nil, fmt.Errorf("%w: round %d position %d", ErrDuplicateBracketSlot, slot.Round, slot.Position)
		}
		state := &slotState{match: m}
		if out, err := ResolveOutcome(m); err != nil {
			// A pending slot whose participants have not been advanced yet is
			// empty, not bad data; anything else gets flagged.
			if m.Status == models.StatusCompleted || !errors.Is(err, ErrTwoParticipants) {
				unresolved = append(unresolved, UnresolvedMatch{MatchID: m.ID, Reason: err.Error()})
			}
		} else {
			state.outcome = out
		}
		slots[slot] = state
	}

	// The advances-to linkage is held explicitly in a directed graph rather
	// than recomputed from slot arithmetic at every lookup. Only edges whose
	// successor slot actually exists are added, which keeps non-power-of-two
	// brackets from pointing at phantom slots.
	g := graph.New(func(s Slot) int { return s.key() }, graph.Directed())
	for slot := range slots {
		_ = g.AddVertex(slot)
	}
	for slot := range slots {
		next := slot.advancesTo()
		if _, ok := slots[next]; ok {
			_ = g.AddEdge(slot.key(), next.key())
		}
	}
	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return nil, nil, fmt.Errorf("bracket linkage: %w", err)
	}

	decidedWinner := func(slot Slot) *int {
		state, ok := slots[slot]
		if !ok || state.outcome == nil {
			return nil
		}
		if state.outcome.Status != models.StatusCompleted {
			return nil
		}
		return state.outcome.WinnerTeamID
	}

	nodes := make([]BracketNode, 0, len(slots))
	for slot, state := range slots {
		m := state.match
		node := BracketNode{
			Slot:        slot,
			MatchID:     m.ID,
			Name:        m.Name,
			Status:      m.Status,
			ScheduledAt: m.ScheduledAt,
			Venue:       m.Venue,
		}
		if state.outcome != nil {
			node.Status = state.outcome.Status
			node.WinnerTeamID = state.outcome.WinnerTeamID
		}

		for successorKey := range adjacency[slot.key()] {
			next := Slot{Round: successorKey >> 16, Position: successorKey & 0xFFFF}
			node.AdvancesTo = &next
		}

		if slot.Round == 1 {
			// Initial matchups carry their declared participants.
			if len(m.Participants) > 0 {
				node.Team1ID = &m.Participants[0].TeamID
			}
			if len(m.Participants) > 1 {
				node.Team2ID = &m.Participants[1].TeamID
			}
		} else {
			f1, f2 := slot.feeders()
			w1 := decidedWinner(f1)
			w2 := decidedWinner(f2)
			// Both feeders must be completed before either side shows.
			if w1 != nil && w2 != nil {
				node.Team1ID = w1
				node.Team2ID = w2
			}
		}
		nodes = append(nodes, node)
	}

	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Round != nodes[j].Round {
			return nodes[i].Round < nodes[j].Round
		}
		return nodes[i].Position < nodes[j].Position
	})
	return nodes, unresolved, nil
}
