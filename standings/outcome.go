// Package standings holds the pure computation side of the engine: best-of-N
// outcome resolution, group-stage tables, elimination brackets and play-in
// listings. Everything here operates on already-loaded, immutable match data
// and is safe to call concurrently.
package standings

import (
	"errors"
	"fmt"
	"sort"

	"github.com/courtside/league-engine/models"
)

var (
	ErrInvalidBestOf   = errors.New("best_of must be a positive odd number")
	ErrTwoParticipants = errors.New("outcome resolution requires exactly two participants")
	ErrTiedGame = errors.New("game has equal scores for both participants")
	// ErrIndeterminateOutcome is a defensive guard. Every decided game
	// credits exactly one participant, so with an odd best_of someone always
	// reaches the threshold before the game count does; this only fires if
	// that accounting is ever broken.
	ErrIndeterminateOutcome = errors.New("all games played without a participant reaching the win threshold")
	ErrIncompleteData = errors.New("match marked completed without enough scored games")
)

// Outcome is the resolver's verdict on a single match.
type Outcome struct {
	// WinnerParticipantID is nil while the match is undecided.
	WinnerParticipantID *int
	// WinnerTeamID mirrors the winner's team reference, nil while undecided.
	WinnerTeamID *int
	// Status is the derived status: completed once the win threshold is
	// reached, otherwise the explicit administrator-set status (promoted to
	// in_progress when at least one game has been decided).
	Status models.MatchStatus
	// GameWins counts decided games per participant id, up to and including
	// the deciding game. Games beyond the threshold are retained in the
	// record but ignored here.
	GameWins map[int]int
	// DecidedInGame is the game_number that reached the threshold, 0 while
	// undecided.
	DecidedInGame int
}

// WinsNeeded returns the game wins required to decide a best-of-N match.
func WinsNeeded(bestOf int) int {
	return bestOf/2 + 1
}

// ResolveOutcome derives a match's winner and status from its games and
// scores. It never overrides an administrator-set cancelled/postponed
// status. A tied game score is reported as a data error, never silently
// resolved.
func ResolveOutcome(match *models.Match) (*Outcome, error) {
	if match.BestOf <= 0 || match.BestOf%2 == 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBestOf, match.BestOf)
	}
	if len(match.Participants) != 2 {
		return nil, fmt.Errorf("%w: match %d has %d", ErrTwoParticipants, match.ID, len(match.Participants))
	}

	p1 := match.Participants[0]
	p2 := match.Participants[1]

	if match.Status.Administrative() {
		return &Outcome{Status: match.Status, GameWins: map[int]int{p1.ID: 0, p2.ID: 0}}, nil
	}

	games := make([]models.Game, len(match.Games))
	copy(games, match.Games)
	sort.Slice(games, func(i, j int) bool {
		return games[i].GameNumber < games[j].GameNumber
	})

	needed := WinsNeeded(match.BestOf)
	wins := map[int]int{p1.ID: 0, p2.ID: 0}
	decidedGames := 0

	out := &Outcome{GameWins: wins}

	for _, g := range games {
		if g.GameNumber > match.BestOf {
			// Beyond the format bound; kept for record, never counted.
			continue
		}
		s1, ok1 := g.ScoreFor(p1.ID)
		s2, ok2 := g.ScoreFor(p2.ID)
		if !ok1 || !ok2 {
			continue
		}
		if s1 == s2 {
			return nil, fmt.Errorf("%w: match %d game %d (%d:%d)", ErrTiedGame, match.ID, g.GameNumber, s1, s2)
		}
		decidedGames++
		if s1 > s2 {
			wins[p1.ID]++
		} else {
			wins[p2.ID]++
		}
		if wins[p1.ID] == needed {
			out.setWinner(p1, g.GameNumber)
			return out, nil
		}
		if wins[p2.ID] == needed {
			out.setWinner(p2, g.GameNumber)
			return out, nil
		}
	}

	// No participant reached the threshold.
	if match.Status == models.StatusCompleted {
		if decidedGames >= match.BestOf {
			return nil, fmt.Errorf("%w: match %d, best_of %d", ErrIndeterminateOutcome, match.ID, match.BestOf)
		}
		return nil, fmt.Errorf("%w: match %d has %d decided games, needs %d wins", ErrIncompleteData, match.ID, decidedGames, needed)
	}

	if decidedGames > 0 {
		out.Status = models.StatusInProgress
	} else {
		out.Status = match.Status
	}
	return out, nil
}

func (o *Outcome) setWinner(p models.MatchParticipant, gameNumber int) {
	winnerPID := p.ID
	winnerTeam := p.TeamID
	o.WinnerParticipantID = &winnerPID
	o.WinnerTeamID = &winnerTeam
	o.Status = models.StatusCompleted
	o.DecidedInGame = gameNumber
}
