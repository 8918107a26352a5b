package standings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/league-engine/models"
)

func atSlot(m *models.Match, round, position int) *models.Match {
	m.Round = &round
	m.Position = &position
	return m
}

// scheduledMatch builds an unplayed fixture between two teams.
func scheduledMatch(id, teamA, teamB int) *models.Match {
	m := completedMatch(id, teamA, teamB, 0, 0)
	m.Status = models.StatusScheduled
	return m
}

func nodeAt(t *testing.T, nodes []BracketNode, round, position int) BracketNode {
	t.Helper()
	for _, n := range nodes {
		if n.Round == round && n.Position == position {
			return n
		}
	}
	t.Fatalf("no node at round %d position %d", round, position)
	return BracketNode{}
}

func TestBuildBracketFourTeams(t *testing.T) {
	matches := []*models.Match{
		atSlot(completedMatch(1, 10, 20, 2, 0), 1, 1),
		atSlot(completedMatch(2, 30, 40, 2, 1), 1, 2),
		atSlot(scheduledMatch(3, 0, 0), 2, 1),
	}
	matches[2].Participants = nil

	nodes, unresolved, err := BuildBracket(matches)
	require.NoError(t, err)
	require.Empty(t, unresolved)
	require.Len(t, nodes, 3)

	// Sorted by round, then position.
	assert.Equal(t, Slot{Round: 1, Position: 1}, nodes[0].Slot)
	assert.Equal(t, Slot{Round: 1, Position: 2}, nodes[1].Slot)
	assert.Equal(t, Slot{Round: 2, Position: 1}, nodes[2].Slot)

	semi1 := nodeAt(t, nodes, 1, 1)
	require.NotNil(t, semi1.AdvancesTo)
	assert.Equal(t, Slot{Round: 2, Position: 1}, *semi1.AdvancesTo)
	require.NotNil(t, semi1.WinnerTeamID)
	assert.Equal(t, 10, *semi1.WinnerTeamID)
	assert.Equal(t, 10, *semi1.Team1ID)
	assert.Equal(t, 20, *semi1.Team2ID)

	final := nodeAt(t, nodes, 2, 1)
	assert.Nil(t, final.AdvancesTo)
	// Both semifinals are decided, so the final shows its matchup.
	require.NotNil(t, final.Team1ID)
	require.NotNil(t, final.Team2ID)
	assert.Equal(t, 10, *final.Team1ID)
	assert.Equal(t, 30, *final.Team2ID)
	assert.Nil(t, final.WinnerTeamID)
}

func TestBuildBracketUndecidedFeederHidesSides(t *testing.T) {
	matches := []*models.Match{
		atSlot(completedMatch(1, 10, 20, 2, 0), 1, 1),
		atSlot(scheduledMatch(2, 30, 40), 1, 2),
		atSlot(scheduledMatch(3, 0, 0), 2, 1),
	}
	matches[2].Participants = nil

	nodes, unresolved, err := BuildBracket(matches)
	require.NoError(t, err)
	require.Empty(t, unresolved)

	final := nodeAt(t, nodes, 2, 1)
	assert.Nil(t, final.Team1ID)
	assert.Nil(t, final.Team2ID)
}

func TestBuildBracketUnresolvableFeederFlagged(t *testing.T) {
	bad := atSlot(completedMatch(1, 10, 20, 0, 0), 1, 1)
	bad.Games = []models.Game{{ID: 11, MatchID: 1, GameNumber: 1, Scores: []models.GameScore{
		{ParticipantID: 11, Score: 20}, {ParticipantID: 12, Score: 20}}}}

	matches := []*models.Match{
		bad,
		atSlot(completedMatch(2, 30, 40, 2, 0), 1, 2),
		atSlot(scheduledMatch(3, 0, 0), 2, 1),
	}
	matches[2].Participants = nil

	nodes, unresolved, err := BuildBracket(matches)
	require.NoError(t, err)
	require.Len(t, unresolved, 1)
	assert.Equal(t, 1, unresolved[0].MatchID)

	// An unresolvable feeder counts as undecided: the final stays blank.
	final := nodeAt(t, nodes, 2, 1)
	assert.Nil(t, final.Team1ID)
	assert.Nil(t, final.Team2ID)
}

func TestBuildBracketFinalsSingleMatch(t *testing.T) {
	nodes, unresolved, err := BuildBracket([]*models.Match{
		atSlot(completedMatch(1, 10, 20, 2, 1), 1, 1),
	})
	require.NoError(t, err)
	require.Empty(t, unresolved)
	require.Len(t, nodes, 1)

	n := nodes[0]
	assert.Nil(t, n.AdvancesTo)
	assert.Equal(t, 10, *n.Team1ID)
	assert.Equal(t, 20, *n.Team2ID)
	assert.Equal(t, 10, *n.WinnerTeamID)
	assert.Equal(t, models.StatusCompleted, n.Status)
}

func TestBuildBracketMissingSlot(t *testing.T) {
	m := completedMatch(1, 10, 20, 2, 0)
	_, _, err := BuildBracket([]*models.Match{m})
	assert.ErrorIs(t, err, ErrMissingBracketSlot)
}

func TestBuildBracketDuplicateSlot(t *testing.T) {
	_, _, err := BuildBracket([]*models.Match{
		atSlot(completedMatch(1, 10, 20, 2, 0), 1, 1),
		atSlot(completedMatch(2, 30, 40, 2, 0), 1, 1),
	})
	assert.ErrorIs(t, err, ErrDuplicateBracketSlot)
}
