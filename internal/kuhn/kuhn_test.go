package kuhn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThreeWayPassShowdown(t *testing.T) {
	s := &State{Cards: [NumPlayers]int{2, 0, 1}}
	s.Apply(Pass)
	s.Apply(Pass)
	s.Apply(Pass)

	assert.True(t, s.IsTerminal())
	assert.Equal(t, []float64{2, -1, -1}, s.Payoffs())
}

func TestOpenBetFoldsThrough(t *testing.T) {
	s := &State{Cards: [NumPlayers]int{1, 2, 3}}
	s.Apply(Bet)
	s.Apply(Pass)
	s.Apply(Pass)

	assert.True(t, s.IsTerminal())
	assert.Equal(t, []float64{2, -1, -1}, s.Payoffs())
}

func TestBetCallFoldSplitsPotByContribution(t *testing.T) {
	s := &State{Cards: [NumPlayers]int{0, 3, 2}}
	s.Apply(Pass) // P0 checks
	s.Apply(Bet)  // P1 bets
	s.Apply(Bet)  // P2 calls
	s.Apply(Pass) // P0 folds

	assert.True(t, s.IsTerminal())
	assert.Equal(t, []float64{-1, 3, -2}, s.Payoffs())
}

func TestCurrentPlayerFollowsSeatOrderThenBetResponders(t *testing.T) {
	s := &State{Cards: [NumPlayers]int{0, 3, 2}}
	assert.Equal(t, 0, s.CurrentPlayer())
	s.Apply(Pass)
	assert.Equal(t, 1, s.CurrentPlayer())
	s.Apply(Bet)
	assert.Equal(t, 2, s.CurrentPlayer())
	s.Apply(Bet)
	assert.Equal(t, 0, s.CurrentPlayer())
	s.Apply(Pass)
	assert.Equal(t, -1, s.CurrentPlayer())
}

func TestUndoIsExactInverseOfApply(t *testing.T) {
	s := &State{Cards: [NumPlayers]int{3, 1, 2}}
	s.Apply(Pass)
	s.Apply(Bet)
	before := append([]int(nil), s.History...)
	s.Apply(Bet)
	s.Undo()
	assert.Equal(t, before, s.History)
}

func TestPayoffsAreZeroSum(t *testing.T) {
	deals := [][NumPlayers]int{{0, 1, 2}, {3, 0, 1}, {2, 3, 0}}
	histories := [][]int{
		{Pass, Pass, Pass},
		{Bet, Bet, Bet},
		{Pass, Bet, Pass, Bet},
	}
	for i, h := range histories {
		s := &State{Cards: deals[i]}
		for _, a := range h {
			s.Apply(a)
		}
		var sum float64
		for _, p := range s.Payoffs() {
			sum += p
		}
		assert.InDelta(t, 0.0, sum, 1e-9)
	}
}
