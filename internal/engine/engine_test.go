package engine

import (
	"math/rand"
	"testing"

	"github.com/nlhe3p/blueprint-solver/internal/nlhe"
	"github.com/nlhe3p/blueprint-solver/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func totalChips(s *State) float64 {
	sum := s.Pot
	for _, v := range s.Stacks {
		sum += v
	}
	return sum
}

func TestDealPostsBlindsAndSetsFirstActor(t *testing.T) {
	s := Deal(rand.New(rand.NewSource(1)), TieFirstSeatWins)

	assert.Equal(t, [nlhe.NumPlayers]float64{20, 19.5, 19}, s.Stacks)
	assert.InDelta(t, 1.5, s.Pot, 1e-9)
	assert.Equal(t, 0, s.CurrentPlayer)
	assert.Equal(t, 2, s.LastRaiser)
	assert.InDelta(t, 1.0, s.LastRaiseAmount, 1e-9)

	legal := s.LegalActions()
	assert.Contains(t, legal, nlhe.ActionFold)
	assert.Contains(t, legal, nlhe.ActionCall)
	foundRaise := false
	for _, a := range legal {
		if a >= 2 && a <= 8 {
			foundRaise = true
		}
	}
	assert.True(t, foundRaise, "expected at least one preflop raise size to be legal")
}

func TestPreflopAllFoldToBigBlind(t *testing.T) {
	s := Deal(rand.New(rand.NewSource(2)), TieFirstSeatWins)

	require.Equal(t, 0, s.CurrentPlayer)
	s.Apply(nlhe.ActionFold)
	require.Equal(t, 1, s.CurrentPlayer)
	s.Apply(nlhe.ActionFold)

	require.True(t, s.IsTerminal())
	payoffs := s.Payoffs()
	assert.InDelta(t, 0.0, payoffs[0], 1e-9)
	assert.InDelta(t, -0.5, payoffs[1], 1e-9)
	assert.InDelta(t, 0.5, payoffs[2], 1e-9)

	var sum float64
	for _, p := range payoffs {
		sum += p
	}
	assert.InDelta(t, 0.0, sum, 1e-9)
}

func TestApplyUndoIsExactInverse(t *testing.T) {
	s := Deal(rand.New(rand.NewSource(3)), TieFirstSeatWins)

	before := *s
	beforeHistory := append([]int(nil), s.History...)
	beforeBoard := append([]poker.Card(nil), s.Board...)

	s.Apply(nlhe.ActionCall)
	s.Undo()

	assert.Equal(t, before.Stacks, s.Stacks)
	assert.Equal(t, before.Bets, s.Bets)
	assert.Equal(t, before.Active, s.Active)
	assert.Equal(t, before.AllIn, s.AllIn)
	assert.InDelta(t, before.Pot, s.Pot, 1e-9)
	assert.Equal(t, before.CurrentPlayer, s.CurrentPlayer)
	assert.Equal(t, before.LastRaiser, s.LastRaiser)
	assert.InDelta(t, before.LastRaiseAmount, s.LastRaiseAmount, 1e-9)
	assert.Equal(t, beforeHistory, s.History)
	assert.Equal(t, beforeBoard, s.Board)
}

func TestSampleChanceUndoRestoresBetsAndRound(t *testing.T) {
	s := Deal(rand.New(rand.NewSource(4)), TieFirstSeatWins)
	s.Apply(nlhe.ActionCall)
	s.Apply(nlhe.ActionCall)
	s.Apply(nlhe.ActionCall) // everyone limps to the big blind, round closes
	require.True(t, s.IsChanceNode())

	beforeRound := s.Round
	beforeBets := s.Bets
	beforeLastRaiser := s.LastRaiser
	beforeBoardLen := len(s.Board)

	s.SampleChance()
	assert.Equal(t, beforeRound+1, s.Round)
	assert.Len(t, s.Board, beforeBoardLen+3)

	s.Undo()
	assert.Equal(t, beforeRound, s.Round)
	assert.Equal(t, beforeBets, s.Bets)
	assert.Equal(t, beforeLastRaiser, s.LastRaiser)
	assert.Len(t, s.Board, beforeBoardLen)
	assert.True(t, s.IsChanceNode())
}

// TestSidePotResolutionAwardsBestHandPerLayer grounds the "three-way
// all-in" scenario: unequal contributions at showdown split into layers,
// each awarded independently to the best eligible hand.
func TestSidePotResolutionAwardsBestHandPerLayer(t *testing.T) {
	s := Deal(rand.New(rand.NewSource(5)), TieFirstSeatWins)

	s.Hole[0] = [2]poker.Card{poker.NewCard(uint8(poker.Two), uint8(poker.Clubs)), poker.NewCard(uint8(poker.Three), uint8(poker.Diamonds))}
	s.Hole[1] = [2]poker.Card{poker.NewCard(uint8(poker.Four), uint8(poker.Clubs)), poker.NewCard(uint8(poker.Five), uint8(poker.Diamonds))}
	s.Hole[2] = [2]poker.Card{poker.NewCard(uint8(poker.Ace), uint8(poker.Spades)), poker.NewCard(uint8(poker.Ace), uint8(poker.Diamonds))}
	s.Board = []poker.Card{
		poker.NewCard(uint8(poker.Two), uint8(poker.Hearts)),
		poker.NewCard(uint8(poker.Six), uint8(poker.Diamonds)),
		poker.NewCard(uint8(poker.Nine), uint8(poker.Spades)),
		poker.NewCard(uint8(poker.King), uint8(poker.Clubs)),
		poker.NewCard(uint8(poker.Jack), uint8(poker.Hearts)),
	}

	// P0 is short and all-in for 5 total; P1 and P2 go deeper to 20 each.
	s.Active = [nlhe.NumPlayers]bool{true, true, true}
	s.AllIn = [nlhe.NumPlayers]bool{true, true, true}
	s.Stacks = [nlhe.NumPlayers]float64{15, 0, 0} // contributions 5, 20, 20
	s.Pot = 5 + 20 + 20

	s.resolveHand()

	assert.True(t, s.Done)
	assert.InDelta(t, 60.0, totalChips(s), 1e-9)
	// P2 holds pocket aces: best hand at both the 5-level (shared by all
	// three) and the 20-level (shared by P1 and P2), so P2 takes the entire
	// 45-chip pot; P0 keeps the 15 they never put in.
	assert.InDelta(t, 45.0, s.Stacks[2], 1e-9)
	assert.InDelta(t, 0.0, s.Stacks[1], 1e-9)
	assert.InDelta(t, 15.0, s.Stacks[0], 1e-9)
}

func TestRandomPlayoutConservesChipsAndZeroSums(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		s := Deal(rng, TieFirstSeatWins)
		steps := 0
		for !s.IsTerminal() && steps < 200 {
			steps++
			if s.IsChanceNode() {
				s.SampleChance()
				continue
			}
			legal := s.LegalActions()
			require.NotEmpty(t, legal)
			action := legal[rng.Intn(len(legal))]
			s.Apply(action)
			assert.InDelta(t, 60.0, totalChips(s), 1e-6)
		}
		require.True(t, s.IsTerminal(), "playout did not terminate within step budget")

		var sum float64
		for _, p := range s.Payoffs() {
			sum += p
		}
		assert.InDelta(t, 0.0, sum, 1e-6)
	}
}
