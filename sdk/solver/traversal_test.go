package solver

import (
	"math/rand"
	"testing"

	"github.com/nlhe3p/blueprint-solver/internal/kuhn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraverseKuhnVisitsTerminalNodes(t *testing.T) {
	game := kuhn.Game{}
	regrets := NewRegretTable()
	cfg := TrainingConfig{LinearCFR: true}
	rng := rand.New(rand.NewSource(1))

	for iter := 1; iter <= 50; iter++ {
		for traverser := 0; traverser < game.NumPlayers(); traverser++ {
			state := game.Deal(rng)
			tc := &traversalContext{game: game, regrets: regrets, rng: rng, cfg: cfg, iteration: iter}
			tc.Traverse(state, traverser, 0)
			assert.Positive(t, tc.stats.TerminalNodes)
		}
	}
	assert.Positive(t, regrets.Size())
}

func TestTraverseApplyUndoLeavesStateUnchanged(t *testing.T) {
	game := kuhn.Game{}
	regrets := NewRegretTable()
	cfg := TrainingConfig{LinearCFR: true}
	rng := rand.New(rand.NewSource(2))

	state := game.Deal(rng)
	before := *state.(*kuhn.State)

	tc := &traversalContext{game: game, regrets: regrets, rng: rng, cfg: cfg, iteration: 1}
	tc.Traverse(state, 0, 0)

	assert.Equal(t, before.Cards, state.(*kuhn.State).Cards)
	assert.Empty(t, state.(*kuhn.State).History)
}

func TestTraverseRegretPruningSkipsLowRegretActions(t *testing.T) {
	game := kuhn.Game{}
	regrets := NewRegretTable()
	cfg := TrainingConfig{
		LinearCFR:      true,
		PruneThreshold: -1,
		PruneWarmUp:    0,
		PruneSkipProb:  1.0, // always skip once eligible, to make the effect deterministic
	}
	rng := rand.New(rand.NewSource(3))

	state := game.Deal(rng)
	key := game.InfoKey(state, game.CurrentPlayer(state))
	entry := regrets.Get(key)
	entry.RegretSum[kuhn.Bet] = -100

	tc := &traversalContext{game: game, regrets: regrets, rng: rng, cfg: cfg, iteration: cfg.PruneWarmUp + 1}
	tc.Traverse(state, game.CurrentPlayer(state), 0)

	assert.Positive(t, tc.stats.PrunedActions)
}

func TestTraverseFromEachSeatLeavesStateClean(t *testing.T) {
	game := kuhn.Game{}
	regrets := NewRegretTable()
	cfg := TrainingConfig{LinearCFR: true}
	rng := rand.New(rand.NewSource(4))

	state := game.Deal(rng)
	cards := state.(*kuhn.State).Cards
	for traverser := 0; traverser < 3; traverser++ {
		s := &kuhn.State{Cards: cards}
		tc := &traversalContext{game: game, regrets: regrets, rng: rng, cfg: cfg, iteration: 1}
		ev := tc.Traverse(s, traverser, 0)
		assert.InDelta(t, 0, ev, 2) // at iteration 1 this deal's seat values stay within 2 chips of zero
		require.Empty(t, s.History)
	}
}

func TestSampleIndexRespectsWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	counts := map[int]int{}
	for i := 0; i < 10000; i++ {
		counts[sampleIndex(rng, []float64{0.9, 0.1})]++
	}
	assert.Greater(t, counts[0], counts[1])
}
