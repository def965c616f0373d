package solver

import (
	"math/rand"
)

// TraversalStats captures instrumentation metrics for a single traversal.
type TraversalStats struct {
	NodesVisited  int64
	TerminalNodes int64
	ChanceNodes   int64
	PrunedActions int64
	MaxDepth      int
}

// traversalContext carries the per-call dependencies a recursive Traverse
// needs: the ruleset, the shared regret table, the sampling RNG, and the
// running statistics for this one traversal.
type traversalContext struct {
	game      Game
	regrets   *RegretTable
	rng       *rand.Rand
	cfg       TrainingConfig
	iteration int
	stats     TraversalStats
}

// Traverse runs one external-sampling MCCFR pass from state for traverser,
// mutating state in place via Apply/Undo rather than cloning it. It returns
// traverser's expected value from state under the current strategy profile.
//
// At the traverser's own decision nodes every legal action is explored
// (external sampling); at every other seat's decision node and at chance
// nodes, exactly one outcome is sampled. Apply is always paired with a
// matching Undo before Traverse returns, preserving state for the caller.
func (c *traversalContext) Traverse(state any, traverser, depth int) float64 {
	c.stats.NodesVisited++
	if depth > c.stats.MaxDepth {
		c.stats.MaxDepth = depth
	}

	if c.game.IsTerminal(state) {
		c.stats.TerminalNodes++
		return c.game.Payoffs(state)[traverser]
	}

	if c.game.IsChanceNode(state) {
		c.stats.ChanceNodes++
		c.game.SampleChance(state)
		v := c.Traverse(state, traverser, depth+1)
		c.game.Undo(state)
		return v
	}

	player := c.game.CurrentPlayer(state)
	actions := c.game.LegalActions(state)
	key := c.game.InfoKey(state, player)
	entry := c.regrets.Get(key)
	strategy := entry.Strategy(actions)

	if player == traverser {
		return c.traverseOwn(state, traverser, depth, actions, entry, strategy)
	}
	return c.traverseOpponent(state, traverser, depth, actions, strategy)
}

func (c *traversalContext) traverseOwn(state any, traverser, depth int, actions []int, entry *RegretEntry, strategy []float64) float64 {
	values := make([]float64, len(actions))

	for i, a := range actions {
		if c.shouldPrune(entry, a) {
			c.stats.PrunedActions++
			continue
		}
		c.game.Apply(state, a)
		values[i] = c.Traverse(state, traverser, depth+1)
		c.game.Undo(state)
	}

	ev := 0.0
	for i := range actions {
		ev += strategy[i] * values[i]
	}

	regret := make([]float64, len(actions))
	for i := range actions {
		regret[i] = values[i] - ev
	}
	weight := 1
	if c.cfg.LinearCFR {
		weight = c.iteration
	}
	entry.Update(actions, regret, strategy, RegretUpdateOptions{Iteration: weight})
	return ev
}

func (c *traversalContext) traverseOpponent(state any, traverser, depth int, actions []int, strategy []float64) float64 {
	idx := sampleIndex(c.rng, strategy)
	c.game.Apply(state, actions[idx])
	v := c.Traverse(state, traverser, depth+1)
	c.game.Undo(state)
	return v
}

// shouldPrune decides whether to skip exploring action a this traversal:
// only once warmed up, only below the (negative) regret threshold, and even
// then only with probability PruneSkipProb. A pruned action still takes
// part in the regret update with value 0 (the update is never skipped,
// only the exploration that would produce a nonzero value).
func (c *traversalContext) shouldPrune(entry *RegretEntry, a int) bool {
	if !c.cfg.pruningEnabled() || c.iteration <= c.cfg.PruneWarmUp {
		return false
	}
	entry.mutex.Lock()
	regret := entry.RegretSum[a]
	entry.mutex.Unlock()
	if regret >= c.cfg.PruneThreshold {
		return false
	}
	return c.rng.Float64() < c.cfg.PruneSkipProb
}

// sampleIndex draws an index from a categorical distribution. weights need
// not be normalised; the last index absorbs any leftover mass left over
// from floating point error.
func sampleIndex(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	cum := 0.0
	for i, w := range weights {
		cum += w
		if r < cum {
			return i
		}
	}
	return len(weights) - 1
}
