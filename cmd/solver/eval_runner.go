package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nlhe3p/blueprint-solver/internal/abstraction"
	"github.com/nlhe3p/blueprint-solver/internal/engine"
	"github.com/nlhe3p/blueprint-solver/internal/nlhe"
	"github.com/nlhe3p/blueprint-solver/sdk/solver/runtime"
)

// evalStats accumulates basic self-play statistics for one seat across a
// batch of simulated hands. It stands in for the networked mbb/g harness
// that live bot-versus-bot evaluation would otherwise require.
type evalStats struct {
	Hands    int
	NetBB    float64
	VPIP     int // hands in which the seat voluntarily put chips in preflop (called or raised)
}

func (cmd *EvalCmd) Run() error {
	policy, err := runtime.Load(cmd.Blueprint)
	if err != nil {
		return fmt.Errorf("load blueprint: %w", err)
	}

	seed := cmd.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	abs := policy.Blueprint().Abstraction
	oracle, err := abstraction.NewOracle(abs.BucketDir, seed)
	if err != nil {
		return fmt.Errorf("load abstraction oracle: %w", err)
	}
	game := engine.NewNLHEGame(oracle, abs.TiePolicy)

	stats := make([]evalStats, nlhe.NumPlayers)

	for h := 0; h < cmd.Hands; h++ {
		state := game.Deal(rng)
		playHand(game, policy, state, rng, stats)
	}

	for seat := 0; seat < nlhe.NumPlayers; seat++ {
		s := stats[seat]
		bbPer100 := 0.0
		if s.Hands > 0 {
			bbPer100 = (s.NetBB / float64(s.Hands)) * 100
		}
		log.Info().Int("seat", seat).Int("hands", s.Hands).
			Float64("net_bb", s.NetBB).Float64("bb_per_100", bbPer100).
			Int("vpip", s.VPIP).
			Msg("self-play result")
	}
	return nil
}

func playHand(game *engine.NLHEGame, policy *runtime.Policy, state any, rng *rand.Rand, stats []evalStats) {
	voluntary := make([]bool, len(stats))
	for !game.IsTerminal(state) {
		if game.IsChanceNode(state) {
			game.SampleChance(state)
			continue
		}
		player := game.CurrentPlayer(state)
		actions := game.LegalActions(state)
		key := game.InfoKey(state, player)
		weights, err := policy.ActionWeights(key, len(actions))
		if err != nil {
			weights = uniformWeights(len(actions))
		}
		action := actions[sampleWeighted(rng, weights)]
		if s := state.(*engine.State); s.Round == nlhe.RoundPreflop && action != nlhe.ActionFold {
			for _, b := range s.Bets {
				if action != nlhe.ActionCall || b > s.Bets[player] {
					voluntary[player] = true
				}
			}
		}
		game.Apply(state, action)
	}

	payoffs := game.Payoffs(state)
	for seat, net := range payoffs {
		stats[seat].Hands++
		stats[seat].NetBB += net
		if voluntary[seat] {
			stats[seat].VPIP++
		}
	}
}

func uniformWeights(n int) []float64 {
	out := make([]float64, n)
	v := 1.0 / float64(n)
	for i := range out {
		out[i] = v
	}
	return out
}

func sampleWeighted(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return rng.Intn(len(weights))
	}
	target := rng.Float64() * total
	cum := 0.0
	for i, w := range weights {
		cum += w
		if target < cum {
			return i
		}
	}
	return len(weights) - 1
}
