package engine

import (
	"math/rand"

	"github.com/nlhe3p/blueprint-solver/internal/abstraction"
	"github.com/nlhe3p/blueprint-solver/internal/infoset"
	"github.com/nlhe3p/blueprint-solver/internal/nlhe"
)

// LegalActions returns the sorted abstract action indices available to the
// current player, or nil at a chance node or terminal state.
func (s *State) LegalActions() []int {
	if s.Done || s.ChancePending {
		return nil
	}
	return abstraction.LegalActions(s.actorView(s.CurrentPlayer))
}

// IsTerminal reports whether the hand is over.
func (s *State) IsTerminal() bool { return s.Done }

// Payoffs returns each player's net profit in big blinds. Valid only once
// IsTerminal is true.
func (s *State) Payoffs() []float64 {
	out := make([]float64, nlhe.NumPlayers)
	for p := 0; p < nlhe.NumPlayers; p++ {
		out[p] = s.Stacks[p] - nlhe.StartingStack
	}
	return out
}

// CurrentPlayerSeat returns the acting seat, or -1 at a chance or terminal
// node.
func (s *State) CurrentPlayerSeat() int {
	if s.Done || s.ChancePending {
		return -1
	}
	return s.CurrentPlayer
}

// InfoKey builds the information-set key for player from an oracle's
// bucket assignment plus the public action history.
func (s *State) InfoKey(oracle *abstraction.Oracle, player int) infoset.Key {
	bucket := oracle.Bucket(s.Hole[player], s.Board, s.Round)
	return infoset.Encode(bucket, s.History)
}

// NLHEGame adapts State's methods to the trainer's ruleset-agnostic Game
// interface (see sdk/solver). One Oracle is shared across every hand the
// game deals, since buckets tables are static, read-only data.
type NLHEGame struct {
	Oracle *abstraction.Oracle
	Policy TiePolicy
}

// NewNLHEGame builds a Game over three-player twenty-big-blind NLHE.
func NewNLHEGame(oracle *abstraction.Oracle, policy TiePolicy) *NLHEGame {
	return &NLHEGame{Oracle: oracle, Policy: policy}
}

func (g *NLHEGame) NumPlayers() int { return nlhe.NumPlayers }

func (g *NLHEGame) Deal(rng *rand.Rand) any { return Deal(rng, g.Policy) }

func (g *NLHEGame) CurrentPlayer(state any) int { return state.(*State).CurrentPlayerSeat() }

func (g *NLHEGame) LegalActions(state any) []int { return state.(*State).LegalActions() }

func (g *NLHEGame) InfoKey(state any, player int) infoset.Key {
	return state.(*State).InfoKey(g.Oracle, player)
}

func (g *NLHEGame) IsTerminal(state any) bool { return state.(*State).IsTerminal() }

func (g *NLHEGame) Payoffs(state any) []float64 { return state.(*State).Payoffs() }

func (g *NLHEGame) Apply(state any, action int) { state.(*State).Apply(action) }

func (g *NLHEGame) Undo(state any) { state.(*State).Undo() }

func (g *NLHEGame) IsChanceNode(state any) bool { return state.(*State).IsChanceNode() }

func (g *NLHEGame) SampleChance(state any) { state.(*State).SampleChance() }
