package solver

import (
	"math/rand"

	"github.com/nlhe3p/blueprint-solver/internal/infoset"
)

// Game abstracts a ruleset so Traverse can drive either the full NLHE engine
// or the Kuhn reference engine through identical traversal code. State is an
// opaque, mutable handle owned by the caller; Apply and Undo must be exact
// inverses since a traversal shares one state across its entire recursion.
type Game interface {
	NumPlayers() int
	Deal(rng *rand.Rand) any
	CurrentPlayer(state any) int
	LegalActions(state any) []int
	InfoKey(state any, player int) infoset.Key
	IsTerminal(state any) bool
	Payoffs(state any) []float64
	Apply(state any, action int)
	Undo(state any)
	IsChanceNode(state any) bool
	SampleChance(state any)
}
