// Package nlhe holds the fixed constants of the three-player 20-big-blind
// No-Limit Hold'em abstraction: stack sizes, bucket counts, abstract action
// sizing, and the regret-pruning schedule. Every other package in this
// module (abstraction, engine, solver glue) imports these rather than
// redeclaring them.
package nlhe

// NumPlayers is fixed at three seats.
const NumPlayers = 3

// StartingStack, SmallBlind, and BigBlind are denominated in big blinds.
const (
	StartingStack = 20.0
	SmallBlind    = 0.5
	BigBlind      = 1.0
)

// NumActions is the size of the abstract action space: Fold, Check/Call,
// seven bet/raise sizes, and All-In.
const NumActions = 10

// Abstract action indices.
const (
	ActionFold = 0
	ActionCall = 1 // also Check when ToCall is zero
	// 2..8 are bet/raise sizes, see PreflopRaiseBB / PostflopPotMult.
	ActionAllIn = 9
)

// Round indices.
const (
	RoundPreflop = 0
	RoundFlop    = 1
	RoundTurn    = 2
	RoundRiver   = 3
)

// BucketCount returns the number of abstraction buckets for a betting round.
func BucketCount(round int) int {
	if round == RoundPreflop {
		return PreflopBuckets
	}
	return PostflopBuckets
}

const (
	PreflopBuckets  = 15
	PostflopBuckets = 50
)

// Regret pruning schedule (Linear CFR + pruning, see the MCCFR trainer).
const (
	PruneThreshold = -300.0
	PruneWarmUp    = 100
	PruneSkipProb  = 0.95
)

// PreflopRaiseBB gives the seven preflop raise sizes as absolute big-blind
// totals. PostflopPotMult gives the seven postflop raise sizes as
// multipliers of the pot after the acting player calls. Both slices have
// length 7 and back abstract action indices 2..8 in order.
var (
	PreflopRaiseBB  = [7]float64{2.0, 2.5, 3.0, 4.0, 5.0, 8.0, 12.0}
	PostflopPotMult = [7]float64{0.25, 0.33, 0.5, 0.66, 0.75, 1.0, 1.5}
)

// DealSentinel marks a community-card deal in an action history.
const DealSentinel = -1
