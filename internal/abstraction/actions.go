// Package abstraction implements the pure, stateless pieces of the card and
// action abstraction consulted by the engine and the trainer: which of the
// ten abstract actions are legal at a decision node, what chip total each
// one commits the actor to, and which coarse bucket a hand belongs to.
package abstraction

import "github.com/nlhe3p/blueprint-solver/internal/nlhe"

// ActorState is the narrow view of engine state the action abstraction
// needs. The engine builds one from its own State before calling into this
// package, keeping the abstraction free of any dependency on the engine's
// internal representation.
type ActorState struct {
	Round            int
	Seat             int
	Bets             [nlhe.NumPlayers]float64
	Stacks           [nlhe.NumPlayers]float64
	Pot              float64
	LastRaiseAmount  float64
	RaiseOccurredYet bool
}

func maxBet(bets [nlhe.NumPlayers]float64) float64 {
	m := bets[0]
	for _, b := range bets[1:] {
		if b > m {
			m = b
		}
	}
	return m
}

// MinRaiseTotal is the smallest street-total a legal raise may reach.
func MinRaiseTotal(s ActorState) float64 {
	if !s.RaiseOccurredYet {
		return 0
	}
	return maxBet(s.Bets) + s.LastRaiseAmount
}

// LegalActions returns the sorted abstract action indices available to the
// actor described by s. Returns nil if the actor has no chips behind (the
// engine should never ask; an all-in or inactive seat has no decision).
func LegalActions(s ActorState) []int {
	toCall := maxBet(s.Bets) - s.Bets[s.Seat]
	stack := s.Stacks[s.Seat]
	if stack <= 0 {
		return nil
	}

	actions := make([]int, 0, nlhe.NumActions)

	if toCall > 1e-9 {
		actions = append(actions, nlhe.ActionFold)
		if stack >= toCall-1e-9 {
			actions = append(actions, nlhe.ActionCall)
		}
	} else {
		actions = append(actions, nlhe.ActionCall) // check
	}

	minRaise := MinRaiseTotal(s)
	seen := map[float64]bool{s.Bets[s.Seat] + toCall: true} // call/check total already represented
	allInTotal := s.Bets[s.Seat] + stack

	for i := 0; i < 7; i++ {
		total := raiseTotal(s, i)
		if total < minRaise-1e-9 {
			continue
		}
		if total > allInTotal+1e-9 {
			continue
		}
		if seen[total] {
			continue
		}
		seen[total] = true
		actions = append(actions, 2+i)
	}

	if !seen[allInTotal] && allInTotal > s.Bets[s.Seat]+1e-9 {
		actions = append(actions, nlhe.ActionAllIn)
		seen[allInTotal] = true
	}

	// A player fully covered by the call still needs Fold handled above; if
	// stack can't even cover the call, Call was excluded and All-In is the
	// only way to continue other than folding.
	if toCall > 1e-9 && stack < toCall-1e-9 {
		if !seen[allInTotal] {
			actions = append(actions, nlhe.ActionAllIn)
			seen[allInTotal] = true
		}
	}

	return actions
}

// raiseTotal computes the street-total for raw raise size index i (0..6),
// before stack-capping. Preflop sizes are absolute BB totals; postflop
// sizes are to_call plus a pot-fraction multiplier of the pot after the
// actor calls — matching the original trainer's sizing formula exactly,
// including its quirk of not adding the actor's already-committed bet
// back in (harmless in practice: a player facing a sizing decision has
// bets[seat]==0 on its street except after a multi-way reraise, which the
// original treats the same way).
func raiseTotal(s ActorState, i int) float64 {
	if s.Round == nlhe.RoundPreflop {
		return nlhe.PreflopRaiseBB[i]
	}
	toCall := maxBet(s.Bets) - s.Bets[s.Seat]
	potForActing := s.Pot + toCall
	return toCall + nlhe.PostflopPotMult[i]*potForActing
}

// ChipsFor converts an abstract action index into the chip delta for the
// acting player. It returns whether the action is a fold, and the player's
// resulting street-total bet otherwise (truncated to the player's stack if
// the nominal size is unreachable, e.g. a stuck all-in).
func ChipsFor(index int, s ActorState) (isFold bool, newStreetTotal float64) {
	if index == nlhe.ActionFold {
		return true, s.Bets[s.Seat]
	}
	allInTotal := s.Bets[s.Seat] + s.Stacks[s.Seat]
	if index == nlhe.ActionCall {
		total := maxBet(s.Bets)
		if total > allInTotal {
			total = allInTotal
		}
		return false, total
	}
	if index == nlhe.ActionAllIn {
		return false, allInTotal
	}
	total := raiseTotal(s, index-2)
	if total > allInTotal {
		total = allInTotal
	}
	return false, total
}
