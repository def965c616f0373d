package engine

import (
	"fmt"

	"github.com/nlhe3p/blueprint-solver/internal/abstraction"
	"github.com/nlhe3p/blueprint-solver/internal/nlhe"
)

// Apply mutates the state by the given abstract action index for the
// current player. It panics if called at a non-decision node or with an
// action the current player does not hold: both indicate a trainer bug,
// never a reachable game condition.
func (s *State) Apply(action int) {
	if s.Done || s.ChancePending {
		panic("engine: apply called at a non-decision node")
	}
	p := s.CurrentPlayer
	if !contains(s.LegalActions(), action) {
		panic(fmt.Sprintf("engine: action %d illegal for seat %d", action, p))
	}

	s.undoStack = append(s.undoStack, undoRecord{before: s.snapshot(), boardLen: len(s.Board)})
	s.History = append(s.History, action)

	isFold, newTotal := abstraction.ChipsFor(action, s.actorView(p))
	if isFold {
		s.Active[p] = false
	} else {
		prevMax := maxBetExcluding(s.Bets, p)
		add := newTotal - s.Bets[p]
		if add < -1e-9 {
			panic("engine: chip delta went negative")
		}
		if add > s.Stacks[p]+1e-9 {
			panic("engine: stack underflow")
		}
		s.Stacks[p] -= add
		s.Pot += add
		s.Bets[p] = newTotal
		if add > 0 && newTotal > prevMax+1e-9 {
			s.LastRaiser = p
			s.LastRaiseAmount = newTotal - prevMax
		}
		if s.Stacks[p] <= 1e-9 {
			s.Stacks[p] = 0
			s.AllIn[p] = true
		}
	}

	if activeCount(s.Active) == 1 {
		s.resolveHand()
		return
	}
	s.advanceToNextPlayer()
}

func maxBetExcluding(bets [nlhe.NumPlayers]float64, seat int) float64 {
	m := -1.0
	for q, b := range bets {
		if q == seat {
			continue
		}
		if b > m {
			m = b
		}
	}
	return m
}

func activeCount(active [nlhe.NumPlayers]bool) int {
	n := 0
	for _, a := range active {
		if a {
			n++
		}
	}
	return n
}

func contains(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func (s *State) advanceToNextPlayer() {
	canAct := canActSeats(s.Active, s.AllIn)
	if len(canAct) <= 1 {
		s.runOutBoardAndResolve()
		return
	}
	if s.roundComplete(canAct) {
		if s.Round >= nlhe.RoundRiver {
			s.resolveHand()
			return
		}
		s.ChancePending = true
		s.CurrentPlayer = -1
		return
	}
	next := (s.CurrentPlayer + 1) % nlhe.NumPlayers
	for !s.Active[next] || s.AllIn[next] {
		next = (next + 1) % nlhe.NumPlayers
	}
	s.CurrentPlayer = next
}

func canActSeats(active, allIn [nlhe.NumPlayers]bool) []int {
	var out []int
	for p := 0; p < nlhe.NumPlayers; p++ {
		if active[p] && !allIn[p] {
			out = append(out, p)
		}
	}
	return out
}

// streetSuffix returns the action_history entries since the last DEAL
// sentinel (or the whole history preflop).
func (s *State) streetSuffix() []int {
	start := 0
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i] == nlhe.DealSentinel {
			start = i + 1
			break
		}
	}
	return s.History[start:]
}

// whoActedThisStreet walks the street suffix against the street's action
// order, returning the set of seats that have acted since the last deal.
func whoActedThisStreet(suffix []int, round int) map[int]bool {
	order := actionOrder(round)
	acted := make(map[int]bool, nlhe.NumPlayers)
	for i, a := range suffix {
		if a == nlhe.DealSentinel {
			break
		}
		acted[order[i%len(order)]] = true
	}
	return acted
}

// roundComplete mirrors the reference trainer's closure rule exactly,
// including its treatment of a raiser who has since gone all-in: such a
// raiser drops out of can_act, so condition (c) below no longer applies to
// them and the street can close as soon as the remaining actors' own bets
// agree with each other. Side-pot layering at showdown is what makes this
// correct even though it looks like it under-collects from the table.
func (s *State) roundComplete(canAct []int) bool {
	if len(canAct) == 0 {
		return true
	}
	suffix := s.streetSuffix()
	acted := whoActedThisStreet(suffix, s.Round)
	for _, p := range canAct {
		if !acted[p] {
			return false
		}
	}

	first := s.Bets[canAct[0]]
	for _, p := range canAct[1:] {
		if s.Bets[p] != first {
			return false
		}
	}

	raiserCanAct := false
	for _, p := range canAct {
		if p == s.LastRaiser {
			raiserCanAct = true
			break
		}
	}
	if s.LastRaiser < 0 || !raiserCanAct {
		return true
	}

	order := actionOrder(s.Round)
	raiseIdx := -1
	for i, a := range suffix {
		if a == nlhe.DealSentinel {
			break
		}
		player := order[i%len(order)]
		if a != nlhe.ActionFold && a != nlhe.ActionCall && player == s.LastRaiser {
			raiseIdx = i
		}
	}
	if raiseIdx < 0 {
		return true
	}
	for _, p := range canAct {
		if p == s.LastRaiser {
			continue
		}
		found := false
		for i, a := range suffix {
			if a == nlhe.DealSentinel {
				break
			}
			if i > raiseIdx && order[i%len(order)] == p {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
