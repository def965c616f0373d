// Package kuhn implements three-player Kuhn poker as a second, independent
// realization of the same Game interface the NLHE engine implements. Every
// derived field (whose turn it is, whether the hand is over, who is owed
// what) is a pure function of the card deal and the action history, so
// unlike the NLHE engine it needs no undo-record bookkeeping: Undo is
// simply truncating the history by one entry.
package kuhn

import (
	"math/rand"

	"github.com/nlhe3p/blueprint-solver/internal/infoset"
)

const NumPlayers = 3

// Action indices: Pass covers both check and fold depending on context,
// Bet covers both opening bet and call.
const (
	Pass = 0
	Bet  = 1
)

// State is one hand of three-player Kuhn poker: a 3-card deal from the
// 4-card deck {J,Q,K,A} (ranks 0..3) and the action history so far.
type State struct {
	Cards   [NumPlayers]int
	History []int
}

// Deal deals three of the four Kuhn cards, one to each player.
func Deal(rng *rand.Rand) *State {
	deck := []int{0, 1, 2, 3}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	var s State
	copy(s.Cards[:], deck[:NumPlayers])
	return &s
}

// betIndex returns the position of the first Bet in history, or -1.
func betIndex(history []int) int {
	for i, a := range history {
		if a == Bet {
			return i
		}
	}
	return -1
}

// CurrentPlayer returns the seat to act next, or -1 once the hand is over.
func (s *State) CurrentPlayer() int {
	if s.IsTerminal() {
		return -1
	}
	n := len(s.History)
	bi := betIndex(s.History)
	if bi < 0 {
		return n % NumPlayers
	}
	// bi doubles as the bettor's seat: a bet can only occur on a player's
	// first action, and first actions proceed strictly in seat order.
	bettor := bi
	actionsAfterBet := n - bi - 1
	return (bettor + 1 + actionsAfterBet) % NumPlayers
}

// LegalActions is always {Pass, Bet} at a live decision node.
func (s *State) LegalActions() []int {
	if s.IsTerminal() {
		return nil
	}
	return []int{Pass, Bet}
}

// IsTerminal reports whether every player has either folded, called, or
// the hand reached a three-way showdown with no bet at all.
func (s *State) IsTerminal() bool {
	h := s.History
	n := len(h)
	if n == 0 {
		return false
	}
	if n == NumPlayers && betIndex(h) < 0 {
		return true
	}
	bi := betIndex(h)
	if bi >= 0 && n-bi-1 >= NumPlayers-1 {
		return true
	}
	return false
}

// Payoffs returns each player's net chips at a terminal state: -1 for
// everyone who only anted, -2 for a caller who lost, and the full pot
// (minus their own contribution) for the winner.
func (s *State) Payoffs() []float64 {
	h := s.History
	payoffs := make([]float64, NumPlayers)

	bi := betIndex(h)
	if bi < 0 {
		winner := 0
		for p := 1; p < NumPlayers; p++ {
			if s.Cards[p] > s.Cards[winner] {
				winner = p
			}
		}
		for p := range payoffs {
			payoffs[p] = -1
		}
		payoffs[winner] = 2
		return payoffs
	}

	bettor := bi
	contribution := [NumPlayers]float64{1, 1, 1}
	contribution[bettor] = 2
	callers := []int{bettor}
	for i, a := range h[bi+1:] {
		player := (bettor + 1 + i) % NumPlayers
		if a == Bet {
			contribution[player] = 2
			callers = append(callers, player)
		}
	}

	totalPot := 0.0
	for _, c := range contribution {
		totalPot += c
	}
	winner := callers[0]
	for _, p := range callers[1:] {
		if s.Cards[p] > s.Cards[winner] {
			winner = p
		}
	}

	for p := range payoffs {
		payoffs[p] = -contribution[p]
	}
	payoffs[winner] += totalPot
	return payoffs
}

// Apply appends action to the history.
func (s *State) Apply(action int) {
	s.History = append(s.History, action)
}

// Undo removes the last action from the history.
func (s *State) Undo() {
	if len(s.History) == 0 {
		return
	}
	s.History = s.History[:len(s.History)-1]
}

// IsChanceNode is always false: the only chance event is the initial deal.
func (s *State) IsChanceNode() bool { return false }

// SampleChance is a no-op; Kuhn has no mid-hand chance nodes.
func (s *State) SampleChance() {}

// InfoKey encodes the information set for player: their own card plus the
// public action history.
func (s *State) InfoKey(player int) infoset.Key {
	return infoset.Encode(s.Cards[player], s.History)
}

// Game adapts State's methods to the trainer's ruleset-agnostic interface.
type Game struct{}

func (Game) NumPlayers() int { return NumPlayers }

func (Game) Deal(rng *rand.Rand) any { return kuhnDeal(rng) }

func kuhnDeal(rng *rand.Rand) *State { return Deal(rng) }

func (Game) CurrentPlayer(state any) int { return state.(*State).CurrentPlayer() }

func (Game) LegalActions(state any) []int { return state.(*State).LegalActions() }

func (Game) InfoKey(state any, player int) infoset.Key { return state.(*State).InfoKey(player) }

func (Game) IsTerminal(state any) bool { return state.(*State).IsTerminal() }

func (Game) Payoffs(state any) []float64 { return state.(*State).Payoffs() }

func (Game) Apply(state any, action int) { state.(*State).Apply(action) }

func (Game) Undo(state any) { state.(*State).Undo() }

func (Game) IsChanceNode(state any) bool { return state.(*State).IsChanceNode() }

func (Game) SampleChance(state any) { state.(*State).SampleChance() }
