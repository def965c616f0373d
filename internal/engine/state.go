// Package engine implements the mutable, undo-stack game tree for
// three-player twenty-big-blind No-Limit Hold'em: dealing, legal actions,
// chip movement, street advancement, and showdown resolution. A State is
// advanced in place by Apply/SampleChance and rewound in place by Undo,
// which the external-sampling trainer relies on to explore a subtree and
// back out of it without allocating a fresh state per node.
package engine

import (
	"math/rand"

	"github.com/nlhe3p/blueprint-solver/internal/abstraction"
	"github.com/nlhe3p/blueprint-solver/internal/nlhe"
	"github.com/nlhe3p/blueprint-solver/poker"
)

// TiePolicy selects how a showdown slice is split among equally ranked
// hands. TieFirstSeatWins matches the reference trainer; TieSplitEqually is
// offered as the fairer alternative for anyone training a blueprint who
// does not want the lowest seat to carry a structural edge on chops.
type TiePolicy int

const (
	TieFirstSeatWins TiePolicy = iota
	TieSplitEqually
)

// snapshot captures every field Apply or SampleChance can mutate, so Undo
// can restore it verbatim regardless of which operation pushed it.
type snapshot struct {
	bets            [nlhe.NumPlayers]float64
	stacks          [nlhe.NumPlayers]float64
	active          [nlhe.NumPlayers]bool
	allIn           [nlhe.NumPlayers]bool
	pot             float64
	currentPlayer   int
	lastRaiser      int
	lastRaiseAmount float64
	done            bool
	chancePending   bool
	round           int
	deckIdx         int
}

// undoRecord captures everything one Apply or SampleChance call needs to be
// reversed, including any community cards a downstream all-in runout dealt
// as a consequence of that single call — boardLen is the board length
// before the call touched it, so Undo can always truncate back to it
// regardless of how many cards the call ended up dealing.
type undoRecord struct {
	before   snapshot
	boardLen int
}

// State is one hand of play, from blinds posted to showdown.
type State struct {
	Deck    []poker.Card
	DeckIdx int

	Hole  [nlhe.NumPlayers][2]poker.Card
	Board []poker.Card

	Round int

	Stacks [nlhe.NumPlayers]float64
	Pot    float64
	Bets   [nlhe.NumPlayers]float64
	Active [nlhe.NumPlayers]bool
	AllIn  [nlhe.NumPlayers]bool

	CurrentPlayer int

	History []int

	LastRaiser      int
	LastRaiseAmount float64

	Done          bool
	ChancePending bool

	undoStack []undoRecord
	tiePolicy TiePolicy
}

func (s *State) snapshot() snapshot {
	return snapshot{
		bets:            s.Bets,
		stacks:          s.Stacks,
		active:          s.Active,
		allIn:           s.AllIn,
		pot:             s.Pot,
		currentPlayer:   s.CurrentPlayer,
		lastRaiser:      s.LastRaiser,
		lastRaiseAmount: s.LastRaiseAmount,
		done:            s.Done,
		chancePending:   s.ChancePending,
		round:           s.Round,
		deckIdx:         s.DeckIdx,
	}
}

func (s *State) restore(b snapshot) {
	s.Bets = b.bets
	s.Stacks = b.stacks
	s.Active = b.active
	s.AllIn = b.allIn
	s.Pot = b.pot
	s.CurrentPlayer = b.currentPlayer
	s.LastRaiser = b.lastRaiser
	s.LastRaiseAmount = b.lastRaiseAmount
	s.Done = b.done
	s.ChancePending = b.chancePending
	s.Round = b.round
	s.DeckIdx = b.deckIdx
}

// Deal starts a fresh hand: shuffles the deck, deals hole cards, posts the
// blinds, and sets the button (seat 0) to act first. Seat 1 is the small
// blind, seat 2 the big blind; the big blind's post counts as the
// preflop "raise" a first voluntary raise must exceed.
func Deal(rng *rand.Rand, policy TiePolicy) *State {
	s := &State{tiePolicy: policy}
	d := poker.NewDeck(rng)
	s.Deck = d.Deal(52)

	for p := 0; p < nlhe.NumPlayers; p++ {
		s.Hole[p] = [2]poker.Card{s.Deck[s.DeckIdx], s.Deck[s.DeckIdx+1]}
		s.DeckIdx += 2
	}

	for p := 0; p < nlhe.NumPlayers; p++ {
		s.Stacks[p] = nlhe.StartingStack
		s.Active[p] = true
	}
	s.Stacks[1] -= nlhe.SmallBlind
	s.Bets[1] = nlhe.SmallBlind
	s.Stacks[2] -= nlhe.BigBlind
	s.Bets[2] = nlhe.BigBlind
	s.Pot = nlhe.SmallBlind + nlhe.BigBlind

	s.CurrentPlayer = 0
	s.LastRaiser = 2
	s.LastRaiseAmount = nlhe.BigBlind
	return s
}

// actorView builds the narrow state abstraction.LegalActions needs.
func (s *State) actorView(seat int) abstraction.ActorState {
	return abstraction.ActorState{
		Round:            s.Round,
		Seat:             seat,
		Bets:             s.Bets,
		Stacks:           s.Stacks,
		Pot:              s.Pot,
		LastRaiseAmount:  s.LastRaiseAmount,
		RaiseOccurredYet: s.LastRaiser >= 0,
	}
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

// actionOrder returns the three seats in the order they act on a street.
// Preflop, the button (seat 0) acts first since it is also the "UTG" seat
// in three-handed play; every later street starts left of the button.
func actionOrder(round int) [nlhe.NumPlayers]int {
	if round == nlhe.RoundPreflop {
		return [nlhe.NumPlayers]int{0, 1, 2}
	}
	return [nlhe.NumPlayers]int{1, 2, 0}
}
