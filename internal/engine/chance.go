package engine

import "github.com/nlhe3p/blueprint-solver/internal/nlhe"

// IsChanceNode reports whether the next step is a forced community-card
// deal rather than a player decision.
func (s *State) IsChanceNode() bool {
	return s.ChancePending && !s.Done
}

// SampleChance deals the next street: three cards for the flop, one for
// the turn and river. It is a no-op if no chance obligation is pending.
func (s *State) SampleChance() {
	if !s.ChancePending || s.Done {
		return
	}
	n := 1
	if s.Round == nlhe.RoundPreflop {
		n = 3
	}

	before := s.snapshot()
	boardLen := len(s.Board)
	for i := 0; i < n; i++ {
		s.Board = append(s.Board, s.Deck[s.DeckIdx])
		s.DeckIdx++
	}
	s.History = append(s.History, nlhe.DealSentinel)
	s.Round++
	s.ChancePending = false
	s.Bets = [nlhe.NumPlayers]float64{}
	s.LastRaiser = -1
	s.LastRaiseAmount = 0
	s.undoStack = append(s.undoStack, undoRecord{before: before, boardLen: boardLen})

	for offset := 1; offset <= nlhe.NumPlayers; offset++ {
		p := offset % nlhe.NumPlayers
		if s.Active[p] && !s.AllIn[p] {
			s.CurrentPlayer = p
			return
		}
	}
	s.runOutBoardAndResolve()
}

func (s *State) runOutBoardAndResolve() {
	for len(s.Board) < 5 {
		n := 1
		if s.Round == nlhe.RoundPreflop {
			n = 3
		}
		for i := 0; i < n; i++ {
			s.Board = append(s.Board, s.Deck[s.DeckIdx])
			s.DeckIdx++
		}
		s.Round++
	}
	s.resolveHand()
}
