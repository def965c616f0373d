package engine

import (
	"sort"

	"github.com/nlhe3p/blueprint-solver/internal/nlhe"
	"github.com/nlhe3p/blueprint-solver/poker"
)

// resolveHand ends the current hand: a lone survivor takes the pot
// outright, otherwise side pots are resolved layer by layer at showdown.
func (s *State) resolveHand() {
	s.Done = true

	var survivor, survivors int
	for p := 0; p < nlhe.NumPlayers; p++ {
		if s.Active[p] {
			survivor = p
			survivors++
		}
	}
	if survivors == 1 {
		s.Stacks[survivor] += s.Pot
		s.Pot = 0
		return
	}

	var contribution [nlhe.NumPlayers]float64
	for p := 0; p < nlhe.NumPlayers; p++ {
		contribution[p] = nlhe.StartingStack - s.Stacks[p]
	}
	s.resolveSidePots(contribution)
	s.Pot = 0
}

// resolveSidePots distributes the pot layer by layer, one layer per
// distinct positive contribution level. A layer's size is the amount each
// contributor above that level put in at that level, times the number of
// players who reached it; it is awarded to the best hand among the
// still-active players who reached it.
func (s *State) resolveSidePots(contribution [nlhe.NumPlayers]float64) {
	levelSet := map[float64]bool{}
	for p := 0; p < nlhe.NumPlayers; p++ {
		if contribution[p] > 0 {
			levelSet[contribution[p]] = true
		}
	}
	levels := make([]float64, 0, len(levelSet))
	for l := range levelSet {
		levels = append(levels, l)
	}
	sort.Float64s(levels)

	prev := 0.0
	for _, level := range levels {
		eligibleCount := 0
		for p := 0; p < nlhe.NumPlayers; p++ {
			if contribution[p] >= level-1e-9 {
				eligibleCount++
			}
		}
		size := (level - prev) * float64(eligibleCount)
		prev = level
		if size <= 1e-9 {
			continue
		}

		winners := s.layerWinners(contribution, level)
		if len(winners) == 0 {
			continue
		}
		s.awardLayer(size, winners)
	}
}

func (s *State) layerWinners(contribution [nlhe.NumPlayers]float64, level float64) []int {
	type scored struct {
		seat int
		rank poker.HandRank
	}
	var candidates []scored
	for p := 0; p < nlhe.NumPlayers; p++ {
		if !s.Active[p] || contribution[p] < level-1e-9 {
			continue
		}
		hand := poker.NewHand(s.Hole[p][0], s.Hole[p][1])
		for _, c := range s.Board {
			hand.AddCard(c)
		}
		candidates = append(candidates, scored{p, poker.Evaluate7Cards(hand)})
	}
	if len(candidates) == 0 {
		return nil
	}
	best := candidates[0].rank
	for _, c := range candidates[1:] {
		if c.rank > best {
			best = c.rank
		}
	}
	var winners []int
	for _, c := range candidates {
		if c.rank == best {
			winners = append(winners, c.seat)
		}
	}
	return winners
}

func (s *State) awardLayer(size float64, winners []int) {
	if len(winners) == 1 || s.tiePolicy == TieFirstSeatWins {
		sort.Ints(winners)
		s.Stacks[winners[0]] += size
		return
	}
	share := size / float64(len(winners))
	for _, w := range winners {
		s.Stacks[w] += share
	}
}
