package abstraction

import (
	"math/rand"

	"github.com/nlhe3p/blueprint-solver/internal/nlhe"
	"github.com/nlhe3p/blueprint-solver/poker"
)

// BucketSource records which regime produced a bucket assignment, so a
// trained blueprint can be stamped with the oracle it was trained under
// (loaded tables and the deterministic fallback are not interchangeable).
type BucketSource int

const (
	SourceFallback BucketSource = iota
	SourceLoadedTables
)

func (s BucketSource) String() string {
	if s == SourceLoadedTables {
		return "loaded-tables"
	}
	return "fallback"
}

// Oracle is the pure (hole, board, round) -> bucket lookup. It is
// deterministic given a fixed seed in both regimes: with tables loaded, the
// preflop table and the per-round cluster centers are static data; without
// them, the fallback formulas are closed-form.
type Oracle struct {
	preflop  *preflopTable // nil => fallback
	clusters [3][]float64  // flop/turn/river cluster centers, nil entries => fallback for that round
	source   BucketSource
	rng      *rand.Rand // used only for the equity rollout under loaded tables
}

// NewFallbackOracle returns an oracle that never consults loaded tables.
// This is always available and never fails to construct.
func NewFallbackOracle() *Oracle {
	return &Oracle{source: SourceFallback, rng: rand.New(rand.NewSource(1))}
}

// NewOracle attempts to load the four bucket-table artifacts from dir. A
// missing or malformed directory is not fatal: the returned oracle falls
// back to the deterministic formulas and reports SourceFallback, per this
// module's error-handling policy for bucket-table load failure.
func NewOracle(dir string, seed int64) (*Oracle, error) {
	o := &Oracle{source: SourceFallback, rng: rand.New(rand.NewSource(seed))}
	if dir == "" {
		return o, nil
	}

	pf, err := loadPreflopTable(dir)
	if err != nil {
		return o, nil // fallback; caller logs the warning
	}
	var clusters [3][]float64
	ok := true
	for i, name := range []string{"flop.json", "turn.json", "river.json"} {
		centers, err := loadClusterCenters(dir, name)
		if err != nil {
			ok = false
			break
		}
		clusters[i] = centers
	}
	if !ok {
		return o, nil
	}

	o.preflop = pf
	o.clusters = clusters
	o.source = SourceLoadedTables
	return o, nil
}

// Source reports which regime is active.
func (o *Oracle) Source() BucketSource { return o.source }

// Bucket maps a hole pair plus board into a bucket index for round.
func (o *Oracle) Bucket(hole [2]poker.Card, board []poker.Card, round int) int {
	if round == nlhe.RoundPreflop {
		return o.preflopBucket(hole)
	}
	return o.postflopBucket(hole, board, round)
}

func (o *Oracle) preflopBucket(hole [2]poker.Card) int {
	if o.source == SourceLoadedTables {
		return o.preflop.Lookup(canonicalHoleIndex(hole))
	}
	return preflopFallback(hole)
}

// canonicalHoleIndex assigns the unique integer in [0,169) for an unordered
// hole pair: pairs map to their rank, 0..12; non-pairs map to
// 13 + (high-1)*high + 2*low + (0 if suited else 1).
func canonicalHoleIndex(hole [2]poker.Card) int {
	r0, r1 := int(hole[0].Rank()), int(hole[1].Rank())
	if r0 < r1 {
		r0, r1 = r1, r0
	}
	if r0 == r1 {
		return r0
	}
	suited := hole[0].Suit() == hole[1].Suit()
	s := 1
	if suited {
		s = 0
	}
	return 13 + (r0-1)*r0 + 2*r1 + s
}

// preflopFallbackCategoryOrder ranks poker.HoleCardCategory from weakest to
// strongest, so a category can be placed into a contiguous sub-range of the
// preflop bucket space.
var preflopFallbackCategoryOrder = []poker.HoleCardCategory{
	poker.CategoryUnknown,
	poker.CategoryTrash,
	poker.CategoryWeak,
	poker.CategoryMedium,
	poker.CategoryStrong,
	poker.CategoryPremium,
}

func categoryRank(cat poker.HoleCardCategory) int {
	for i, c := range preflopFallbackCategoryOrder {
		if c == cat {
			return i
		}
	}
	return 0
}

// preflopFallback places a hole pair into [0,PreflopBuckets) in two passes:
// CategorizeHoleCards assigns the coarse strength tier (Trash..Premium), and
// a high/low/suited score breaks ties within that tier's sub-range.
func preflopFallback(hole [2]poker.Card) int {
	tierCount := len(preflopFallbackCategoryOrder)
	tier := categoryRank(poker.CategorizeHoleCards(hole[0], hole[1]))

	high, low := int(hole[0].Rank()), int(hole[1].Rank())
	if high < low {
		high, low = low, high
	}
	score := float64(high*2 + low)
	if high == low {
		score += 30
	}
	if hole[0].Suit() == hole[1].Suit() {
		score += 5
	}
	const maxScore = 12*2 + 12 + 30 + 5

	bucketsPerTier := nlhe.PreflopBuckets / tierCount
	if bucketsPerTier < 1 {
		bucketsPerTier = 1
	}
	within := int(score / (float64(maxScore+1) / float64(bucketsPerTier)))
	if within >= bucketsPerTier {
		within = bucketsPerTier - 1
	}

	bucket := tier*bucketsPerTier + within
	return clampBucket(bucket, nlhe.PreflopBuckets)
}

func (o *Oracle) postflopBucket(hole [2]poker.Card, board []poker.Card, round int) int {
	n := nlhe.BucketCount(round)
	if o.source == SourceLoadedTables {
		equity := o.estimateEquity(hole, board, 100)
		centers := o.clusters[round-nlhe.RoundFlop]
		return nearestCenter(equity, centers)
	}
	cards := append([]poker.Card{hole[0], hole[1]}, board...)
	category := int(poker.Evaluate(cards).Type() >> 28)
	bucket := category * n / 9
	return clampBucket(bucket, n)
}

func clampBucket(b, n int) int {
	if b < 0 {
		return 0
	}
	if b >= n {
		return n - 1
	}
	return b
}

func nearestCenter(x float64, centers []float64) int {
	best, bestDist := 0, -1.0
	for i, c := range centers {
		d := x - c
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// estimateEquity runs a Monte Carlo rollout of the hole hand against one
// random opponent hand and the remaining board cards, returning the
// fraction of rollouts won (ties counted as half a win). Grounded on the
// 100-rollout-vs-random-opponent estimator in the original CFR trainer.
func (o *Oracle) estimateEquity(hole [2]poker.Card, board []poker.Card, rollouts int) float64 {
	used := poker.NewHand(hole[0], hole[1])
	for _, c := range board {
		used.AddCard(c)
	}
	remaining := make([]poker.Card, 0, 52)
	for suit := uint8(0); suit < 4; suit++ {
		for rank := uint8(0); rank < 13; rank++ {
			c := poker.NewCard(rank, suit)
			if !used.HasCard(c) {
				remaining = append(remaining, c)
			}
		}
	}

	wins := 0.0
	for i := 0; i < rollouts; i++ {
		o.rng.Shuffle(len(remaining), func(a, b int) { remaining[a], remaining[b] = remaining[b], remaining[a] })
		oppHole := [2]poker.Card{remaining[0], remaining[1]}
		fullBoard := append(append([]poker.Card{}, board...), remaining[2:2+(5-len(board))]...)

		mine := poker.Evaluate(append([]poker.Card{hole[0], hole[1]}, fullBoard...))
		theirs := poker.Evaluate(append([]poker.Card{oppHole[0], oppHole[1]}, fullBoard...))
		switch poker.CompareHands(mine, theirs) {
		case 1:
			wins += 1
		case 0:
			wins += 0.5
		}
	}
	return wins / float64(rollouts)
}
