package solver

import (
	"sync"
	"testing"

	"github.com/nlhe3p/blueprint-solver/internal/infoset"
	"github.com/stretchr/testify/assert"
)

func TestRegretEntryStrategyNormalizesPositiveRegrets(t *testing.T) {
	var entry RegretEntry
	entry.RegretSum[0] = 1
	entry.RegretSum[1] = 2
	entry.RegretSum[2] = -5

	strat := entry.Strategy([]int{0, 1, 2})

	assert.InDelta(t, 1.0/3.0, strat[0], 1e-9)
	assert.InDelta(t, 2.0/3.0, strat[1], 1e-9)
	assert.Zero(t, strat[2])
}

func TestRegretEntryStrategyUniformFallback(t *testing.T) {
	var entry RegretEntry
	strat := entry.Strategy([]int{0, 1, 2, 3})
	for _, s := range strat {
		assert.InDelta(t, 0.25, s, 1e-9)
	}
}

func TestRegretEntryUpdateAndAverage(t *testing.T) {
	var entry RegretEntry
	actions := []int{0, 1}
	regret := []float64{1, -1}
	strategy := []float64{0.6, 0.4}

	entry.Update(actions, regret, strategy, RegretUpdateOptions{Iteration: 2})

	assert.Equal(t, 2.0, entry.RegretSum[0])
	assert.Equal(t, -2.0, entry.RegretSum[1])
	assert.InDelta(t, 1.2, entry.StrategySum[0], 1e-9)
	assert.InDelta(t, 0.8, entry.StrategySum[1], 1e-9)
	assert.Equal(t, actions, entry.ActionMap)

	avg := entry.AverageStrategy(actions)
	assert.InDelta(t, 0.6, avg[0], 1e-9)
	assert.InDelta(t, 0.4, avg[1], 1e-9)
}

func TestRegretTableGetCachesEntries(t *testing.T) {
	table := NewRegretTable()
	key := infoset.Encode(1, []int{0, 1})

	entryA := table.Get(key)
	assert.NotNil(t, entryA)

	entryB := table.Get(key)
	assert.Same(t, entryA, entryB)
}

func TestRegretTableConcurrentAccess(t *testing.T) {
	table := NewRegretTable()
	key := infoset.Encode(2, nil)

	actions := []int{0, 1, 2}
	regret := []float64{1, -0.5, 0.25}
	strategy := []float64{0.4, 0.3, 0.3}

	const workers = 32
	const updates = 100

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < updates; j++ {
				entry := table.Get(key)
				entry.Update(actions, regret, strategy, RegretUpdateOptions{Iteration: 1})
			}
		}()
	}
	wg.Wait()

	entry := table.Get(key)
	expected := float64(workers*updates) * 0.4
	assert.InDelta(t, expected, entry.StrategySum[0], 1e-6)
}
