package solver

import (
	"sync"

	"github.com/nlhe3p/blueprint-solver/internal/infoset"
)

// NumActions is the fixed width of every regret and strategy-sum row: the
// abstract action space is the same ten indices at every info set (fold,
// call, seven raise sizes, all-in), so tables never need per-node sizing.
const NumActions = 10

// RegretEntry accumulates regrets and strategy sums for one information set.
// Rows are fixed-width arrays rather than growable slices since the action
// space is uniform across the whole game tree.
type RegretEntry struct {
	RegretSum   [NumActions]float64
	StrategySum [NumActions]float64
	ActionMap   []int // legal indices first observed here; diagnostic only
	mutex       sync.Mutex
}

// RegretUpdateOptions configures how a single traversal update is applied.
type RegretUpdateOptions struct {
	// Iteration is the current training iteration t, used as the Linear
	// CFR weight w = t. Values <= 0 fall back to w = 1.
	Iteration int
}

// Strategy returns the current regret-matched distribution restricted to
// actions, via regret matching: positive regrets normalised to sum to one,
// or uniform over actions when every regret is non-positive.
func (e *RegretEntry) Strategy(actions []int) []float64 {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	strat := make([]float64, len(actions))
	total := 0.0
	for i, a := range actions {
		if r := e.RegretSum[a]; r > 0 {
			strat[i] = r
			total += r
		}
	}
	if total <= 0 {
		v := 1.0 / float64(len(actions))
		for i := range strat {
			strat[i] = v
		}
		return strat
	}
	for i := range strat {
		strat[i] /= total
	}
	return strat
}

// Update applies one traversal's regret and strategy-sum contributions.
// regret and strategy are parallel to actions; w is the Linear CFR weight.
func (e *RegretEntry) Update(actions []int, regret, strategy []float64, opts RegretUpdateOptions) {
	w := float64(opts.Iteration)
	if w <= 0 {
		w = 1
	}
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if len(e.ActionMap) == 0 {
		e.ActionMap = append([]int(nil), actions...)
	}
	for i, a := range actions {
		e.RegretSum[a] += w * regret[i]
		e.StrategySum[a] += w * strategy[i]
	}
}

// AverageStrategy returns the normalised average strategy over actions,
// uniform when nothing has accumulated yet.
func (e *RegretEntry) AverageStrategy(actions []int) []float64 {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	total := 0.0
	strat := make([]float64, len(actions))
	for i, a := range actions {
		strat[i] = e.StrategySum[a]
		total += strat[i]
	}
	if total <= 0 {
		v := 1.0 / float64(len(actions))
		for i := range strat {
			strat[i] = v
		}
		return strat
	}
	for i := range strat {
		strat[i] /= total
	}
	return strat
}

const regretTableShardCount = 64
const regretTableShardMask = regretTableShardCount - 1

type regretShard struct {
	mu      sync.RWMutex
	entries map[infoset.Key]*RegretEntry
}

// RegretTable maintains thread-safe entries keyed by information set, using
// sharded maps so concurrent traversal workers rarely contend on the same
// lock.
type RegretTable struct {
	shards [regretTableShardCount]regretShard
}

// NewRegretTable returns an empty regret table ready for use.
func NewRegretTable() *RegretTable {
	table := &RegretTable{}
	for i := 0; i < regretTableShardCount; i++ {
		table.shards[i].entries = make(map[infoset.Key]*RegretEntry)
	}
	return table
}

// Get returns the entry for key, creating it lazily on first access.
func (t *RegretTable) Get(key infoset.Key) *RegretEntry {
	shard := t.shardFor(key)

	shard.mu.RLock()
	entry, ok := shard.entries[key]
	shard.mu.RUnlock()
	if ok {
		return entry
	}

	shard.mu.Lock()
	defer shard.mu.Unlock()
	if entry, ok = shard.entries[key]; ok {
		return entry
	}
	entry = &RegretEntry{}
	shard.entries[key] = entry
	return entry
}

// Entries exposes a snapshot of the underlying table for serialisation.
func (t *RegretTable) Entries() map[infoset.Key]*RegretEntry {
	out := make(map[infoset.Key]*RegretEntry)
	for i := 0; i < regretTableShardCount; i++ {
		shard := &t.shards[i]
		shard.mu.RLock()
		for k, v := range shard.entries {
			out[k] = v
		}
		shard.mu.RUnlock()
	}
	return out
}

// Size returns the number of information sets tracked.
func (t *RegretTable) Size() int {
	total := 0
	for i := 0; i < regretTableShardCount; i++ {
		shard := &t.shards[i]
		shard.mu.RLock()
		total += len(shard.entries)
		shard.mu.RUnlock()
	}
	return total
}

func (t *RegretTable) shardFor(key infoset.Key) *regretShard {
	h := hashKey(string(key))
	return &t.shards[h&regretTableShardMask]
}

func (e *RegretEntry) snapshot() regretSnapshot {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return regretSnapshot{
		RegretSum:   e.RegretSum,
		StrategySum: e.StrategySum,
		ActionMap:   append([]int(nil), e.ActionMap...),
	}
}

func newRegretEntryFromSnapshot(snap regretSnapshot) *RegretEntry {
	return &RegretEntry{
		RegretSum:   snap.RegretSum,
		StrategySum: snap.StrategySum,
		ActionMap:   append([]int(nil), snap.ActionMap...),
	}
}

// hashKey is FNV-1a over the raw key bytes, used only to pick a shard.
func hashKey(key string) uint32 {
	const offset32 = 2166136261
	const prime32 = 16777619
	var hash uint32 = offset32
	for i := 0; i < len(key); i++ {
		hash ^= uint32(key[i])
		hash *= prime32
	}
	return hash
}
