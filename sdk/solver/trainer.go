package solver

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/nlhe3p/blueprint-solver/internal/abstraction"
	"github.com/nlhe3p/blueprint-solver/internal/engine"
)

// Progress contains metadata emitted during long-running solver operations.
type Progress struct {
	Iteration       int
	RegretTableSize int
	Stats           TraversalStats
}

// Trainer orchestrates Monte Carlo CFR iterations over a Game.
type Trainer struct {
	absCfg   AbstractionConfig
	trainCfg TrainingConfig
	game     Game
	regrets  *RegretTable

	iteration atomic.Int64
	rng       *rand.Rand
	rngSeed   int64
	rngInt63  int64

	statsMu sync.Mutex
	stats   TraversalStats

	checkpointPath  string
	checkpointEvery int
}

// NewTrainer constructs a trainer for the three-player NLHE game, loading
// the bucket oracle from absCfg.BucketDir (empty activates the fallback
// oracle).
func NewTrainer(absCfg AbstractionConfig, trainCfg TrainingConfig) (*Trainer, error) {
	if err := absCfg.Validate(); err != nil {
		return nil, fmt.Errorf("abstraction config: %w", err)
	}
	if err := trainCfg.Validate(); err != nil {
		return nil, fmt.Errorf("training config: %w", err)
	}

	seed := trainCfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	oracle, err := abstraction.NewOracle(absCfg.BucketDir, seed)
	if err != nil {
		return nil, fmt.Errorf("load bucket oracle: %w", err)
	}
	if oracle.Source() == abstraction.SourceFallback && absCfg.BucketDir != "" {
		log.Warn().Str("dir", absCfg.BucketDir).Msg("bucket tables missing or malformed, using deterministic fallback oracle")
	}

	return NewTrainerWithGame(engine.NewNLHEGame(oracle, absCfg.TiePolicy), absCfg, trainCfg), nil
}

// NewTrainerWithGame constructs a trainer over an arbitrary Game
// implementation, used both for the NLHE trainer above and for exercising
// the identical traversal loop against the Kuhn reference engine.
func NewTrainerWithGame(game Game, absCfg AbstractionConfig, trainCfg TrainingConfig) *Trainer {
	seed := trainCfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Trainer{
		absCfg:   absCfg,
		trainCfg: trainCfg,
		game:     game,
		regrets:  NewRegretTable(),
		rng:      rand.New(rand.NewSource(seed)),
		rngSeed:  seed,
	}
}

// Run executes the requested number of CFR iterations, checkpointing and
// reporting progress as configured. It returns when Iterations is reached,
// a checkpoint save fails, or ctx is cancelled (checked once per iteration).
func (t *Trainer) Run(ctx context.Context, progress func(Progress)) error {
	batch := t.trainCfg.ProgressEvery
	if batch <= 0 {
		batch = t.trainCfg.Iterations / 100
	}
	if batch <= 0 {
		batch = 1
	}

	for int(t.iteration.Load()) < t.trainCfg.Iterations {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		iter := int(t.iteration.Load()) + 1
		stats, err := t.runIteration(iter)
		if err != nil {
			return err
		}
		t.setStats(stats)
		t.iteration.Store(int64(iter))

		if t.checkpointPath != "" && t.checkpointEvery > 0 && iter%t.checkpointEvery == 0 {
			if err := t.SaveCheckpoint(t.checkpointPath); err != nil {
				return fmt.Errorf("save checkpoint at iteration %d: %w", iter, err)
			}
		}

		if progress != nil && iter%batch == 0 {
			progress(Progress{Iteration: iter, RegretTableSize: t.regrets.Size(), Stats: stats})
		}
	}

	if progress != nil {
		progress(Progress{Iteration: int(t.iteration.Load()), RegretTableSize: t.regrets.Size(), Stats: t.Stats()})
	}
	if t.checkpointPath != "" && t.checkpointEvery > 0 {
		if err := t.SaveCheckpoint(t.checkpointPath); err != nil {
			return fmt.Errorf("save final checkpoint: %w", err)
		}
	}
	return nil
}

// runIteration runs ParallelTables workers, each dealing a fresh hand for
// every traverser seat and traversing it once, and aggregates their
// instrumentation. Workers
// share the single RegretTable (internally sharded and lock-protected) but
// each owns an independent game state and RNG, following the teacher's
// worker-pool shape in the original singleIteration but coordinated by
// errgroup rather than a manual WaitGroup and error latch.
func (t *Trainer) runIteration(iter int) (TraversalStats, error) {
	workers := t.trainCfg.ParallelTables
	if workers <= 0 {
		workers = 1
	}

	seeds := make([]int64, workers)
	for i := range seeds {
		seeds[i] = t.rng.Int63()
		t.rngInt63++
	}

	results := make([]TraversalStats, workers)
	g, _ := errgroup.WithContext(context.Background())
	for i := 0; i < workers; i++ {
		idx := i
		g.Go(func() error {
			workerRNG := NewFastRand(seeds[idx])
			var agg TraversalStats
			for traverser := 0; traverser < t.game.NumPlayers(); traverser++ {
				state := t.game.Deal(workerRNG)
				tc := &traversalContext{
					game:      t.game,
					regrets:   t.regrets,
					rng:       workerRNG,
					cfg:       t.trainCfg,
					iteration: iter,
				}
				tc.Traverse(state, traverser, 0)
				agg.NodesVisited += tc.stats.NodesVisited
				agg.TerminalNodes += tc.stats.TerminalNodes
				agg.ChanceNodes += tc.stats.ChanceNodes
				agg.PrunedActions += tc.stats.PrunedActions
				if tc.stats.MaxDepth > agg.MaxDepth {
					agg.MaxDepth = tc.stats.MaxDepth
				}
			}
			results[idx] = agg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return TraversalStats{}, err
	}

	var total TraversalStats
	for _, r := range results {
		total.NodesVisited += r.NodesVisited
		total.TerminalNodes += r.TerminalNodes
		total.ChanceNodes += r.ChanceNodes
		total.PrunedActions += r.PrunedActions
		if r.MaxDepth > total.MaxDepth {
			total.MaxDepth = r.MaxDepth
		}
	}
	return total, nil
}

// Blueprint materialises the averaged strategy produced so far.
func (t *Trainer) Blueprint() *Blueprint {
	entries := t.regrets.Entries()
	strategies := make(map[string][]float64, len(entries))
	for key, entry := range entries {
		if len(entry.ActionMap) == 0 {
			continue
		}
		strategies[string(key)] = entry.AverageStrategy(entry.ActionMap)
	}
	return &Blueprint{
		Version:     blueprintFileVersion,
		GeneratedAt: time.Now().UTC(),
		Iterations:  int(t.iteration.Load()),
		Abstraction: t.absCfg,
		Strategies:  strategies,
	}
}

func (t *Trainer) setStats(stats TraversalStats) {
	t.statsMu.Lock()
	defer t.statsMu.Unlock()
	t.stats = stats
}

// Stats returns the most recently recorded iteration's traversal stats.
func (t *Trainer) Stats() TraversalStats {
	t.statsMu.Lock()
	defer t.statsMu.Unlock()
	return t.stats
}

func (t *Trainer) TrainingConfig() TrainingConfig { return t.trainCfg }

func (t *Trainer) Iteration() int64 { return t.iteration.Load() }

func (t *Trainer) SetTotalIterations(n int) error {
	current := int(t.iteration.Load())
	if n < current {
		return fmt.Errorf("total iterations %d less than completed %d", n, current)
	}
	t.trainCfg.Iterations = n
	return nil
}

func (t *Trainer) SetProgressEvery(n int) {
	if n < 0 {
		n = 0
	}
	t.trainCfg.ProgressEvery = n
}

// EnableCheckpoints configures the trainer to write checkpoints every n
// iterations.
func (t *Trainer) EnableCheckpoints(path string, every int) {
	t.checkpointPath = path
	t.checkpointEvery = every
}
