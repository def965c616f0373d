package solver

import (
	"errors"

	"github.com/nlhe3p/blueprint-solver/internal/engine"
	"github.com/nlhe3p/blueprint-solver/internal/nlhe"
)

// SamplingMode controls how opponent actions are handled during traversal.
type SamplingMode uint8

const (
	SamplingModeExternal SamplingMode = iota
	SamplingModeFullTraversal
)

func (m SamplingMode) String() string {
	switch m {
	case SamplingModeExternal:
		return "external"
	case SamplingModeFullTraversal:
		return "full"
	default:
		return "unknown"
	}
}

// AbstractionConfig locates the bucket-table artifacts the oracle loads at
// startup. Bucket counts themselves are the fixed domain constants
// (nlhe.PreflopBuckets, nlhe.PostflopBuckets); only the on-disk location and
// tie-break policy are configurable.
type AbstractionConfig struct {
	// BucketDir holds the four serialized bucket-table artifacts (preflop
	// CHD table, flop/turn/river cluster centers). Empty activates the
	// deterministic fallback oracle.
	BucketDir string
	// TiePolicy selects how showdown ties are split; defaults to
	// first-seat-wins.
	TiePolicy engine.TiePolicy
}

// Validate checks the abstraction config is well-formed.
func (c AbstractionConfig) Validate() error {
	if c.TiePolicy != engine.TieFirstSeatWins && c.TiePolicy != engine.TieSplitEqually {
		return errors.New("unknown tie policy")
	}
	return nil
}

// TrainingConfig aggregates parameters that control one MCCFR run.
type TrainingConfig struct {
	Iterations      int
	Seed            int64
	ParallelTables  int
	CheckpointEvery int // iterations; 0 disables
	ProgressEvery   int // iterations; 0 defaults to Iterations/100

	Sampling SamplingMode

	// LinearCFR weights each traversal's regret/strategy update by the
	// iteration number; disabling it falls back to uniform weight 1.
	LinearCFR bool

	// PruneThreshold, PruneWarmUp, and PruneSkipProb implement the
	// regret-pruning optimisation. PruneWarmUp is the iteration after
	// which pruning may begin; a PruneThreshold of 0 (the zero value)
	// disables pruning outright since pruningEnabled always requires it to
	// be a genuinely negative cutoff.
	PruneThreshold float64
	PruneWarmUp    int
	PruneSkipProb  float64
}

// Validate ensures the training parameters are safe to use.
func (c TrainingConfig) Validate() error {
	if c.Iterations <= 0 {
		return errors.New("iterations must be > 0")
	}
	if c.ParallelTables <= 0 {
		return errors.New("parallel tables must be > 0")
	}
	if c.CheckpointEvery < 0 {
		return errors.New("checkpoint interval cannot be negative")
	}
	if c.ProgressEvery < 0 {
		return errors.New("progress interval cannot be negative")
	}
	if c.Sampling > SamplingModeFullTraversal {
		return errors.New("invalid sampling mode")
	}
	if c.PruneThreshold > 0 {
		return errors.New("prune threshold must be <= 0")
	}
	if c.PruneWarmUp < 0 {
		return errors.New("prune warm-up cannot be negative")
	}
	if c.PruneSkipProb < 0 || c.PruneSkipProb > 1 {
		return errors.New("prune skip probability must be within [0, 1]")
	}
	return nil
}

// pruningEnabled reports whether regret pruning should be considered at all,
// i.e. a genuine negative threshold was configured.
func (c TrainingConfig) pruningEnabled() bool {
	return c.PruneThreshold < 0
}

// DefaultAbstraction returns the fallback-oracle abstraction with the
// default tie policy, suitable for local experimentation without built
// bucket-table artifacts.
func DefaultAbstraction() AbstractionConfig {
	return AbstractionConfig{TiePolicy: engine.TieFirstSeatWins}
}

// DefaultTrainingConfig returns the blueprint run's defaults: Linear CFR
// with regret pruning on, matching the domain constants in internal/nlhe.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		Iterations:      1_000_000,
		Seed:            1,
		ParallelTables:  1,
		CheckpointEvery: 0,
		ProgressEvery:   0,
		Sampling:        SamplingModeExternal,
		LinearCFR:       true,
		PruneThreshold:  nlhe.PruneThreshold,
		PruneWarmUp:     nlhe.PruneWarmUp,
		PruneSkipProb:   nlhe.PruneSkipProb,
	}
}
