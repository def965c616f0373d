// Package config loads an optional on-disk HCL file carrying the trainer's
// abstraction and training parameters, the same gohcl/hclparse pattern the
// teacher uses for its server and client configuration.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/nlhe3p/blueprint-solver/internal/engine"
	"github.com/nlhe3p/blueprint-solver/sdk/solver"
)

// File is the decoded shape of a training config file: a single optional
// `training` block with a nested `abstraction` block.
type File struct {
	Training TrainingBlock `hcl:"training,block"`
}

// TrainingBlock mirrors solver.TrainingConfig's tunable fields.
type TrainingBlock struct {
	Iterations      int     `hcl:"iterations,optional"`
	Seed            int64   `hcl:"seed,optional"`
	ParallelTables  int     `hcl:"parallel_tables,optional"`
	CheckpointEvery int     `hcl:"checkpoint_every,optional"`
	ProgressEvery   int     `hcl:"progress_every,optional"`
	Sampling        string  `hcl:"sampling,optional"`
	LinearCFR       bool    `hcl:"linear_cfr,optional"`
	PruneThreshold  float64 `hcl:"prune_threshold,optional"`
	PruneWarmUp     int     `hcl:"prune_warm_up,optional"`
	PruneSkipProb   float64 `hcl:"prune_skip_prob,optional"`

	Abstraction AbstractionBlock `hcl:"abstraction,block"`
}

// AbstractionBlock mirrors solver.AbstractionConfig's tunable fields.
type AbstractionBlock struct {
	BucketDir string `hcl:"bucket_dir,optional"`
	TiePolicy string `hcl:"tie_policy,optional"`
}

// Load parses an HCL training-config file at path into a TrainingConfig and
// AbstractionConfig pair, starting from the provided defaults and
// overwriting only the fields the file sets. A field set to its zero value
// counts as unset, so `linear_cfr = false` and `prune_threshold = 0` leave
// the defaults in place. A missing file is not an error: defaults pass
// through unchanged. A malformed file is always
// surfaced, never silently absorbed into defaults.
func Load(path string, defaultTrain solver.TrainingConfig, defaultAbs solver.AbstractionConfig) (solver.TrainingConfig, solver.AbstractionConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return defaultTrain, defaultAbs, nil
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return defaultTrain, defaultAbs, fmt.Errorf("parse %s: %s", path, diags.Error())
	}

	var file File
	diags = gohcl.DecodeBody(hclFile.Body, nil, &file)
	if diags.HasErrors() {
		return defaultTrain, defaultAbs, fmt.Errorf("decode %s: %s", path, diags.Error())
	}

	train := defaultTrain
	b := file.Training
	if b.Iterations > 0 {
		train.Iterations = b.Iterations
	}
	if b.Seed != 0 {
		train.Seed = b.Seed
	}
	if b.ParallelTables > 0 {
		train.ParallelTables = b.ParallelTables
	}
	if b.CheckpointEvery > 0 {
		train.CheckpointEvery = b.CheckpointEvery
	}
	if b.ProgressEvery > 0 {
		train.ProgressEvery = b.ProgressEvery
	}
	switch b.Sampling {
	case "external":
		train.Sampling = solver.SamplingModeExternal
	case "full":
		train.Sampling = solver.SamplingModeFullTraversal
	case "":
	default:
		return defaultTrain, defaultAbs, fmt.Errorf("%s: unknown sampling mode %q", path, b.Sampling)
	}
	if b.LinearCFR {
		train.LinearCFR = true
	}
	if b.PruneThreshold < 0 {
		train.PruneThreshold = b.PruneThreshold
	}
	if b.PruneWarmUp > 0 {
		train.PruneWarmUp = b.PruneWarmUp
	}
	if b.PruneSkipProb > 0 {
		train.PruneSkipProb = b.PruneSkipProb
	}

	abs := defaultAbs
	if b.Abstraction.BucketDir != "" {
		abs.BucketDir = b.Abstraction.BucketDir
	}
	switch b.Abstraction.TiePolicy {
	case "first_seat_wins":
		abs.TiePolicy = engine.TieFirstSeatWins
	case "split_equally":
		abs.TiePolicy = engine.TieSplitEqually
	case "":
	default:
		return defaultTrain, defaultAbs, fmt.Errorf("%s: unknown tie policy %q", path, b.Abstraction.TiePolicy)
	}

	if err := train.Validate(); err != nil {
		return defaultTrain, defaultAbs, fmt.Errorf("%s: %w", path, err)
	}
	if err := abs.Validate(); err != nil {
		return defaultTrain, defaultAbs, fmt.Errorf("%s: %w", path, err)
	}
	return train, abs, nil
}
