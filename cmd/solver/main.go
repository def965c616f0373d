package main

import (
	"context"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nlhe3p/blueprint-solver/internal/config"
	"github.com/nlhe3p/blueprint-solver/internal/engine"
	"github.com/nlhe3p/blueprint-solver/sdk/solver"
)

var cli struct {
	Debug bool `help:"enable debug logging"`

	Train        TrainCmd        `cmd:"" help:"run MCCFR training and emit a blueprint"`
	Evaluate     EvalCmd         `cmd:"" help:"evaluate an existing blueprint via self-play"`
	BuildBuckets BuildBucketsCmd `cmd:"" help:"build the preflop/flop/turn/river bucket tables (stub)"`
}

type TrainCmd struct {
	Out             string  `help:"path to write the blueprint pack" required:""`
	Config          string  `help:"optional HCL training-config file; CLI flags override it"`
	Iterations      int     `help:"number of MCCFR iterations" default:"0"`
	Parallel        int     `help:"number of concurrent tables" default:"0"`
	Seed            int64   `help:"random seed; 0 uses time seed" default:"0"`
	BucketDir       string  `help:"directory containing built bucket-table artifacts; empty uses the deterministic fallback oracle"`
	TiePolicy       string  `help:"showdown tie policy (first_seat_wins|split_equally)" default:""`
	CheckpointPath  string  `help:"path to write periodic checkpoints"`
	CheckpointEvery int     `help:"checkpoint interval in iterations (0 disables)" default:"0"`
	ProgressEvery   int     `help:"log progress every N iterations (0 => iterations/100)" default:"0"`
	Sampling        string  `help:"sampling mode (external|full)" enum:",external,full" default:""`
	LinearCFR       bool    `help:"weight regret/strategy updates by iteration number" negatable:"" default:"true"`
	PruneThreshold  float64 `help:"regret-pruning cutoff; only a negative value replaces the configured one, 0 keeps it" default:"0"`
	ResumeFrom      string  `help:"resume training from checkpoint file"`
	CPUProfile      string  `help:"write CPU profile to file"`
}

type EvalCmd struct {
	Blueprint string `help:"path to blueprint pack" required:""`
	Hands     int    `help:"number of hands to simulate" default:"10000"`
	Seed      int64  `help:"random seed; 0 uses time seed" default:"0"`
}

type BuildBucketsCmd struct {
	Dir string `help:"directory to write bucket-table artifacts into" required:""`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("solver"),
		kong.Description("three-player NLHE MCCFR blueprint solver"),
		kong.UsageOnError(),
	)

	setupLogger(cli.Debug)

	switch ctx.Command() {
	case "train":
		if err := cli.Train.Run(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("training failed")
		}
	case "evaluate":
		if err := cli.Evaluate.Run(); err != nil {
			log.Fatal().Err(err).Msg("evaluation failed")
		}
	case "build-buckets":
		if err := cli.BuildBuckets.Run(); err != nil {
			log.Fatal().Err(err).Msg("build-buckets failed")
		}
	default:
		log.Fatal().Msgf("unknown command: %s", ctx.Command())
	}
}

func setupLogger(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
}

func (cmd *TrainCmd) Run(ctx context.Context) error {
	if cmd.CPUProfile != "" {
		f, err := os.Create(cmd.CPUProfile)
		if err != nil {
			return fmt.Errorf("create cpu profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", cmd.CPUProfile).Msg("CPU profiling enabled")
	}

	var trainer *solver.Trainer
	var err error

	if cmd.ResumeFrom != "" {
		trainer, err = solver.LoadTrainerFromCheckpoint(cmd.ResumeFrom)
		if err != nil {
			return fmt.Errorf("load checkpoint: %w", err)
		}
		if cmd.Iterations > 0 {
			if err := trainer.SetTotalIterations(cmd.Iterations); err != nil {
				return err
			}
		}
		if cmd.CheckpointPath != "" && cmd.CheckpointEvery > 0 {
			trainer.EnableCheckpoints(cmd.CheckpointPath, cmd.CheckpointEvery)
		}
		if cmd.ProgressEvery > 0 {
			trainer.SetProgressEvery(cmd.ProgressEvery)
		}
		trainCfg := trainer.TrainingConfig()
		log.Info().Int("iterations", trainCfg.Iterations).Int64("resume_iteration", trainer.Iteration()).Str("sampling", trainCfg.Sampling.String()).Str("checkpoint", cmd.ResumeFrom).Msg("resuming training run")
	} else {
		train := solver.DefaultTrainingConfig()
		abs := solver.DefaultAbstraction()
		if cmd.Config != "" {
			train, abs, err = config.Load(cmd.Config, train, abs)
			if err != nil {
				return fmt.Errorf("load training config: %w", err)
			}
		}

		if cmd.Iterations > 0 {
			train.Iterations = cmd.Iterations
		}
		if cmd.Parallel > 0 {
			train.ParallelTables = cmd.Parallel
		}
		if cmd.Seed != 0 {
			train.Seed = cmd.Seed
		}
		if cmd.CheckpointEvery > 0 {
			train.CheckpointEvery = cmd.CheckpointEvery
		}
		if cmd.ProgressEvery > 0 {
			train.ProgressEvery = cmd.ProgressEvery
		}
		train.LinearCFR = cmd.LinearCFR
		if cmd.PruneThreshold < 0 {
			train.PruneThreshold = cmd.PruneThreshold
		}
		if cmd.Sampling != "" {
			mode, err := parseSamplingMode(cmd.Sampling)
			if err != nil {
				return err
			}
			train.Sampling = mode
		}
		if cmd.BucketDir != "" {
			abs.BucketDir = cmd.BucketDir
		}
		if cmd.TiePolicy != "" {
			policy, err := parseTiePolicy(cmd.TiePolicy)
			if err != nil {
				return err
			}
			abs.TiePolicy = policy
		}

		trainer, err = solver.NewTrainer(abs, train)
		if err != nil {
			return err
		}
		if cmd.CheckpointPath != "" && cmd.CheckpointEvery > 0 {
			trainer.EnableCheckpoints(cmd.CheckpointPath, cmd.CheckpointEvery)
		}
		if cmd.ProgressEvery > 0 {
			trainer.SetProgressEvery(cmd.ProgressEvery)
		}
		log.Info().Int("iterations", train.Iterations).Int("parallel", train.ParallelTables).Bool("linear_cfr", train.LinearCFR).Str("sampling", train.Sampling.String()).Msg("starting training run")
	}

	start := time.Now()
	progress := func(p solver.Progress) {
		log.Info().Int("iteration", p.Iteration).Int("infosets", p.RegretTableSize).
			Int64("nodes", p.Stats.NodesVisited).Int64("terminals", p.Stats.TerminalNodes).
			Int64("pruned", p.Stats.PrunedActions).Int("max_depth", p.Stats.MaxDepth).
			Msg("progress")
	}

	if err := trainer.Run(ctx, progress); err != nil {
		return err
	}

	bp := trainer.Blueprint()
	duration := time.Since(start)
	log.Info().Dur("duration", duration).Int("infosets", len(bp.Strategies)).Msg("training completed")

	if err := bp.Save(cmd.Out); err != nil {
		return fmt.Errorf("save blueprint: %w", err)
	}
	log.Info().Str("path", cmd.Out).Msg("blueprint saved")
	return nil
}

func parseSamplingMode(input string) (solver.SamplingMode, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "external":
		return solver.SamplingModeExternal, nil
	case "full":
		return solver.SamplingModeFullTraversal, nil
	default:
		return solver.SamplingModeExternal, fmt.Errorf("unknown sampling mode %q", input)
	}
}

func parseTiePolicy(input string) (engine.TiePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "first_seat_wins":
		return engine.TieFirstSeatWins, nil
	case "split_equally":
		return engine.TieSplitEqually, nil
	default:
		return engine.TieFirstSeatWins, fmt.Errorf("unknown tie policy %q", input)
	}
}

func (cmd *BuildBucketsCmd) Run() error {
	log.Warn().Str("dir", cmd.Dir).Msg("build-buckets is an interface stub: it documents where bucket-table artifacts belong but does not run the k-means clustering that would produce them")
	return nil
}
