package solver_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/nlhe3p/blueprint-solver/internal/kuhn"
	"github.com/nlhe3p/blueprint-solver/sdk/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smokeTrainingConfig(seed int64, iterations int) solver.TrainingConfig {
	cfg := solver.DefaultTrainingConfig()
	cfg.Seed = seed
	cfg.Iterations = iterations
	cfg.ParallelTables = 1
	return cfg
}

func TestTrainerOverKuhnProducesNonUniformStrategies(t *testing.T) {
	cfg := smokeTrainingConfig(11, 200)
	trainer := solver.NewTrainerWithGame(kuhn.Game{}, solver.DefaultAbstraction(), cfg)

	require.NoError(t, trainer.Run(context.Background(), nil))

	bp := trainer.Blueprint()
	assert.Equal(t, 200, bp.Iterations)
	assert.NotEmpty(t, bp.Strategies)

	nonUniform := false
	for _, strat := range bp.Strategies {
		for _, p := range strat {
			if math.Abs(p-1.0/float64(len(strat))) > 1e-6 {
				nonUniform = true
			}
		}
	}
	assert.True(t, nonUniform, "expected at least one non-uniform average strategy")
}

func TestTrainerRunIsDeterministicForAFixedSeed(t *testing.T) {
	cfg := smokeTrainingConfig(99, 50)

	trainerA := solver.NewTrainerWithGame(kuhn.Game{}, solver.DefaultAbstraction(), cfg)
	require.NoError(t, trainerA.Run(context.Background(), nil))
	statsA := trainerA.Stats()

	trainerB := solver.NewTrainerWithGame(kuhn.Game{}, solver.DefaultAbstraction(), cfg)
	require.NoError(t, trainerB.Run(context.Background(), nil))
	statsB := trainerB.Stats()

	assert.Equal(t, statsA.NodesVisited, statsB.NodesVisited)
	assert.Equal(t, statsA.TerminalNodes, statsB.TerminalNodes)
}

func TestTrainerCheckpointRoundTrip(t *testing.T) {
	cfg := smokeTrainingConfig(7, 4)
	trainer := solver.NewTrainerWithGame(kuhn.Game{}, solver.DefaultAbstraction(), cfg)

	dir := t.TempDir()
	ckpt := filepath.Join(dir, "trainer.ckpt.json")
	trainer.EnableCheckpoints(ckpt, 1)

	require.NoError(t, trainer.Run(context.Background(), nil))
	_, err := os.Stat(ckpt)
	require.NoError(t, err)

	resumed, err := solver.LoadTrainerFromCheckpoint(ckpt)
	require.NoError(t, err)
	assert.Equal(t, trainer.Iteration(), resumed.Iteration())

	require.NoError(t, resumed.SetTotalIterations(int(resumed.Iteration())+1))
	resumed.EnableCheckpoints(filepath.Join(dir, "resume.ckpt.json"), 1)
	assert.NoError(t, resumed.Run(context.Background(), nil))
}

func TestTrainerRunRespectsContextCancellation(t *testing.T) {
	cfg := smokeTrainingConfig(3, 1_000_000)
	trainer := solver.NewTrainerWithGame(kuhn.Game{}, solver.DefaultAbstraction(), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := trainer.Run(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
