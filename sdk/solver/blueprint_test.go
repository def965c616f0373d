package solver

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nlhe3p/blueprint-solver/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBlueprintRejectsVersionMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "version-mismatch.json")

	bp := &Blueprint{
		Version:     blueprintFileVersion + 1,
		GeneratedAt: time.Now().UTC(),
		Iterations:  5,
		Abstraction: DefaultAbstraction(),
		Strategies:  map[string][]float64{},
	}
	require.NoError(t, bp.Save(path))

	_, err := LoadBlueprint(path)
	assert.Error(t, err)
}

func TestLoadBlueprintRejectsCorruptedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupted.json")
	require.NoError(t, os.WriteFile(path, []byte("{not-json"), 0o644))

	_, err := LoadBlueprint(path)
	assert.Error(t, err)
}

func TestBlueprintStrategyRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blueprint.json")

	key := "3|0,1"
	bp := &Blueprint{
		Version:     blueprintFileVersion,
		GeneratedAt: time.Now().UTC(),
		Iterations:  1,
		Abstraction: AbstractionConfig{TiePolicy: engine.TieFirstSeatWins},
		Strategies:  map[string][]float64{key: {0.2, 0.5, 0.3}},
	}
	require.NoError(t, bp.Save(path))

	loaded, err := LoadBlueprint(path)
	require.NoError(t, err)

	strat, ok := loaded.Strategy("3|0,1")
	require.True(t, ok)
	assert.Equal(t, []float64{0.2, 0.5, 0.3}, strat)

	_, ok = loaded.Strategy("missing")
	assert.False(t, ok)
}
