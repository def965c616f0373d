package runtime

import (
	"testing"
	"time"

	"github.com/nlhe3p/blueprint-solver/internal/engine"
	"github.com/nlhe3p/blueprint-solver/internal/infoset"
	"github.com/nlhe3p/blueprint-solver/sdk/solver"
	"github.com/stretchr/testify/assert"
)

func TestPolicyActionWeightsErrors(t *testing.T) {
	var p *Policy
	_, err := p.ActionWeights(infoset.Key("x"), 1)
	assert.Error(t, err)

	p = &Policy{}
	_, err = p.ActionWeights(infoset.Key("x"), 0)
	assert.Error(t, err)
}

func TestPolicyActionWeightsPaddingAndUniformFallback(t *testing.T) {
	key := infoset.Encode(2, []int{0, 1})
	bp := &solver.Blueprint{
		Version:     1,
		GeneratedAt: time.Now().UTC(),
		Iterations:  10,
		Abstraction: solver.AbstractionConfig{TiePolicy: engine.TieFirstSeatWins},
		Strategies: map[string][]float64{
			string(key): {0.7},
		},
	}
	policy := &Policy{blueprint: bp}

	weights, err := policy.ActionWeights(key, 3)
	assert.NoError(t, err)
	assert.Len(t, weights, 3)
	assert.InDelta(t, 0.7, weights[0], 1e-9)
	for i := 1; i < len(weights); i++ {
		assert.InDelta(t, 1.0/3.0, weights[i], 1e-9)
	}

	missing, err := policy.ActionWeights(infoset.Encode(99, nil), 4)
	assert.NoError(t, err)
	for _, w := range missing {
		assert.InDelta(t, 0.25, w, 1e-9)
	}
}
