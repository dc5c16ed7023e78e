package storage

import (
	"math"
	"testing"

	"github.com/poiesic/taxonomist/core"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeVector(t *testing.T) {
	tests := []struct {
		name     string
		input    []float32
		expected []float32
	}{
		{"unit vector unchanged", []float32{1, 0, 0}, []float32{1, 0, 0}},
		{"scaled vector", []float32{3, 4}, []float32{0.6, 0.8}},
		{"zero vector", []float32{0, 0}, []float32{0, 0}},
		{"empty vector", []float32{}, []float32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeVector(tt.input)
			assert.InDeltaSlice(t, tt.expected, result, 1e-6)
		})
	}

	t.Run("does not modify input", func(t *testing.T) {
		in := []float32{3, 4}
		NormalizeVector(in)
		assert.Equal(t, []float32{3, 4}, in)
	})

	t.Run("result has unit length", func(t *testing.T) {
		v := NormalizeVector([]float32{0.2, -1.7, 5.3, 0.01})
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)
	})
}

func TestDotProduct(t *testing.T) {
	assert.InDelta(t, 1.0, DotProduct([]float32{1, 0}, []float32{1, 0}), 1e-6)
	assert.InDelta(t, 0.0, DotProduct([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, DotProduct([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	assert.InDelta(t, 1.0, DotProduct([]float32{1, 0, 5}, []float32{1, 0}), 1e-6, "shorter length wins")
}

func TestRankMatches(t *testing.T) {
	mk := func(id string, sim float32) core.Match {
		return core.Match{Entry: &core.Entry{ID: id}, Similarity: sim}
	}

	t.Run("similarity then id", func(t *testing.T) {
		ranked := RankMatches([]core.Match{
			mk("b", 0.5), mk("c", 0.9), mk("a", 0.5), mk("d", 0.1),
		}, 3)

		ids := make([]string, len(ranked))
		for i, m := range ranked {
			ids[i] = m.Entry.ID
		}
		assert.Equal(t, []string{"c", "a", "b"}, ids)
	})

	t.Run("nil becomes empty", func(t *testing.T) {
		ranked := RankMatches(nil, 5)
		assert.NotNil(t, ranked)
		assert.Empty(t, ranked)
	})
}
