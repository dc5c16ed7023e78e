package mock

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/poiesic/taxonomist/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicVector(t *testing.T) {
	a := DeterministicVector("Books", 16)
	b := DeterministicVector("Books", 16)
	c := DeterministicVector("Laptops", 16)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	var sum float64
	for _, v := range a {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestMockEmbedder_Concurrent(t *testing.T) {
	m := NewMockEmbedder()
	m.Dimensions = 8

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := m.EmbedText(context.Background(), "Fiction")
			assert.NoError(t, err)
			assert.Len(t, v, 8)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, m.CallCount())
	assert.Len(t, m.Texts(), 20)

	m.Reset()
	assert.Zero(t, m.CallCount())
	assert.Empty(t, m.Texts())
}

func TestFailingEmbedder(t *testing.T) {
	m := FailingEmbedder(2, ai.NewTransientError(errors.New("busy")))

	_, err := m.EmbedText(context.Background(), "x")
	assert.True(t, ai.IsTransient(err))
	_, err = m.EmbedText(context.Background(), "x")
	assert.Error(t, err)

	v, err := m.EmbedText(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, v, DefaultDimensions)
}

func TestTableEmbedder(t *testing.T) {
	m := TableEmbedder(map[string][]float32{"Books": {1, 0}})

	vs, err := m.EmbedTexts(context.Background(), []string{"Books"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}}, vs)

	_, err = m.EmbedText(context.Background(), "Toys")
	assert.True(t, ai.IsPermanent(err))
}
