package similarity_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptctx/promptctx/similarity"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical vectors", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"opposite vectors", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"orthogonal vectors", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"zero vector scores zero, not NaN", []float32{0, 0}, []float32{1, 1}, 0.0},
		{"both zero", []float32{0, 0}, []float32{0, 0}, 0.0},
		{"dimension mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0.0},
		{"empty", nil, nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := similarity.Cosine(tt.a, tt.b)
			assert.False(t, math.IsNaN(got))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCosineScaleInvariance(t *testing.T) {
	a := []float32{0.3, -0.7, 0.2}
	scaled := []float32{0.6, -1.4, 0.4}

	assert.InDelta(t, 1.0, similarity.Cosine(a, scaled), 1e-6)
}

func TestBatchCosine(t *testing.T) {
	query := []float32{1, 0, 0}
	items := [][]float32{
		{1, 0, 0},  // identical
		{0, 1, 0},  // orthogonal
		{-1, 0, 0}, // opposite
		{0, 0, 0},  // zero norm
		{1, 0},     // dimension mismatch
	}

	scores := similarity.BatchCosine(query, items)

	require.Len(t, scores, len(items))
	assert.InDelta(t, 1.0, scores[0], 1e-9)
	assert.InDelta(t, 0.0, scores[1], 1e-9)
	assert.InDelta(t, -1.0, scores[2], 1e-9)
	assert.Zero(t, scores[3])
	assert.Zero(t, scores[4])
}

func TestBatchCosineMatchesSingle(t *testing.T) {
	query := []float32{0.2, 0.5, -0.1, 0.9}
	items := [][]float32{
		{0.1, 0.4, 0.0, 0.7},
		{-0.3, 0.2, 0.8, -0.5},
		{0.9, -0.9, 0.9, -0.9},
	}

	batch := similarity.BatchCosine(query, items)

	for i, item := range items {
		assert.InDelta(t, similarity.Cosine(query, item), batch[i], 1e-12)
	}
}

func TestBatchCosineZeroQuery(t *testing.T) {
	scores := similarity.BatchCosine([]float32{0, 0}, [][]float32{{1, 1}})
	require.Len(t, scores, 1)
	assert.Zero(t, scores[0])
}
