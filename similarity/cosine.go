// Package similarity provides the vector similarity primitives used by
// embedding-based retrieval.
package similarity

import "math"

// Cosine computes the cosine similarity between two vectors. It returns 0
// when either vector has zero norm or when the dimensions differ, never
// NaN. Accumulation happens in float64 to keep long vectors stable.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// BatchCosine computes the cosine similarity between one query vector and
// many item vectors. The query norm is computed once, so scoring a full
// candidate set costs one pass per item vector. Items with mismatched
// dimensions or zero norm score 0.
func BatchCosine(query []float32, items [][]float32) []float64 {
	scores := make([]float64, len(items))
	if len(query) == 0 {
		return scores
	}

	var queryNorm float64
	for _, q := range query {
		queryNorm += float64(q) * float64(q)
	}
	if queryNorm == 0 {
		return scores
	}
	queryNorm = math.Sqrt(queryNorm)

	for i, item := range items {
		if len(item) != len(query) {
			continue
		}
		var dot, itemNorm float64
		for j := range item {
			dot += float64(query[j]) * float64(item[j])
			itemNorm += float64(item[j]) * float64(item[j])
		}
		if itemNorm == 0 {
			continue
		}
		scores[i] = dot / (queryNorm * math.Sqrt(itemNorm))
	}
	return scores
}
