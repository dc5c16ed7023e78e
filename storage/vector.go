package storage

import (
	"cmp"
	"math"
	"slices"

	"github.com/poiesic/taxonomist/core"
)

// NormalizeVector normalizes a vector to unit length.
// Returns a new vector. If the input is a zero vector, returns a zero vector.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	// Calculate magnitude
	var magnitude float64
	for _, val := range v {
		magnitude += float64(val) * float64(val)
	}
	magnitude = math.Sqrt(magnitude)

	result := make([]float32, len(v))
	// Can't normalize zero vector
	if magnitude == 0 {
		return result
	}

	for i, val := range v {
		result[i] = float32(float64(val) / magnitude)
	}
	return result
}

// DotProduct calculates the dot product of two vectors.
// For unit vectors this is their cosine similarity.
func DotProduct(a, b []float32) float32 {
	var sum float32
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// CompareMatches orders matches by similarity descending, then id ascending.
func CompareMatches(a, b core.Match) int {
	if a.Similarity > b.Similarity {
		return -1
	}
	if a.Similarity < b.Similarity {
		return 1
	}
	return cmp.Compare(a.Entry.ID, b.Entry.ID)
}

// RankMatches sorts matches deterministically and keeps the best topK.
func RankMatches(matches []core.Match, topK int) []core.Match {
	slices.SortFunc(matches, CompareMatches)
	if len(matches) > topK {
		matches = matches[:topK]
	}
	if matches == nil {
		matches = []core.Match{}
	}
	return matches
}
