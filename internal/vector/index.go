// Package vector provides sparse vectors, the reference matrix, and top-k similarity ranking.
package vector

import "sort"

// Sparse is a sparse vector with strictly increasing column indices.
// The zero value is the zero vector.
type Sparse struct {
	Indices []int
	Values  []float64
}

// NewSparse builds a Sparse from a column -> weight map, dropping zero weights.
func NewSparse(weights map[int]float64) Sparse {
	if len(weights) == 0 {
		return Sparse{}
	}
	idx := make([]int, 0, len(weights))
	for col, w := range weights {
		if w != 0 {
			idx = append(idx, col)
		}
	}
	sort.Ints(idx)
	vals := make([]float64, len(idx))
	for i, col := range idx {
		vals[i] = weights[col]
	}
	return Sparse{Indices: idx, Values: vals}
}

// Len returns the number of stored (non-zero) entries.
func (s Sparse) Len() int {
	return len(s.Indices)
}

// IsZero reports whether the vector has no non-zero entries.
func (s Sparse) IsZero() bool {
	return len(s.Indices) == 0
}

// Dense expands s into a dense slice of length dim. Entries at or beyond dim are ignored.
func (s Sparse) Dense(dim int) []float64 {
	out := make([]float64, dim)
	for i, col := range s.Indices {
		if col < dim {
			out[col] = s.Values[i]
		}
	}
	return out
}
