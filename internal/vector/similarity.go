package vector

import "math"

// InnerProduct returns the dot product of two sparse vectors using a merge-join over
// their sorted indices.
func InnerProduct(a, b Sparse) float64 {
	if a.IsZero() || b.IsZero() {
		return 0
	}
	var dot float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			dot += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return dot
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x Sparse) float64 {
	var sum float64
	for _, v := range x.Values {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// NormalizeL2 scales x in place to unit L2 norm. A zero vector is left unchanged.
func NormalizeL2(x Sparse) {
	norm := L2Norm(x)
	if norm == 0 {
		return
	}
	for i := range x.Values {
		x.Values[i] /= norm
	}
}

// CosineSimilarity returns the cosine of the angle between a and b, clamped to [-1, 1].
// Returns 0 when either vector is zero.
func CosineSimilarity(a, b Sparse) float64 {
	return cosine(InnerProduct(a, b), L2Norm(a), L2Norm(b))
}

func cosine(dot, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	return math.Max(-1, math.Min(1, dot/(normA*normB)))
}

// Similarities returns the cosine similarity of query against every row of m, in row order.
func Similarities(query Sparse, m *Matrix) []float64 {
	if m == nil || m.Len() == 0 {
		return nil
	}
	scores := make([]float64, m.Len())
	qNorm := L2Norm(query)
	if qNorm == 0 {
		return scores
	}
	for i, row := range m.rows {
		scores[i] = cosine(InnerProduct(query, row), qNorm, m.norms[i])
	}
	return scores
}
