package vector

import (
	"fmt"
	"sort"
)

// candidate is a row index with its similarity score.
type candidate struct {
	idx   int
	score float64
}

// ranksBefore is the strict total order used for ranking: higher score first,
// and among equal scores the lower row index first.
func ranksBefore(a, b candidate) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.idx < b.idx
}

// TopK returns the row indices of the k highest scores, best first. Ties are broken
// by ascending row index. k <= 0 or empty scores yield nil; k larger than len(scores)
// is clamped.
//
// Selection is a quickselect over the whole slice followed by a sort of the first k
// elements only, so the cost is O(n + k log k) on average instead of O(n log n).
func TopK(scores []float64, k int) []int {
	n := len(scores)
	if k <= 0 || n == 0 {
		return nil
	}
	if k > n {
		k = n
	}
	cands := make([]candidate, n)
	for i, s := range scores {
		cands[i] = candidate{idx: i, score: s}
	}
	if k < n {
		selectTop(cands, k)
	}
	top := cands[:k]
	sort.Slice(top, func(i, j int) bool { return ranksBefore(top[i], top[j]) })

	out := make([]int, k)
	for i, c := range top {
		out[i] = c.idx
	}
	return out
}

// selectTop partially orders c so that c[:k] holds the k best candidates
// (in no particular order). Requires 0 < k < len(c).
func selectTop(c []candidate, k int) {
	lo, hi := 0, len(c)-1
	target := k - 1
	for lo < hi {
		p := partition(c, lo, hi)
		switch {
		case p == target:
			return
		case p < target:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
}

// partition places a median-of-three pivot at its final position within c[lo:hi+1]
// and returns that position. Elements ranking before the pivot end up on its left.
func partition(c []candidate, lo, hi int) int {
	mid := lo + (hi-lo)/2
	if ranksBefore(c[mid], c[lo]) {
		c[mid], c[lo] = c[lo], c[mid]
	}
	if ranksBefore(c[hi], c[lo]) {
		c[hi], c[lo] = c[lo], c[hi]
	}
	if ranksBefore(c[mid], c[hi]) {
		c[mid], c[hi] = c[hi], c[mid]
	}
	pivot := c[hi]
	i := lo
	for j := lo; j < hi; j++ {
		if ranksBefore(c[j], pivot) {
			c[i], c[j] = c[j], c[i]
			i++
		}
	}
	c[i], c[hi] = c[hi], c[i]
	return i
}

// Rank scores query against every row of m and returns the IDs and scores of the
// k most similar rows, ordered by score descending. ids must be in row order.
// k <= 0 or an empty matrix yields two empty slices.
func Rank(query Sparse, m *Matrix, ids []string, k int) ([]string, []float64, error) {
	if len(ids) != m.Len() {
		return nil, nil, fmt.Errorf("ids and matrix rows length mismatch: %d ids, %d rows", len(ids), m.Len())
	}
	if k <= 0 || m.Len() == 0 {
		return []string{}, []float64{}, nil
	}
	scores := Similarities(query, m)
	top := TopK(scores, k)
	outIDs := make([]string, len(top))
	outScores := make([]float64, len(top))
	for i, idx := range top {
		outIDs[i] = ids[idx]
		outScores[i] = scores[idx]
	}
	return outIDs, outScores, nil
}
