package vector

import "fmt"

// Matrix is an immutable reference matrix: one sparse row per reference item,
// in reference corpus order. Row norms are computed once at construction.
type Matrix struct {
	dim   int
	rows  []Sparse
	norms []float64
}

// NewMatrix creates a matrix with dim columns from rows. Rows are not copied;
// callers must not modify them afterwards.
func NewMatrix(dim int, rows []Sparse) (*Matrix, error) {
	if dim < 0 {
		return nil, fmt.Errorf("dimensions must not be negative")
	}
	norms := make([]float64, len(rows))
	for i, row := range rows {
		if len(row.Indices) != len(row.Values) {
			return nil, fmt.Errorf("row %d: indices and values length mismatch", i)
		}
		for j, col := range row.Indices {
			if col < 0 || col >= dim {
				return nil, fmt.Errorf("row %d: column %d out of range [0, %d)", i, col, dim)
			}
			if j > 0 && col <= row.Indices[j-1] {
				return nil, fmt.Errorf("row %d: indices not strictly increasing", i)
			}
		}
		norms[i] = L2Norm(row)
	}
	return &Matrix{dim: dim, rows: rows, norms: norms}, nil
}

// Len returns the number of rows.
func (m *Matrix) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rows)
}

// Dim returns the number of columns.
func (m *Matrix) Dim() int {
	if m == nil {
		return 0
	}
	return m.dim
}

// Row returns row i.
func (m *Matrix) Row(i int) Sparse {
	return m.rows[i]
}

// NonZero returns the total number of stored entries across all rows.
func (m *Matrix) NonZero() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, row := range m.rows {
		n += row.Len()
	}
	return n
}
