package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

func fitValidate(x, y mat.Matrix) error {
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}
	m, _ := x.Dims()
	ym, _ := y.Dims()
	if ym != m {
		return fmt.Errorf("training data has %d rows and target has %d rows, %w", m, ym, ErrTargetLenMismatch)
	}
	return nil
}

func matrixRows(x mat.Matrix) [][]float64 {
	m, n := x.Dims()
	rows := make([][]float64, m)
	for i := 0; i < m; i++ {
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			row[j] = x.At(i, j)
		}
		rows[i] = row
	}
	return rows
}

// distinctRows counts unique feature rows to guard against degenerate
// training sets that cannot support a split.
func distinctRows(rows [][]float64) int {
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		key := make([]byte, 0, len(row)*8)
		for _, v := range row {
			bits := math.Float64bits(v)
			for shift := 0; shift < 64; shift += 8 {
				key = append(key, byte(bits>>shift))
			}
		}
		seen[string(key)] = struct{}{}
	}
	return len(seen)
}
