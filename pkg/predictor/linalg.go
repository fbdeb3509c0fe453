package predictor

import (
	"errors"
	"math"
)

var errNotPositiveDefinite = errors.New("matrix is not positive definite")

// solveSymmetric solves A*x=b for symmetric positive definite A by Cholesky
func solveSymmetric(A [][]float64, b []float64) ([]float64, error) {
	n := len(A)
	if n == 0 || len(b) != n {
		return nil, errors.New("dimension mismatch")
	}
	for _, row := range A {
		if len(row) != n {
			return nil, errors.New("matrix is not square")
		}
	}
	// copy A to L
	L := make([][]float64, n)
	for i := 0; i < n; i++ {
		L[i] = make([]float64, n)
		copy(L[i], A[i])
	}
	// Cholesky分解
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			var sum float64
			for k := 0; k < j; k++ {
				sum += L[i][k] * L[j][k]
			}
			if i == j {
				val := L[i][i] - sum
				if val <= 0 {
					return nil, errNotPositiveDefinite
				}
				L[i][j] = math.Sqrt(val)
			} else {
				L[i][j] = (L[i][j] - sum) / L[j][j]
			}
		}
		for j := i + 1; j < n; j++ {
			L[i][j] = 0
		}
	}
	// 前進代入
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < i; j++ {
			sum += L[i][j] * y[j]
		}
		y[i] = (b[i] - sum) / L[i][i]
	}
	// 後退代入
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		var sum float64
		for j := i + 1; j < n; j++ {
			sum += L[j][i] * x[j]
		}
		x[i] = (y[i] - sum) / L[i][i]
	}
	return x, nil
}

// calculateMean 平均値を計算
func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
