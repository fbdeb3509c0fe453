package predictor

import (
	"fmt"
)

// DefaultRidgeAlpha one-hot列の共線性を吸収する正則化係数
const DefaultRidgeAlpha = 1.0

// RidgeRegressor L2正則化付き線形回帰（正規方程式をCholeskyで解く）
type RidgeRegressor struct {
	Alpha        float64   `json:"alpha"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// NewRidge creates an unfitted ridge regressor.
func NewRidge(alpha float64) *RidgeRegressor {
	return &RidgeRegressor{Alpha: alpha}
}

// Kind implements Regressor.
func (r *RidgeRegressor) Kind() Kind { return KindRidge }

// NumFeatures implements Regressor.
func (r *RidgeRegressor) NumFeatures() int { return len(r.Coefficients) }

// Fit 中心化したXとyで (XᵀX + αI)w = Xᵀy を解く。切片は正則化しない
func (r *RidgeRegressor) Fit(X [][]float64, y []float64) error {
	k, err := validateTrainingSet(X, y)
	if err != nil {
		return err
	}
	if r.Alpha <= 0 {
		return fmt.Errorf("ridge alpha must be positive, got %g", r.Alpha)
	}

	n := len(X)
	xMean := make([]float64, k)
	for _, row := range X {
		for j, v := range row {
			xMean[j] += v
		}
	}
	for j := range xMean {
		xMean[j] /= float64(n)
	}
	yMean := calculateMean(y)

	XtX := make([][]float64, k)
	for i := range XtX {
		XtX[i] = make([]float64, k)
	}
	Xty := make([]float64, k)
	centered := make([]float64, k)
	for t, row := range X {
		for j, v := range row {
			centered[j] = v - xMean[j]
		}
		dy := y[t] - yMean
		for i := 0; i < k; i++ {
			ci := centered[i]
			if ci == 0 {
				continue
			}
			Xty[i] += ci * dy
			for j := 0; j <= i; j++ {
				XtX[i][j] += ci * centered[j]
			}
		}
	}
	for i := 0; i < k; i++ {
		for j := 0; j < i; j++ {
			XtX[j][i] = XtX[i][j]
		}
		XtX[i][i] += r.Alpha
	}

	beta, err := solveSymmetric(XtX, Xty)
	if err != nil {
		return fmt.Errorf("ridge solve failed: %w", err)
	}

	intercept := yMean
	for j := range beta {
		intercept -= beta[j] * xMean[j]
	}
	r.Coefficients = beta
	r.Intercept = intercept
	return nil
}

// Predict implements Regressor. Missing trailing features count as zero.
func (r *RidgeRegressor) Predict(x []float64) float64 {
	pred := r.Intercept
	for j, w := range r.Coefficients {
		if j < len(x) {
			pred += w * x[j]
		}
	}
	return pred
}
