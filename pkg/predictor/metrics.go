package predictor

import (
	"math"
)

// Evaluation 学習・評価データでの精度指標
type Evaluation struct {
	R2  float64 `json:"r2"`
	MAE float64 `json:"mae"`
	N   int     `json:"n"`
}

// Evaluate computes R² and mean absolute error of r on (X, y).
func Evaluate(r Regressor, X [][]float64, y []float64) Evaluation {
	if len(y) == 0 {
		return Evaluation{}
	}
	pred := make([]float64, len(y))
	for i, row := range X {
		pred[i] = r.Predict(row)
	}
	return Evaluation{R2: R2Score(y, pred), MAE: MeanAbsoluteError(y, pred), N: len(y)}
}

// R2Score 決定係数。yが定数の場合は完全一致なら1、それ以外は0
func R2Score(y, pred []float64) float64 {
	meanY := calculateMean(y)
	var ssTotal, ssResidual float64
	for i := range y {
		ssTotal += (y[i] - meanY) * (y[i] - meanY)
		ssResidual += (y[i] - pred[i]) * (y[i] - pred[i])
	}
	if ssTotal == 0 {
		if ssResidual == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssResidual/ssTotal
}

// MeanAbsoluteError 平均絶対誤差
func MeanAbsoluteError(y, pred []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	var sum float64
	for i := range y {
		sum += math.Abs(y[i] - pred[i])
	}
	return sum / float64(len(y))
}
