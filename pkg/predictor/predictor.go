// Package predictor provides the trainable regressors behind demand prediction.
// A Regressor only sees positional feature values; column meaning lives in the
// feature schema persisted next to it.
package predictor

import (
	"errors"
	"fmt"
)

// Kind 回帰モデルの種類（成果物の識別子）
type Kind string

const (
	KindRandomForest Kind = "random_forest"
	KindRidge        Kind = "ridge"
)

// ErrNotFitted is returned when a regressor is used before Fit.
var ErrNotFitted = errors.New("regressor is not fitted")

// Regressor 学習可能な回帰器。Predict は学習済み状態と入力のみに依存し、並行読み取りに安全であること
type Regressor interface {
	Kind() Kind
	Fit(X [][]float64, y []float64) error
	Predict(x []float64) float64
	NumFeatures() int
}

// New はKindから未学習の回帰器を生成します。
func New(kind Kind) (Regressor, error) {
	switch kind {
	case KindRandomForest:
		return NewRandomForest(DefaultForestConfig()), nil
	case KindRidge:
		return NewRidge(DefaultRidgeAlpha), nil
	default:
		return nil, fmt.Errorf("unknown regressor kind %q", kind)
	}
}

// validateTrainingSet checks that X is a non-empty rectangular matrix matching y.
func validateTrainingSet(X [][]float64, y []float64) (int, error) {
	if len(X) == 0 {
		return 0, errors.New("empty training set")
	}
	if len(X) != len(y) {
		return 0, fmt.Errorf("feature rows (%d) and targets (%d) differ", len(X), len(y))
	}
	width := len(X[0])
	if width == 0 {
		return 0, errors.New("training rows have no features")
	}
	for i, row := range X {
		if len(row) != width {
			return 0, fmt.Errorf("row %d has %d features, expected %d", i, len(row), width)
		}
	}
	return width, nil
}
