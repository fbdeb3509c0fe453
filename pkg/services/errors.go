package services

import (
	"errors"
	"fmt"

	"shampoo-demand-api/pkg/features"
)

// エラーコード（HTTPレスポンスとメトリクスのラベルに使う）
const (
	CodeUnknownProduct = "unknown_product"
	CodeMalformedDate  = "malformed_date"
	CodeInvalidRequest = "invalid_request"
	CodeInternal       = "internal"
)

// InvalidRequestError フィールド値が不正（負の価格・広告費など）
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ErrorCode classifies a prediction error. Client-input errors are never retried.
func ErrorCode(err error) string {
	var upe *features.UnknownProductError
	var mde *features.MalformedDateError
	var ire *InvalidRequestError
	switch {
	case errors.As(err, &upe):
		return CodeUnknownProduct
	case errors.As(err, &mde):
		return CodeMalformedDate
	case errors.As(err, &ire):
		return CodeInvalidRequest
	default:
		return CodeInternal
	}
}

// IsClientError reports whether err was caused by the request itself.
func IsClientError(err error) bool {
	return ErrorCode(err) != CodeInternal
}
