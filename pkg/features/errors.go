package features

import (
	"fmt"
)

// UnknownProductError 商品ルックアップに存在しない商品名。リクエスト単位で回復不可
type UnknownProductError struct {
	Product string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("unknown product: %q", e.Product)
}

// MalformedDateError 日付がカレンダー日付として解析できない
type MalformedDateError struct {
	Value string
	Err   error
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("malformed date %q: expected YYYY-MM-DD", e.Value)
}

func (e *MalformedDateError) Unwrap() error { return e.Err }
