package features

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// 数値パススルー列（スキーマ先頭にこの順序で並ぶ）
const (
	ColumnPrice          = "Price_INR"
	ColumnMarketingSpend = "Marketing_Spend_INR"
	ColumnYear           = "Year"
	ColumnMonth          = "Month"
	ColumnDay            = "Day"
	ColumnDayOfWeek      = "DayofWeek"
)

// PassthroughColumns returns the numeric passthrough columns in schema order.
func PassthroughColumns() []string {
	return []string{ColumnPrice, ColumnMarketingSpend, ColumnYear, ColumnMonth, ColumnDay, ColumnDayOfWeek}
}

// OneHotColumn one-hot列名 `{axis}_{value}`
func OneHotColumn(axis Axis, value string) string {
	return string(axis) + "_" + value
}

// Schema 学習時に凍結された順序付き特徴量列
type Schema struct {
	columns  []string
	index    map[string]int
	registry *Registry
}

// BuildSchema 学習時に一度だけ呼ぶ。パススルー列の後に軸ごとのone-hot列を辞書順で並べる
func BuildSchema(registry *Registry) *Schema {
	columns := PassthroughColumns()
	for _, axis := range Axes() {
		for _, v := range registry.Domain(axis).Values() {
			columns = append(columns, OneHotColumn(axis, v))
		}
	}
	s, err := newSchema(columns, registry)
	if err != nil {
		// registry-derived columns are unique by construction
		panic(err)
	}
	return s
}

// LoadSchema rebuilds a schema from a persisted column list without regenerating
// it. The column order is kept verbatim; the list must agree with the domains.
func LoadSchema(columns []string, domains map[Axis][]string) (*Schema, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("schema has no columns")
	}
	registry := NewRegistry(domains)
	s, err := newSchema(columns, registry)
	if err != nil {
		return nil, err
	}
	for _, col := range PassthroughColumns() {
		if _, ok := s.index[col]; !ok {
			return nil, fmt.Errorf("schema is missing passthrough column %q", col)
		}
	}
	passthrough := make(map[string]struct{})
	for _, col := range PassthroughColumns() {
		passthrough[col] = struct{}{}
	}
	oneHot := 0
	for _, col := range columns {
		if _, ok := passthrough[col]; ok {
			continue
		}
		axis, value, ok := splitOneHot(col)
		if !ok {
			return nil, fmt.Errorf("schema column %q belongs to no categorical axis", col)
		}
		if !registry.Domain(axis).Contains(value) {
			return nil, fmt.Errorf("schema column %q has no entry in the %s domain", col, axis)
		}
		oneHot++
	}
	expected := 0
	for _, axis := range Axes() {
		expected += registry.Domain(axis).Len()
	}
	if oneHot != expected {
		return nil, fmt.Errorf("schema has %d one-hot columns, domains describe %d", oneHot, expected)
	}
	return s, nil
}

func newSchema(columns []string, registry *Registry) (*Schema, error) {
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		if _, dup := index[col]; dup {
			return nil, fmt.Errorf("duplicate schema column %q", col)
		}
		index[col] = i
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Schema{columns: cols, index: index, registry: registry}, nil
}

func splitOneHot(column string) (Axis, string, bool) {
	for _, axis := range Axes() {
		prefix := string(axis) + "_"
		if strings.HasPrefix(column, prefix) {
			return axis, strings.TrimPrefix(column, prefix), true
		}
	}
	return "", "", false
}

// Columns returns a copy of the ordered columns.
func (s *Schema) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// Len returns the number of columns.
func (s *Schema) Len() int { return len(s.columns) }

// Has reports whether the column exists.
func (s *Schema) Has(column string) bool {
	_, ok := s.index[column]
	return ok
}

// Registry returns the read-only domains the schema was built from.
func (s *Schema) Registry() *Registry { return s.registry }

// Fingerprint 列名と順序のハッシュ。モデル成果物との整合性チェックに使う
func (s *Schema) Fingerprint() string {
	h := sha256.New()
	for _, col := range s.columns {
		h.Write([]byte(col))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Equal reports whether both schemas have the same columns in the same order.
func (s *Schema) Equal(other *Schema) bool {
	if other == nil || len(s.columns) != len(other.columns) {
		return false
	}
	for i := range s.columns {
		if s.columns[i] != other.columns[i] {
			return false
		}
	}
	return true
}

// ZeroVector 全列が0のベクトル。エンコードの起点
func (s *Schema) ZeroVector() *FeatureVector {
	return &FeatureVector{schema: s, values: make([]float64, len(s.columns))}
}

// FeatureVector スキーマの列集合とちょうど一致するキーを持つ数値ベクトル
type FeatureVector struct {
	schema *Schema
	values []float64
}

// Set assigns a value to an existing column. Unknown columns are rejected so the
// key set can never drift from the schema.
func (v *FeatureVector) Set(column string, value float64) bool {
	i, ok := v.schema.index[column]
	if !ok {
		return false
	}
	v.values[i] = value
	return true
}

// Get returns the value of a column.
func (v *FeatureVector) Get(column string) (float64, bool) {
	i, ok := v.schema.index[column]
	if !ok {
		return 0, false
	}
	return v.values[i], true
}

// Values returns the positional values in schema order.
func (v *FeatureVector) Values() []float64 {
	out := make([]float64, len(v.values))
	copy(out, v.values)
	return out
}

// Map returns the column → value view of the vector.
func (v *FeatureVector) Map() map[string]float64 {
	out := make(map[string]float64, len(v.values))
	for i, col := range v.schema.columns {
		out[col] = v.values[i]
	}
	return out
}

// Schema returns the schema the vector conforms to.
func (v *FeatureVector) Schema() *Schema { return v.schema }
