package features

import (
	"sort"
)

// Axis カテゴリ軸（one-hot化される列の名前）
type Axis string

const (
	AxisProductName  Axis = "Product_Name"
	AxisBrand        Axis = "Brand"
	AxisCategoryType Axis = "Category_Type"
	AxisEventType    Axis = "Event_Type"
)

// Axes returns the categorical axes in schema order.
func Axes() []Axis {
	return []Axis{AxisProductName, AxisBrand, AxisCategoryType, AxisEventType}
}

// CategoricalDomain 1つのカテゴリ軸で学習時に観測された値の不変集合
type CategoricalDomain struct {
	axis   Axis
	values []string
	index  map[string]struct{}
}

// NewCategoricalDomain 値リストからドメインを作成（重複除去・辞書順ソート）
func NewCategoricalDomain(axis Axis, values []string) CategoricalDomain {
	index := make(map[string]struct{}, len(values))
	sorted := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := index[v]; ok {
			continue
		}
		index[v] = struct{}{}
		sorted = append(sorted, v)
	}
	sort.Strings(sorted)
	return CategoricalDomain{axis: axis, values: sorted, index: index}
}

// Axis returns the axis this domain belongs to.
func (d CategoricalDomain) Axis() Axis { return d.axis }

// Contains 値が学習時に観測されたかどうか
func (d CategoricalDomain) Contains(value string) bool {
	_, ok := d.index[value]
	return ok
}

// Values returns a copy of the sorted domain values.
func (d CategoricalDomain) Values() []string {
	out := make([]string, len(d.values))
	copy(out, d.values)
	return out
}

// Len returns the number of known values.
func (d CategoricalDomain) Len() int { return len(d.values) }

// LabeledRecord 学習・推論で共通のラベル付きレコード（ブランド・カテゴリは解決済み）
type LabeledRecord struct {
	Date              string
	ProductName       string
	Brand             string
	CategoryType      string
	PriceInr          float64
	MarketingSpendInr float64
	EventType         string
}

// value returns the record's value on the given axis.
func (r LabeledRecord) value(axis Axis) string {
	switch axis {
	case AxisProductName:
		return r.ProductName
	case AxisBrand:
		return r.Brand
	case AxisCategoryType:
		return r.CategoryType
	case AxisEventType:
		return r.EventType
	}
	return ""
}

// Registry カテゴリレジストリ。学習後は読み取り専用
type Registry struct {
	domains map[Axis]CategoricalDomain
}

// NewRegistry builds a registry from explicit per-axis values. Axes missing from
// the map get an empty domain.
func NewRegistry(values map[Axis][]string) *Registry {
	domains := make(map[Axis]CategoricalDomain, len(Axes()))
	for _, axis := range Axes() {
		domains[axis] = NewCategoricalDomain(axis, values[axis])
	}
	return &Registry{domains: domains}
}

// RegistryFromRecords 学習コーパスから各軸の観測値を収集してレジストリを作成
func RegistryFromRecords(records []LabeledRecord) *Registry {
	values := make(map[Axis][]string, len(Axes()))
	for _, rec := range records {
		for _, axis := range Axes() {
			values[axis] = append(values[axis], rec.value(axis))
		}
	}
	return NewRegistry(values)
}

// Domain returns the domain of the axis. Unknown axes yield an empty domain.
func (r *Registry) Domain(axis Axis) CategoricalDomain {
	if d, ok := r.domains[axis]; ok {
		return d
	}
	return NewCategoricalDomain(axis, nil)
}

// Snapshot returns the per-axis sorted values, suitable for persistence.
func (r *Registry) Snapshot() map[Axis][]string {
	out := make(map[Axis][]string, len(r.domains))
	for axis, d := range r.domains {
		out[axis] = d.Values()
	}
	return out
}
