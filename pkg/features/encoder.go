package features

// ProductInfo 商品名から解決されるブランドとカテゴリ
type ProductInfo struct {
	Brand    string `json:"brand"`
	Category string `json:"category"`
}

// ProductLookup 商品名 → {ブランド, カテゴリ} の静的マッピング（読み取り専用）
type ProductLookup interface {
	Lookup(productName string) (ProductInfo, bool)
}

// StaticProductLookup is an immutable map-backed ProductLookup.
type StaticProductLookup struct {
	products map[string]ProductInfo
}

// NewStaticProductLookup copies the mapping so later changes by the caller are not observed.
func NewStaticProductLookup(products map[string]ProductInfo) *StaticProductLookup {
	m := make(map[string]ProductInfo, len(products))
	for k, v := range products {
		m[k] = v
	}
	return &StaticProductLookup{products: m}
}

// Lookup implements ProductLookup.
func (l *StaticProductLookup) Lookup(productName string) (ProductInfo, bool) {
	info, ok := l.products[productName]
	return info, ok
}

// Request エンコード対象の生リクエスト
type Request struct {
	Date              string
	ProductName       string
	PriceInr          float64
	MarketingSpendInr float64
	EventType         string
}

// Encoding エンコード結果。未知の値で信号を持たなかった軸も記録する
type Encoding struct {
	Vector       *FeatureVector
	DegradedAxes []Axis
}

// Encoder リクエストをスキーマ準拠の特徴量ベクトルに変換する純粋関数
type Encoder struct {
	schema *Schema
	lookup ProductLookup
}

// NewEncoder はスキーマと商品ルックアップを注入してEncoderを生成します。
func NewEncoder(schema *Schema, lookup ProductLookup) *Encoder {
	return &Encoder{schema: schema, lookup: lookup}
}

// Schema returns the schema vectors are encoded against.
func (e *Encoder) Schema() *Schema { return e.schema }

// Encode リクエストをエンコード。商品ルックアップに失敗した場合は部分ベクトルを返さない
func (e *Encoder) Encode(req Request) (*Encoding, error) {
	cal, err := DecomposeDate(req.Date)
	if err != nil {
		return nil, err
	}

	info, ok := e.lookup.Lookup(req.ProductName)
	if !ok {
		return nil, &UnknownProductError{Product: req.ProductName}
	}

	return e.encode(cal, LabeledRecord{
		Date:              req.Date,
		ProductName:       req.ProductName,
		Brand:             info.Brand,
		CategoryType:      info.Category,
		PriceInr:          req.PriceInr,
		MarketingSpendInr: req.MarketingSpendInr,
		EventType:         req.EventType,
	}), nil
}

// EncodeRecord 学習用: ブランド・カテゴリが既に付与されたレコードをエンコード
func (e *Encoder) EncodeRecord(rec LabeledRecord) (*Encoding, error) {
	cal, err := DecomposeDate(rec.Date)
	if err != nil {
		return nil, err
	}
	return e.encode(cal, rec), nil
}

func (e *Encoder) encode(cal CalendarFields, rec LabeledRecord) *Encoding {
	vec := e.schema.ZeroVector()

	vec.Set(ColumnPrice, rec.PriceInr)
	vec.Set(ColumnMarketingSpend, rec.MarketingSpendInr)
	vec.Set(ColumnYear, float64(cal.Year))
	vec.Set(ColumnMonth, float64(cal.Month))
	vec.Set(ColumnDay, float64(cal.Day))
	vec.Set(ColumnDayOfWeek, float64(cal.DayOfWeek))

	var degraded []Axis
	for _, axis := range Axes() {
		value := rec.value(axis)
		// 未知の値はエラーにせず、その軸は全て0のまま
		if !e.schema.registry.Domain(axis).Contains(value) {
			degraded = append(degraded, axis)
			continue
		}
		if !vec.Set(OneHotColumn(axis, value), 1) {
			degraded = append(degraded, axis)
		}
	}

	return &Encoding{Vector: vec, DegradedAxes: degraded}
}
