package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"shampoo-demand-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestIndianEventFactor(t *testing.T) {
	tests := []struct {
		date string
		name string
		mult float64
		sale bool
	}{
		{"2024-01-25", EventNationalSale, 2.5, true},
		{"2024-08-15", EventNationalSale, 2.5, true},
		{"2024-10-02", EventNationalSale, 2.5, true},
		{"2024-03-25", EventHoli, 1.2, false},
		{"2024-08-19", EventRakshaBandhan, 1.3, false},
		{"2024-10-30", EventDiwali, 1.5, true},
		{"2024-11-01", EventDiwali, 1.5, true},
		{"2024-11-02", EventWeddingSeason, 1.15, false},
		{"2024-06-10", EventWeddingSeason, 1.15, false},
		{"2024-07-10", EventNormalDay, 1.0, false},
	}
	for _, tt := range tests {
		got := IndianEventFactor(day(tt.date))
		assert.Equal(t, tt.name, got.Name, tt.date)
		assert.Equal(t, tt.mult, got.Multiplier, tt.date)
		assert.Equal(t, tt.sale, got.IsSale, tt.date)
	}
}

func TestSeasonalFactor(t *testing.T) {
	assert.Equal(t, 1.6, SeasonalFactor(day("2024-04-01"), "Summer"))
	assert.Equal(t, 1.1, SeasonalFactor(day("2024-04-01"), "General"))
	assert.Equal(t, 1.5, SeasonalFactor(day("2024-08-01"), "Monsoon"))
	assert.Equal(t, 0.9, SeasonalFactor(day("2024-08-01"), "Beauty"))
	assert.Equal(t, 0.4, SeasonalFactor(day("2024-12-01"), "Summer"))
	assert.Equal(t, 1.1, SeasonalFactor(day("2024-12-01"), "Herbal"))
	assert.Equal(t, 1.0, SeasonalFactor(day("2024-08-01"), "Herbal"))
}

func TestGenerate(t *testing.T) {
	catalog := DefaultCatalog()
	cfg := DefaultGeneratorConfig()
	cfg.Days = 60

	records := Generate(catalog, cfg)
	require.Len(t, records, 10*60)

	for _, r := range records {
		assert.GreaterOrEqual(t, r.UnitsSold, 0)
		assert.GreaterOrEqual(t, r.MarketingSpendInr, 1000.0)
		p, ok := catalog.Get(r.ProductName)
		require.True(t, ok)
		assert.Equal(t, p.Brand, r.Brand)
		assert.NoError(t, validate.Struct(r))
	}

	// セール期間は15%引き・広告費2倍
	for _, r := range records {
		if r.Date == "2024-01-25" && r.ProductName == "H&S Cool Menthol (650ml)" {
			assert.Equal(t, 467.0, r.PriceInr)
			assert.Equal(t, EventNationalSale, r.EventType)
			assert.GreaterOrEqual(t, r.MarketingSpendInr, 2000.0)
		}
	}

	again := Generate(catalog, cfg)
	assert.Equal(t, records, again)
}

func TestCatalog(t *testing.T) {
	c := DefaultCatalog()
	assert.Len(t, c.Products(), 10)

	info, ok := c.Lookup().Lookup("H&S Cool Menthol (650ml)")
	require.True(t, ok)
	assert.Equal(t, "Head & Shoulders", info.Brand)
	assert.Equal(t, "Summer", info.Category)

	_, err := NewCatalog(nil)
	assert.Error(t, err)
	_, err = NewCatalog([]models.Product{{Name: "A", Brand: "B", Category: "C"}, {Name: "A", Brand: "B", Category: "C"}})
	assert.Error(t, err)
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"Dove Daily Shine (340ml)","brand":"Dove","category":"Beauty","base_price":300,"base_demand":90}]`), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dove Daily Shine (340ml)"}, c.Names())

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestCSVRoundTrip(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.Days = 5
	records := Generate(DefaultCatalog(), cfg)

	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, Save(path, records))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestXLSXRoundTrip(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.Days = 3
	records := Generate(DefaultCatalog(), cfg)

	path := filepath.Join(t.TempDir(), "sales.xlsx")
	require.NoError(t, Save(path, records))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestParseRowsErrors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Contains(t, buf.String(), "Units_Sold")

	_, err := ParseRows([][]string{Header})
	assert.Error(t, err)

	_, err = ParseRows([][]string{{"Date", "Product_Name"}, {"2024-01-01", "x"}})
	assert.ErrorContains(t, err, "missing columns")

	_, err = ParseRows([][]string{Header, {"2024-01-01", "P", "B", "C", "abc", "1", "E", "1"}})
	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 2, rowErr.Row)

	_, err = ParseRows([][]string{Header, {"01/02/2024", "P", "B", "C", "1", "1", "E", "1"}})
	assert.ErrorAs(t, err, &rowErr)

	_, err = ParseRows([][]string{Header, {"2024-01-01", "P", "B", "C", "1", "1", "E", "-3"}})
	assert.ErrorAs(t, err, &rowErr)

	_, err = Load(filepath.Join(t.TempDir(), "sales.parquet"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestToLabeled(t *testing.T) {
	recs := []models.SalesRecord{{Date: "2024-01-01", ProductName: "P", Brand: "B", CategoryType: "C", PriceInr: 1, MarketingSpendInr: 2, EventType: "E", UnitsSold: 3}}
	out := ToLabeled(recs)
	require.Len(t, out, 1)
	assert.Equal(t, "C", out[0].CategoryType)
	assert.Equal(t, 2.0, out[0].MarketingSpendInr)
}
