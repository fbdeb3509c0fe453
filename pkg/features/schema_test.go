package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSchemaOrder(t *testing.T) {
	schema := BuildSchema(RegistryFromRecords(testRecords()))

	want := []string{
		"Price_INR", "Marketing_Spend_INR", "Year", "Month", "Day", "DayofWeek",
		"Product_Name_Clinic Plus Ayurveda (340ml)",
		"Product_Name_Clinic Plus Strong & Long (650ml)",
		"Product_Name_H&S Anti-Hairfall (340ml)",
		"Product_Name_H&S Cool Menthol (650ml)",
		"Brand_Clinic Plus", "Brand_Head & Shoulders",
		"Category_Type_General", "Category_Type_Herbal", "Category_Type_Monsoon", "Category_Type_Summer",
		"Event_Type_Holi", "Event_Type_National Sale", "Event_Type_Normal Day", "Event_Type_Wedding Season",
	}
	assert.Equal(t, want, schema.Columns())
}

func TestZeroVector(t *testing.T) {
	schema := BuildSchema(RegistryFromRecords(testRecords()))
	vec := schema.ZeroVector()

	m := vec.Map()
	assert.Len(t, m, schema.Len())
	for col, v := range m {
		assert.Zero(t, v, col)
	}
	assert.False(t, vec.Set("Not_A_Column", 1))
	assert.Len(t, vec.Map(), schema.Len())
}

func TestLoadSchemaRoundTrip(t *testing.T) {
	registry := RegistryFromRecords(testRecords())
	built := BuildSchema(registry)

	loaded, err := LoadSchema(built.Columns(), registry.Snapshot())
	require.NoError(t, err)

	assert.True(t, built.Equal(loaded))
	assert.Equal(t, built.Fingerprint(), loaded.Fingerprint())
}

func TestLoadSchemaKeepsPersistedOrder(t *testing.T) {
	registry := RegistryFromRecords(testRecords())
	cols := BuildSchema(registry).Columns()
	// 永続化された順序はそのまま使い、再生成しない
	cols[0], cols[1] = cols[1], cols[0]

	loaded, err := LoadSchema(cols, registry.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, cols, loaded.Columns())
	assert.NotEqual(t, BuildSchema(registry).Fingerprint(), loaded.Fingerprint())
}

func TestLoadSchemaRejectsInconsistentColumns(t *testing.T) {
	registry := RegistryFromRecords(testRecords())
	good := BuildSchema(registry).Columns()

	tests := []struct {
		name    string
		columns []string
	}{
		{"empty", nil},
		{"duplicate", append(append([]string{}, good...), good[len(good)-1])},
		{"missing passthrough", good[1:]},
		{"foreign column", append(append([]string{}, good...), "Colour_Red")},
		{"value outside domain", append(append([]string{}, good...), "Brand_Dove")},
		{"missing one-hot", good[:len(good)-1]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSchema(tt.columns, registry.Snapshot())
			assert.Error(t, err)
		})
	}
}

func TestCategoricalDomain(t *testing.T) {
	d := NewCategoricalDomain(AxisBrand, []string{"b", "a", "b"})

	assert.Equal(t, []string{"a", "b"}, d.Values())
	assert.True(t, d.Contains("a"))
	assert.False(t, d.Contains("c"))
	assert.Equal(t, AxisBrand, d.Axis())

	vals := d.Values()
	vals[0] = "mutated"
	assert.True(t, d.Contains("a"))
}

func TestDayOfWeekMondayZero(t *testing.T) {
	tests := map[string]int{
		"2024-03-25": 0, // Monday
		"2024-10-02": 2, // Wednesday
		"2024-03-30": 5, // Saturday
		"2024-03-31": 6, // Sunday
	}
	for date, want := range tests {
		d, err := time.Parse(DateLayout, date)
		require.NoError(t, err)
		assert.Equal(t, want, DayOfWeek(d), date)
	}
}

func TestDecomposeDate(t *testing.T) {
	cal, err := DecomposeDate("2024-03-25")
	require.NoError(t, err)
	assert.Equal(t, CalendarFields{Year: 2024, Month: 3, Day: 25, DayOfWeek: 0}, cal)

	_, err = DecomposeDate("2024-13-01")
	var mde *MalformedDateError
	assert.ErrorAs(t, err, &mde)
}
