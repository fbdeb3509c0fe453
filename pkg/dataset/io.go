package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"shampoo-demand-api/pkg/models"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
)

// Header 学習データセットの列
var Header = []string{
	"Date", "Product_Name", "Brand", "Category_Type",
	"Price_INR", "Marketing_Spend_INR", "Event_Type", "Units_Sold",
}

// ErrUnsupportedFormat is returned for files that are neither .csv nor .xlsx.
var ErrUnsupportedFormat = errors.New("unsupported dataset format: use .csv or .xlsx")

var validate = validator.New(validator.WithRequiredStructEnabled())

// RowError 不正な行（1始まり、ヘッダー行を含む）
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Load 拡張子に応じてCSVまたはExcelのデータセットを読み込む
func Load(path string) ([]models.SalesRecord, error) {
	if !Supported(path) {
		return nil, ErrUnsupportedFormat
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Read(f, path)
}

// Supported reports whether name has a readable dataset extension.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// Read parses a dataset from r. name selects the format by extension.
func Read(r io.Reader, name string) ([]models.SalesRecord, error) {
	var rows [][]string
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		var err error
		rows, err = csv.NewReader(r).ReadAll()
		if err != nil {
			return nil, fmt.Errorf("parse csv %s: %w", name, err)
		}
	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		defer f.Close()
		rows, err = f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, fmt.Errorf("read sheet rows: %w", err)
		}
	default:
		return nil, ErrUnsupportedFormat
	}
	return ParseRows(rows)
}

// ParseRows converts a header row plus data rows into validated records.
func ParseRows(rows [][]string) ([]models.SalesRecord, error) {
	if len(rows) < 2 {
		return nil, errors.New("dataset needs a header row and at least one data row")
	}

	cols := make([]int, len(Header))
	var missing []string
	for i, name := range Header {
		cols[i] = findIndex(rows[0], name)
		if cols[i] == -1 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("dataset is missing columns: %s", strings.Join(missing, ", "))
	}

	records := make([]models.SalesRecord, 0, len(rows)-1)
	for n, row := range rows[1:] {
		rec, err := parseRow(row, cols)
		if err != nil {
			return nil, &RowError{Row: n + 2, Err: err}
		}
		if err := validate.Struct(rec); err != nil {
			return nil, &RowError{Row: n + 2, Err: err}
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string, cols []int) (models.SalesRecord, error) {
	cell := func(i int) string {
		if cols[i] < len(row) {
			return strings.TrimSpace(row[cols[i]])
		}
		return ""
	}
	price, err := strconv.ParseFloat(cell(4), 64)
	if err != nil {
		return models.SalesRecord{}, fmt.Errorf("Price_INR: %w", err)
	}
	spend, err := strconv.ParseFloat(cell(5), 64)
	if err != nil {
		return models.SalesRecord{}, fmt.Errorf("Marketing_Spend_INR: %w", err)
	}
	units, err := strconv.Atoi(cell(7))
	if err != nil {
		return models.SalesRecord{}, fmt.Errorf("Units_Sold: %w", err)
	}
	return models.SalesRecord{
		Date:              cell(0),
		ProductName:       cell(1),
		Brand:             cell(2),
		CategoryType:      cell(3),
		PriceInr:          price,
		MarketingSpendInr: spend,
		EventType:         cell(6),
		UnitsSold:         units,
	}, nil
}

// findIndex finds the index of the first candidate in a slice
func findIndex(slice []string, candidates ...string) int {
	for _, candidate := range candidates {
		for i, item := range slice {
			if strings.EqualFold(strings.TrimSpace(item), candidate) {
				return i
			}
		}
	}
	return -1
}

func toRow(r models.SalesRecord) []string {
	return []string{
		r.Date,
		r.ProductName,
		r.Brand,
		r.CategoryType,
		strconv.FormatFloat(r.PriceInr, 'f', -1, 64),
		strconv.FormatFloat(r.MarketingSpendInr, 'f', -1, 64),
		r.EventType,
		strconv.Itoa(r.UnitsSold),
	}
}

// WriteCSV writes records with the dataset header.
func WriteCSV(w io.Writer, records []models.SalesRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(toRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save 拡張子に応じてCSVまたはExcelで保存
func Save(path string, records []models.SalesRecord) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create dataset: %w", err)
		}
		if err := WriteCSV(f, records); err != nil {
			f.Close()
			return fmt.Errorf("write csv: %w", err)
		}
		return f.Close()
	case ".xlsx":
		return saveXLSX(path, records)
	default:
		return ErrUnsupportedFormat
	}
}

func saveXLSX(path string, records []models.SalesRecord) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.Date, r.ProductName, r.Brand, r.CategoryType,
			r.PriceInr, r.MarketingSpendInr, r.EventType, r.UnitsSold,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
