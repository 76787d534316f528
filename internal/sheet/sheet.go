// Package sheet reads and writes menu spreadsheets in the export layout.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/erazemk/jedilnik/internal/menu"
	"github.com/erazemk/jedilnik/internal/model"
)

// SheetName is the worksheet exports are written to.
const SheetName = "Menu Items"

// ContentType is the MIME type of written workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrMissingColumn is returned when an imported sheet lacks a required header.
var ErrMissingColumn = errors.New("missing column")

// columnWidths matches menu.ExportColumns.
var columnWidths = []float64{25, 30, 12, 20, 10, 40, 12}

// WriteMenu writes rows as a single-sheet workbook to w.
func WriteMenu(w io.Writer, rows []menu.ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	if err := setRow(f, 1, menu.ExportColumns); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, i+2, row.Values()); err != nil {
			return err
		}
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("setting column width: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
		return fmt.Errorf("writing row %d: %w", n, err)
	}
	return nil
}

// ExportFilename returns the download name for a restaurant's export.
func ExportFilename(restaurant string, date time.Time) string {
	name := strings.Join(strings.Fields(strings.ToLower(restaurant)), "-")
	if name == "" {
		name = "restaurant"
	}
	return fmt.Sprintf("%s-menu-%s.xlsx", name, date.Format(time.DateOnly))
}

// RowError describes a sheet row that could not be imported. Row is the
// 1-based spreadsheet row number.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Result is the outcome of reading a sheet: the rows that parsed and the
// ones that did not.
type Result struct {
	Items  []model.MenuItem
	Errors []RowError
}

// ReadMenu parses a workbook in the export layout. Headers are matched case
// insensitively and may appear in any order; only Name is required. Blank
// rows are skipped.
func ReadMenu(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheet := SheetName
	if idx, _ := f.GetSheetIndex(SheetName); idx < 0 {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: Name", ErrMissingColumn)
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	if _, ok := cols["name"]; !ok {
		return nil, fmt.Errorf("%w: Name", ErrMissingColumn)
	}

	res := &Result{}
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		item, err := parseRow(cols, row)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: i + 2, Err: err})
			continue
		}
		res.Items = append(res.Items, item)
	}
	return res, nil
}

func parseRow(cols map[string]int, row []string) (model.MenuItem, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	item := model.MenuItem{
		Name:        menu.Truncate(get("name")),
		Description: menu.Truncate(get("description")),
		Price:       model.Price(menu.Truncate(get("price"))),
		Category:    menu.Truncate(get("category")),
		Image:       menu.Truncate(get("image")),
	}
	if item.Name == "" {
		return item, errors.New("name is required")
	}

	var err error
	if item.IsVeg, err = parseBool(get("isveg"), false); err != nil {
		return item, fmt.Errorf("IsVeg: %w", err)
	}
	if item.IsAvailable, err = parseBool(get("isavailable"), true); err != nil {
		return item, fmt.Errorf("IsAvailable: %w", err)
	}
	return item, nil
}

func parseBool(s string, def bool) (bool, error) {
	switch strings.ToLower(s) {
	case "":
		return def, nil
	case "true", "yes", "y", "1":
		return true, nil
	case "false", "no", "n", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
