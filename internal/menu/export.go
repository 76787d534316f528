package menu

import (
	"unicode/utf16"

	"github.com/erazemk/jedilnik/internal/model"
)

// MaxCellLength keeps exported text under the spreadsheet cell limit.
const MaxCellLength = 32000

// ExportColumns is the header row shared by export and bulk import.
var ExportColumns = []string{"Name", "Description", "Price", "Category", "IsVeg", "Image", "IsAvailable"}

// ExportRow is one spreadsheet row.
type ExportRow struct {
	Name        string
	Description string
	Price       string
	Category    string
	IsVeg       string
	Image       string
	IsAvailable string
}

// Values returns the row in ExportColumns order.
func (r ExportRow) Values() []string {
	return []string{r.Name, r.Description, r.Price, r.Category, r.IsVeg, r.Image, r.IsAvailable}
}

// ExportRows converts items to spreadsheet rows.
func ExportRows(items []model.MenuItem) []ExportRow {
	rows := make([]ExportRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, ExportRow{
			Name:        Truncate(item.Name),
			Description: Truncate(item.Description),
			Price:       Truncate(item.Price.String()),
			Category:    Truncate(item.Category),
			IsVeg:       boolCell(item.IsVeg),
			Image:       Truncate(item.Image),
			IsAvailable: boolCell(item.IsAvailable),
		})
	}
	return rows
}

// Truncate cuts s to MaxCellLength UTF-16 code units, the unit spreadsheet
// cell limits are counted in. A surrogate pair is never split.
func Truncate(s string) string {
	units := 0
	for i, r := range s {
		n := utf16.RuneLen(r)
		if n < 0 {
			// Invalid runes are written as U+FFFD.
			n = 1
		}
		if units+n > MaxCellLength {
			return s[:i]
		}
		units += n
	}
	return s
}

func boolCell(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
