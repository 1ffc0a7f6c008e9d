package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const defaultColumnWidth = 15

// moneyFormat renders amounts as 1.234,50 €.
const moneyFormat = `#,##0.00 "€"`

// WriteXLSX writes items as a single-sheet workbook named after the entity.
func WriteXLSX[T any](w io.Writer, sheet Sheet[T], items []T) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	name := sheet.Name
	if name == "" {
		name = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}

	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(moneyFormat)})
	if err != nil {
		return fmt.Errorf("export: money style: %w", err)
	}

	for i, col := range sheet.Columns {
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, colName+"1", col.Header); err != nil {
			return err
		}
		width := col.Width
		if width <= 0 {
			width = defaultColumnWidth
		}
		if err := f.SetColWidth(name, colName, colName, width); err != nil {
			return err
		}
	}

	for r, item := range items {
		row := r + 2
		for i, col := range sheet.Columns {
			colName, _ := excelize.ColumnNumberToName(i + 1)
			cell := fmt.Sprintf("%s%d", colName, row)
			value := col.Value(item)
			if b, ok := value.(bool); ok {
				value = text(b, col.Format)
			}
			if err := f.SetCellValue(name, cell, value); err != nil {
				return err
			}
			if col.Format == Money {
				if err := f.SetCellStyle(name, cell, cell, moneyStyle); err != nil {
					return err
				}
			}
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err == nil {
		_ = f.SetRowStyle(name, 1, 1, headerStyle)
	}

	if len(sheet.Columns) > 0 {
		lastCol, _ := excelize.ColumnNumberToName(len(sheet.Columns))
		ref := fmt.Sprintf("A1:%s%d", lastCol, len(items)+1)
		if err := f.AutoFilter(name, ref, []excelize.AutoFilterOptions{}); err != nil {
			return fmt.Errorf("export: auto filter: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func strPtr(s string) *string {
	return &s
}
