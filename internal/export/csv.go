package export

import (
	"encoding/csv"
	"io"
)

// WriteCSV writes items as CSV with the same columns as the workbook.
func WriteCSV[T any](w io.Writer, sheet Sheet[T], items []T) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(sheet.Headers()); err != nil {
		return err
	}
	for _, item := range items {
		record := make([]string, len(sheet.Columns))
		for i, col := range sheet.Columns {
			record[i] = text(col.Value(item), col.Format)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
