// Package export writes filtered list views to spreadsheets.
package export

import (
	"fmt"
	"strconv"
	"time"
)

// Format controls how a column value is written.
type Format int

const (
	Plain Format = iota
	Money
)

// Column is one spreadsheet column.
type Column[T any] struct {
	Header string
	Width  float64
	Format Format
	Value  func(T) any
}

// Sheet describes the export of one entity.
type Sheet[T any] struct {
	Name       string
	FilePrefix string
	Columns    []Column[T]
}

// Filename returns <prefix>_<YYYY-MM-DD>.<ext>.
func Filename(prefix string, at time.Time, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, at.Format("2006-01-02"), ext)
}

// Headers lists the column headers.
func (s Sheet[T]) Headers() []string {
	out := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		out[i] = col.Header
	}
	return out
}

// Row evaluates every column for item.
func (s Sheet[T]) Row(item T) []any {
	out := make([]any, len(s.Columns))
	for i, col := range s.Columns {
		out[i] = col.Value(item)
	}
	return out
}

// text renders a cell value for plain-text outputs.
func text(v any, format Format) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if format == Money {
			return strconv.FormatFloat(val, 'f', 2, 64) + "€"
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		if val {
			return "SÍ"
		}
		return "NO"
	default:
		return fmt.Sprint(val)
	}
}
