package orders

import "github.com/fabrica-erp/panel/internal/gateway"

// Row is one editable order line.
type Row struct {
	Product   int64
	Quantity  int
	UnitPrice float64
}

// Valid reports whether the row will be persisted.
func (r Row) Valid() bool {
	return r.Product > 0 && r.Quantity > 0
}

// Subtotal is quantity times unit price, rounded to cents.
func (r Row) Subtotal() float64 {
	return gateway.Round2(float64(r.Quantity) * r.UnitPrice)
}

// LineEditor edits the lines of an order form. It always holds at least one
// row.
type LineEditor struct {
	rows []Row
}

// BlankRow is the row added by Add: no product, quantity 1, price 0.
func BlankRow() Row {
	return Row{Quantity: 1}
}

// NewLineEditor starts an editor with rows, or with one blank row.
func NewLineEditor(rows ...Row) *LineEditor {
	e := &LineEditor{rows: append([]Row(nil), rows...)}
	if len(e.rows) == 0 {
		e.rows = []Row{BlankRow()}
	}
	return e
}

// Rows returns a copy of the rows.
func (e *LineEditor) Rows() []Row {
	return append([]Row(nil), e.rows...)
}

// Len is the number of rows.
func (e *LineEditor) Len() int {
	return len(e.rows)
}

// Add appends a blank row.
func (e *LineEditor) Add() {
	e.rows = append(e.rows, BlankRow())
}

// Remove deletes row i. Removing the only row, or an unknown index, does
// nothing.
func (e *LineEditor) Remove(i int) {
	if len(e.rows) <= 1 || i < 0 || i >= len(e.rows) {
		return
	}
	e.rows = append(e.rows[:i], e.rows[i+1:]...)
}

// SetProduct selects a product on row i and overwrites its unit price with
// the product's sale price, even if the price was edited before.
func (e *LineEditor) SetProduct(i int, product int64, salePrice float64) {
	if i < 0 || i >= len(e.rows) {
		return
	}
	e.rows[i].Product = product
	e.rows[i].UnitPrice = salePrice
}

// SetQuantity updates the quantity of row i.
func (e *LineEditor) SetQuantity(i, quantity int) {
	if i < 0 || i >= len(e.rows) {
		return
	}
	e.rows[i].Quantity = quantity
}

// SetUnitPrice updates the unit price of row i.
func (e *LineEditor) SetUnitPrice(i int, price float64) {
	if i < 0 || i >= len(e.rows) {
		return
	}
	e.rows[i].UnitPrice = price
}

// Subtotal of row i.
func (e *LineEditor) Subtotal(i int) float64 {
	if i < 0 || i >= len(e.rows) {
		return 0
	}
	return e.rows[i].Subtotal()
}

// Total is the sum of every row subtotal.
func (e *LineEditor) Total() float64 {
	total := 0.0
	for _, r := range e.rows {
		total += r.Subtotal()
	}
	return gateway.Round2(total)
}

// ValidLines returns the rows with a product and a positive quantity, the
// only ones sent to the API.
func (e *LineEditor) ValidLines() []Row {
	var out []Row
	for _, r := range e.rows {
		if r.Valid() {
			out = append(out, r)
		}
	}
	return out
}

// ValidTotal is the sum of the subtotals of ValidLines.
func (e *LineEditor) ValidTotal() float64 {
	total := 0.0
	for _, r := range e.ValidLines() {
		total += r.Subtotal()
	}
	return gateway.Round2(total)
}
