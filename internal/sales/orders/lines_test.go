package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineEditorTotalLaw(t *testing.T) {
	e := NewLineEditor()
	assert.Equal(t, 1, e.Len())
	assert.Equal(t, BlankRow(), e.Rows()[0])

	e.SetProduct(0, 7, 10)
	e.SetQuantity(0, 2)
	e.Add()
	e.SetProduct(1, 9, 2.5)
	e.SetQuantity(1, 3)
	e.Add()
	e.SetUnitPrice(2, 4)

	sum := 0.0
	for i := range e.Rows() {
		sum += e.Subtotal(i)
	}
	assert.Equal(t, sum, e.Total())
	assert.Equal(t, 31.5, e.Total())
	assert.Equal(t, 27.5, e.ValidTotal())
	assert.Len(t, e.ValidLines(), 2)
}

func TestLineEditorKeepsOneRow(t *testing.T) {
	e := NewLineEditor(Row{Product: 1, Quantity: 1, UnitPrice: 3})
	e.Remove(0)
	assert.Equal(t, 1, e.Len())

	e.Add()
	e.Remove(5)
	assert.Equal(t, 2, e.Len())
	e.Remove(0)
	assert.Equal(t, []Row{BlankRow()}, e.Rows())
}

func TestSetProductOverwritesPrice(t *testing.T) {
	e := NewLineEditor(Row{Product: 1, Quantity: 2, UnitPrice: 99})
	e.SetProduct(0, 2, 12.5)
	assert.Equal(t, Row{Product: 2, Quantity: 2, UnitPrice: 12.5}, e.Rows()[0])
	assert.Equal(t, 25.0, e.Subtotal(0))
}

func TestRowSubtotalRoundsToCents(t *testing.T) {
	assert.Equal(t, 0.3, Row{Product: 1, Quantity: 3, UnitPrice: 0.1}.Subtotal())
	assert.False(t, Row{Product: 1, Quantity: 0}.Valid())
	assert.False(t, Row{Quantity: 1}.Valid())
}

func TestPreview(t *testing.T) {
	resp := Preview(PreviewRequest{Lines: []PreviewLine{
		{Producto: 1, Cantidad: 2, PrecioUnitario: 10},
		{Producto: 0, Cantidad: 1, PrecioUnitario: 4},
	}})
	assert.Equal(t, 20.0, resp.Total)
	assert.Equal(t, "20,00 €", resp.TotalLabel)
	assert.Equal(t, 1, resp.ValidLines)
	assert.Len(t, resp.Lines, 2)
	assert.True(t, resp.Lines[0].Valid)
	assert.Equal(t, "20,00 €", resp.Lines[0].SubtotalLabel)

	empty := Preview(PreviewRequest{})
	assert.Len(t, empty.Lines, 1)
	assert.Equal(t, 0.0, empty.Total)
}

func TestPreviewIgnoresRowWithoutProduct(t *testing.T) {
	lines := []PreviewLine{{Producto: 1, Cantidad: 2, PrecioUnitario: 10}}
	before := Preview(PreviewRequest{Lines: lines})

	lines = append(lines, PreviewLine{Cantidad: 1, PrecioUnitario: 5})
	after := Preview(PreviewRequest{Lines: lines})
	assert.Equal(t, before.Total, after.Total)
	assert.Equal(t, 5.0, after.Lines[1].Subtotal)
	assert.False(t, after.Lines[1].Valid)
}
