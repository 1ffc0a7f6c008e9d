package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type material struct {
	Codigo string
	Stock  float64
	Precio float64
	Alerta bool
}

func materialSheet() Sheet[material] {
	return Sheet[material]{
		Name:       "Materias Primas",
		FilePrefix: "MateriasPrimas",
		Columns: []Column[material]{
			{Header: "Código", Value: func(m material) any { return m.Codigo }},
			{Header: "Precio Unitario", Format: Money, Value: func(m material) any { return m.Precio }},
			{Header: "Valor Total", Format: Money, Value: func(m material) any { return m.Stock * m.Precio }},
			{Header: "Alerta Stock", Value: func(m material) any { return m.Alerta }},
		},
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, 3, 9, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, "Pedidos_2024-03-09.xlsx", Filename("Pedidos", at, "xlsx"))
}

func TestWriteXLSX(t *testing.T) {
	items := []material{{Codigo: "MP-1", Stock: 4, Precio: 2.5, Alerta: true}, {Codigo: "MP-2", Stock: 10, Precio: 1}}
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, materialSheet(), items))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Materias Primas"}, f.GetSheetList())
	rows, err := f.GetRows("Materias Primas", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Código", "Precio Unitario", "Valor Total", "Alerta Stock"}, rows[0])
	assert.Equal(t, "MP-1", rows[1][0])
	assert.Equal(t, "10", rows[1][2])
	assert.Equal(t, "SÍ", rows[1][3])
	assert.Equal(t, "NO", rows[2][3])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, materialSheet(), []material{{Codigo: "MP-1", Stock: 3, Precio: 1.5}}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Código,Precio Unitario,Valor Total,Alerta Stock", lines[0])
	assert.Equal(t, "MP-1,1.50€,4.50€,NO", lines[1])
}
