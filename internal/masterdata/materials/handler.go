package materials

import (
	"strconv"

	"github.com/fabrica-erp/panel/internal/export"
	"github.com/fabrica-erp/panel/internal/masterdata/products"
	"github.com/fabrica-erp/panel/internal/resource"
	"github.com/fabrica-erp/panel/internal/view"
)

// Config describes the raw material pages.
func Config() resource.Config[Material] {
	return resource.Config[Material]{
		Title:             "Materias Primas",
		Singular:          "materia prima",
		Path:              "/materias-primas",
		NewLabel:          "Nueva Materia Prima",
		SearchPlaceholder: "Buscar por código, nombre, proveedor o descripción...",
		Descriptor:        Descriptor(),
		Store:             Store,
		Label:             func(m Material) string { return "la materia prima " + m.Codigo + " - " + m.Nombre },
		Columns: []resource.Column[Material]{
			{Label: "Código", Value: func(m Material) string { return m.Codigo }},
			{Label: "Nombre", Value: func(m Material) string { return m.Nombre }},
			{Label: "Stock Actual", Value: stockActual, Align: "right"},
			{Label: "Stock Mínimo", Value: stockMinimo, Align: "right"},
			{Label: "Estado", Value: alertLabel, Badge: alertTone},
			{Label: "Precio Unit.", Value: func(m Material) string { return view.Money(m.PrecioUnitario.Float()) }, Align: "right"},
			{Label: "Proveedor", Value: func(m Material) string { return orDash(m.Proveedor) }},
		},
		Details: []resource.Column[Material]{
			{Label: "Código", Value: func(m Material) string { return m.Codigo }},
			{Label: "Nombre", Value: func(m Material) string { return m.Nombre }},
			{Label: "Descripción", Value: func(m Material) string { return orDash(m.Descripcion) }},
			{Label: "Stock Actual", Value: stockActual},
			{Label: "Stock Mínimo", Value: stockMinimo},
			{Label: "Unidad", Value: func(m Material) string { return UnitName(m.Unidad) }},
			{Label: "Precio Unitario", Value: func(m Material) string { return view.Money(m.PrecioUnitario.Float()) }},
			{Label: "Valor Total Stock", Value: func(m Material) string { return view.Money(m.StockValue()) }},
			{Label: "Proveedor", Value: func(m Material) string { return orDash(m.Proveedor) }},
			{Label: "Estado", Value: alertLabel, Badge: alertTone},
		},
		Fields: []resource.Field{
			{Name: "codigo", Label: "Código", Kind: resource.FieldText, Required: true},
			{Name: "nombre", Label: "Nombre", Kind: resource.FieldText, Required: true},
			{Name: "descripcion", Label: "Descripción", Kind: resource.FieldTextarea, Wide: true},
			{Name: "stock_actual", Label: "Stock Actual", Kind: resource.FieldNumber, Step: "0.01", Min: "0"},
			{Name: "stock_minimo", Label: "Stock Mínimo", Kind: resource.FieldNumber, Step: "0.01", Min: "0"},
			{Name: "unidad", Label: "Unidad", Kind: resource.FieldSelect, Options: unitOptions(false), Required: true},
			{Name: "precio_unitario", Label: "Precio Unitario (€)", Kind: resource.FieldNumber, Step: "0.01", Min: "0", Required: true},
			{Name: "proveedor", Label: "Proveedor", Kind: resource.FieldText},
		},
		Filters: []resource.FilterField{
			{Name: "alerta_stock", Label: "Alerta de stock", Options: products.AlertOptions},
			{Name: "unidad", Label: "Unidad", Options: unitOptions(true)},
		},
		Summary: Summary,
		Sheet:   Sheet(),
	}
}

// NewHandler builds the raw material page handler.
func NewHandler(base *resource.Base) *resource.Handler[Material] {
	return resource.NewHandler(base, Config())
}

func unitOptions(withAll bool) []resource.Option {
	var out []resource.Option
	if withAll {
		out = append(out, resource.Option{Value: "", Label: "Todas"})
	}
	for _, u := range Units {
		out = append(out, resource.Option{Value: u, Label: UnitName(u)})
	}
	return out
}

// Summary reports totals, alerts, distinct suppliers and stock value.
func Summary(items []Material) []resource.Card {
	alerts := 0
	value := 0.0
	suppliers := map[string]struct{}{}
	for _, m := range items {
		if m.AlertaStock {
			alerts++
		}
		if m.Proveedor != "" {
			suppliers[m.Proveedor] = struct{}{}
		}
		value += m.StockValue()
	}
	return []resource.Card{
		{Label: "Total Materias", Value: strconv.Itoa(len(items)), Tone: resource.ToneInfo},
		{Label: "Alertas de Stock", Value: strconv.Itoa(alerts), Tone: resource.ToneDanger},
		{Label: "Proveedores Únicos", Value: strconv.Itoa(len(suppliers)), Tone: resource.ToneMuted},
		{Label: "Valor Total Stock", Value: view.Money(value), Tone: resource.ToneOK},
	}
}

// Sheet is the raw material export layout.
func Sheet() export.Sheet[Material] {
	return export.Sheet[Material]{
		Name:       "Materias Primas",
		FilePrefix: "MateriasPrimas",
		Columns: []export.Column[Material]{
			{Header: "Código", Width: 12, Value: func(m Material) any { return m.Codigo }},
			{Header: "Nombre", Width: 30, Value: func(m Material) any { return m.Nombre }},
			{Header: "Descripción", Width: 40, Value: func(m Material) any { return m.Descripcion }},
			{Header: "Stock Actual", Width: 15, Value: func(m Material) any { return stockActual(m) }},
			{Header: "Stock Mínimo", Width: 15, Value: func(m Material) any { return stockMinimo(m) }},
			{Header: "Proveedor", Width: 25, Value: func(m Material) any { return m.Proveedor }},
			{Header: "Precio Unitario", Width: 15, Format: export.Money, Value: func(m Material) any { return m.PrecioUnitario.Float() }},
			{Header: "Valor Total", Width: 15, Format: export.Money, Value: func(m Material) any { return m.StockValue() }},
			{Header: "Alerta Stock", Width: 12, Value: func(m Material) any { return m.AlertaStock }},
		},
	}
}

func stockActual(m Material) string {
	return view.Number(m.StockActual.Float()) + " " + UnitShort(m.Unidad)
}

func stockMinimo(m Material) string {
	return view.Number(m.StockMinimo.Float()) + " " + UnitShort(m.Unidad)
}

func alertLabel(m Material) string {
	if m.AlertaStock {
		return "Stock Bajo"
	}
	return "Normal"
}

func alertTone(m Material) string {
	if m.AlertaStock {
		return resource.ToneDanger
	}
	return resource.ToneOK
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
