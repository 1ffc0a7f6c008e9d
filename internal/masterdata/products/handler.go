package products

import (
	"strconv"

	"github.com/fabrica-erp/panel/internal/export"
	"github.com/fabrica-erp/panel/internal/resource"
	"github.com/fabrica-erp/panel/internal/view"
)

// Config describes the product pages.
func Config() resource.Config[Product] {
	return resource.Config[Product]{
		Title:             "Productos",
		Singular:          "producto",
		Path:              "/productos",
		NewLabel:          "Nuevo Producto",
		SearchPlaceholder: "Buscar por código, nombre o descripción...",
		Descriptor:        Descriptor(),
		Store:             Store,
		Label:             func(p Product) string { return "el producto " + p.Label() },
		Columns: []resource.Column[Product]{
			{Label: "Código", Value: func(p Product) string { return p.Codigo }},
			{Label: "Nombre", Value: func(p Product) string { return p.Nombre }},
			{Label: "Stock Actual", Value: func(p Product) string { return strconv.Itoa(p.StockActual) }, Align: "right"},
			{Label: "Stock Mínimo", Value: func(p Product) string { return strconv.Itoa(p.StockMinimo) }, Align: "right"},
			{Label: "Estado", Value: alertLabel, Badge: alertTone},
			{Label: "Precio Venta", Value: func(p Product) string { return view.Money(p.PrecioVenta.Float()) }, Align: "right"},
			{Label: "Tiempo Fab.", Value: hours, Align: "right"},
		},
		Details: []resource.Column[Product]{
			{Label: "Código", Value: func(p Product) string { return p.Codigo }},
			{Label: "Nombre", Value: func(p Product) string { return p.Nombre }},
			{Label: "Descripción", Value: func(p Product) string { return orDash(p.Descripcion) }},
			{Label: "Stock Actual", Value: func(p Product) string { return strconv.Itoa(p.StockActual) }},
			{Label: "Stock Mínimo", Value: func(p Product) string { return strconv.Itoa(p.StockMinimo) }},
			{Label: "Precio Venta", Value: func(p Product) string { return view.Money(p.PrecioVenta.Float()) }},
			{Label: "Tiempo de Fabricación", Value: hours},
			{Label: "Estado", Value: alertLabel, Badge: alertTone},
		},
		Fields: []resource.Field{
			{Name: "codigo", Label: "Código", Kind: resource.FieldText, Required: true},
			{Name: "nombre", Label: "Nombre", Kind: resource.FieldText, Required: true},
			{Name: "descripcion", Label: "Descripción", Kind: resource.FieldTextarea, Wide: true},
			{Name: "stock_actual", Label: "Stock Actual", Kind: resource.FieldNumber, Step: "1", Min: "0"},
			{Name: "stock_minimo", Label: "Stock Mínimo", Kind: resource.FieldNumber, Step: "1", Min: "0"},
			{Name: "precio_venta", Label: "Precio Venta (€)", Kind: resource.FieldNumber, Step: "0.01", Min: "0", Required: true},
			{Name: "tiempo_fabricacion", Label: "Tiempo de Fabricación (horas)", Kind: resource.FieldNumber, Step: "1", Min: "0"},
		},
		Filters: []resource.FilterField{
			{Name: "alerta_stock", Label: "Alerta de stock", Options: AlertOptions},
		},
		Summary: Summary,
		Sheet:   Sheet(),
	}
}

// AlertOptions are the low-stock filter choices shared with raw materials.
var AlertOptions = []resource.Option{
	{Value: "", Label: "Todos"},
	{Value: "true", Label: "Con Alerta"},
	{Value: "false", Label: "Sin Alerta"},
}

// NewHandler builds the product page handler.
func NewHandler(base *resource.Base) *resource.Handler[Product] {
	return resource.NewHandler(base, Config())
}

// Summary counts products, units in stock and low-stock alerts.
func Summary(items []Product) []resource.Card {
	units, alerts := 0, 0
	for _, p := range items {
		units += p.StockActual
		if p.AlertaStock {
			alerts++
		}
	}
	return []resource.Card{
		{Label: "Total Productos", Value: strconv.Itoa(len(items)), Tone: resource.ToneInfo},
		{Label: "Stock Total", Value: view.Number(float64(units)), Tone: resource.ToneOK},
		{Label: "Alertas de Stock", Value: strconv.Itoa(alerts), Tone: resource.ToneDanger},
	}
}

// Sheet is the product export layout.
func Sheet() export.Sheet[Product] {
	return export.Sheet[Product]{
		Name:       "Productos",
		FilePrefix: "Productos",
		Columns: []export.Column[Product]{
			{Header: "Código", Width: 12, Value: func(p Product) any { return p.Codigo }},
			{Header: "Nombre", Width: 30, Value: func(p Product) any { return p.Nombre }},
			{Header: "Descripción", Width: 40, Value: func(p Product) any { return p.Descripcion }},
			{Header: "Stock Actual", Width: 12, Value: func(p Product) any { return p.StockActual }},
			{Header: "Stock Mínimo", Width: 12, Value: func(p Product) any { return p.StockMinimo }},
			{Header: "Precio Venta", Width: 14, Format: export.Money, Value: func(p Product) any { return p.PrecioVenta.Float() }},
			{Header: "Tiempo Fabricación", Width: 18, Value: func(p Product) any { return strconv.Itoa(p.TiempoFabricacion) + "h" }},
			{Header: "Alerta Stock", Width: 12, Value: func(p Product) any { return p.AlertaStock }},
		},
	}
}

func alertLabel(p Product) string {
	if p.AlertaStock {
		return "Stock Bajo"
	}
	return "Normal"
}

func alertTone(p Product) string {
	if p.AlertaStock {
		return resource.ToneDanger
	}
	return resource.ToneOK
}

func hours(p Product) string {
	return strconv.Itoa(p.TiempoFabricacion) + " h"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
