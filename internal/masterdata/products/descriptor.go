package products

import (
	"github.com/fabrica-erp/panel/internal/forms"
	"github.com/fabrica-erp/panel/internal/listing"
)

// Rules validate the product form.
var Rules = forms.Rules{
	"codigo":             {forms.Required("El código es obligatorio")},
	"nombre":             {forms.Required("El nombre es obligatorio")},
	"stock_actual":       {forms.NonNegative("El stock no puede ser negativo")},
	"stock_minimo":       {forms.NonNegative("El stock mínimo no puede ser negativo")},
	"precio_venta":       {forms.Required("El precio debe ser mayor a 0"), forms.Positive("El precio debe ser mayor a 0")},
	"tiempo_fabricacion": {forms.NonNegative("El tiempo no puede ser negativo")},
}

// Descriptor configures the product list controller.
func Descriptor() listing.Descriptor[Product] {
	return listing.Descriptor[Product]{
		Name: "productos",
		Searchable: func(p Product) []string {
			return []string{p.Codigo, p.Nombre, p.Descripcion}
		},
		Filters: map[string]listing.FilterFunc[Product]{
			"alerta_stock": listing.Flag(func(p Product) bool { return p.AlertaStock }),
		},
		Rules:    Rules,
		Defaults: Defaults,
		ToForm:   ToForm,
		Payload:  PayloadFromForm,
		ID:       func(p Product) int64 { return p.ID },
		Messages: listing.Messages{
			Created:      "Producto creado exitosamente",
			Updated:      "Producto actualizado exitosamente",
			Deleted:      "Producto eliminado exitosamente",
			SaveFailed:   "Error al guardar el producto. Verifica que el código no esté duplicado.",
			DeleteFailed: "Error al eliminar el producto",
			LoadFailed:   "Error al cargar los productos",
		},
	}
}
