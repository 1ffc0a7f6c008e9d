package materials

import (
	"github.com/fabrica-erp/panel/internal/forms"
	"github.com/fabrica-erp/panel/internal/listing"
)

// Rules validate the raw material form.
var Rules = forms.Rules{
	"codigo":          {forms.Required("El código es obligatorio")},
	"nombre":          {forms.Required("El nombre es obligatorio")},
	"stock_actual":    {forms.NonNegative("El stock no puede ser negativo")},
	"stock_minimo":    {forms.NonNegative("El stock mínimo no puede ser negativo")},
	"unidad":          {forms.Required("La unidad es obligatoria"), forms.OneOf("La unidad no es válida", Units...)},
	"precio_unitario": {forms.Required("El precio debe ser mayor a 0"), forms.Positive("El precio debe ser mayor a 0")},
}

// Descriptor configures the raw material list controller.
func Descriptor() listing.Descriptor[Material] {
	return listing.Descriptor[Material]{
		Name: "materias-primas",
		Searchable: func(m Material) []string {
			return []string{m.Codigo, m.Nombre, m.Proveedor, m.Descripcion}
		},
		Filters: map[string]listing.FilterFunc[Material]{
			"alerta_stock": listing.Flag(func(m Material) bool { return m.AlertaStock }),
			"unidad":       listing.Equals(func(m Material) string { return m.Unidad }),
		},
		Rules:    Rules,
		Defaults: Defaults,
		ToForm:   ToForm,
		Payload:  PayloadFromForm,
		ID:       func(m Material) int64 { return m.ID },
		Messages: listing.Messages{
			Created:      "Materia prima creada exitosamente",
			Updated:      "Materia prima actualizada exitosamente",
			Deleted:      "Materia prima eliminada exitosamente",
			SaveFailed:   "Error al guardar la materia prima. Verifica que el código no esté duplicado.",
			DeleteFailed: "Error al eliminar la materia prima",
			LoadFailed:   "Error al cargar las materias primas",
		},
	}
}
