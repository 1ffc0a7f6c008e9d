package customers

import (
	"github.com/fabrica-erp/panel/internal/forms"
	"github.com/fabrica-erp/panel/internal/listing"
)

// Rules validate the customer form.
var Rules = forms.Rules{
	"nombre":   {forms.Required("El nombre es obligatorio")},
	"contacto": {forms.Required("El contacto es obligatorio")},
	"email": {
		forms.Required("El email es obligatorio"),
		forms.Email("El email no es válido"),
	},
	"telefono": {forms.Required("El teléfono es obligatorio")},
	"nif_cif":  {forms.Required("El NIF/CIF es obligatorio")},
}

// Descriptor configures the customer list controller.
func Descriptor() listing.Descriptor[Customer] {
	return listing.Descriptor[Customer]{
		Name: "clientes",
		Searchable: func(c Customer) []string {
			return []string{c.Nombre, c.Contacto, c.Email, c.NIFCIF}
		},
		Filters: map[string]listing.FilterFunc[Customer]{
			"activo": listing.Flag(func(c Customer) bool { return c.Activo }),
		},
		Rules:    Rules,
		Defaults: Defaults,
		ToForm:   ToForm,
		Payload:  PayloadFromForm,
		ID:       func(c Customer) int64 { return c.ID },
		Messages: listing.Messages{
			Created:      "Cliente creado exitosamente",
			Updated:      "Cliente actualizado exitosamente",
			Deleted:      "Cliente eliminado exitosamente",
			SaveFailed:   "Error al guardar el cliente. Verifica que el NIF/CIF no esté duplicado.",
			DeleteFailed: "Error al eliminar el cliente",
			LoadFailed:   "Error al cargar los clientes",
		},
	}
}
