package orders

import (
	"strconv"

	"github.com/fabrica-erp/panel/internal/forms"
	"github.com/fabrica-erp/panel/internal/listing"
)

// NoLinesMessage is the error on "lineas" when no line would be persisted.
const NoLinesMessage = "Debe agregar al menos un producto"

// Rules validate the order header.
var Rules = forms.Rules{
	"numero_pedido": {forms.Required("El número de pedido es obligatorio")},
	"cliente":       {forms.Required("Debe seleccionar un cliente")},
	"fecha_entrega_estimada": {
		forms.Required("La fecha de entrega es obligatoria"),
		forms.Date("La fecha de entrega no es válida"),
	},
	"estado": {forms.OneOf("El estado no es válido", statusValues()...)},
}

// Validate checks the header rules and that at least one line is valid.
func Validate(v forms.Values) forms.Errors {
	errs := forms.Validate(v, Rules)
	if len(EditorFromForm(v).ValidLines()) == 0 {
		errs["lineas"] = NoLinesMessage
	}
	return errs
}

// Descriptor configures the order list controller.
func Descriptor() listing.Descriptor[Order] {
	return listing.Descriptor[Order]{
		Name: "pedidos",
		Searchable: func(o Order) []string {
			return []string{o.NumeroPedido, o.CustomerName(), string(o.Estado), o.Estado.Label()}
		},
		Filters: map[string]listing.FilterFunc[Order]{
			"estado": listing.Equals(func(o Order) string { return string(o.Estado) }),
			"cliente": func(o Order, value string) bool {
				return strconv.FormatInt(o.Cliente, 10) == value
			},
			"fecha_desde": func(o Order, value string) bool {
				return day(o.FechaPedido) >= value
			},
			"fecha_hasta": func(o Order, value string) bool {
				return day(o.FechaPedido) <= value
			},
		},
		Validate: Validate,
		Defaults: Defaults,
		ToForm:   ToForm,
		Payload:  PayloadFromForm,
		ID:       func(o Order) int64 { return o.ID },
		// List rows carry no lines.
		DetailOnEdit: true,
		Messages: listing.Messages{
			Created:      "Pedido creado exitosamente",
			Updated:      "Pedido actualizado exitosamente",
			Deleted:      "Pedido eliminado exitosamente",
			SaveFailed:   "Error al guardar el pedido",
			DeleteFailed: "Error al eliminar el pedido",
			LoadFailed:   "Error al cargar los datos",
		},
	}
}

func statusValues() []string {
	out := make([]string, len(Statuses))
	for i, s := range Statuses {
		out[i] = string(s)
	}
	return out
}

// day trims a date or timestamp to YYYY-MM-DD.
func day(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
