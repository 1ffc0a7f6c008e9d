package orders

import (
	"context"
	"strconv"

	"github.com/fabrica-erp/panel/internal/export"
	"github.com/fabrica-erp/panel/internal/gateway"
	"github.com/fabrica-erp/panel/internal/listing"
	"github.com/fabrica-erp/panel/internal/resource"
	"github.com/fabrica-erp/panel/internal/sales/customers"
	"github.com/fabrica-erp/panel/internal/view"
)

// Path is the mount point of the order pages.
const Path = "/pedidos"

// Config describes the order list, export and delete pages. Forms and the
// detail page are served by Handler.
func Config() resource.Config[Order] {
	return resource.Config[Order]{
		Title:             "Pedidos",
		Singular:          "pedido",
		Path:              Path,
		NewLabel:          "Nuevo Pedido",
		SearchPlaceholder: "Buscar por número, cliente o estado...",
		Descriptor:        Descriptor(),
		Store:             func(gw *gateway.Gateway) listing.Store[Order] { return NewStore(gw) },
		Label:             func(o Order) string { return "el pedido " + o.NumeroPedido },
		Columns: []resource.Column[Order]{
			{Label: "Número", Value: func(o Order) string { return o.NumeroPedido }},
			{Label: "Cliente", Value: Order.CustomerName},
			{Label: "Fecha Pedido", Value: func(o Order) string { return view.Date(o.FechaPedido) }},
			{Label: "Fecha Entrega", Value: func(o Order) string { return view.Date(o.FechaEntregaEstimada) }},
			{Label: "Estado", Value: func(o Order) string { return o.Estado.Label() }, Badge: func(o Order) string { return o.Estado.Tone() }},
			{Label: "Total", Value: func(o Order) string { return view.Money(o.Total.Float()) }, Align: "right"},
		},
		Filters: []resource.FilterField{
			{Name: "estado", Label: "Estado", Options: statusOptions("Todos")},
			{Name: "cliente", Label: "Cliente", Options: []resource.Option{{Value: "", Label: "Todos"}}},
			{Name: "fecha_desde", Label: "Desde", Kind: resource.FieldDate},
			{Name: "fecha_hasta", Label: "Hasta", Kind: resource.FieldDate},
		},
		FilterOptions: customerFilter,
		Summary:       Summary,
		Sheet:         Sheet(),
		CustomForms:   true,
	}
}

func customerFilter(ctx context.Context, gw *gateway.Gateway) (map[string][]resource.Option, error) {
	items, err := customers.Store(gw).List(ctx)
	if err != nil {
		return nil, err
	}
	return map[string][]resource.Option{"cliente": customerOptions(items)}, nil
}

func customerOptions(items []customers.Customer) []resource.Option {
	out := make([]resource.Option, 0, len(items))
	for _, c := range items {
		out = append(out, resource.Option{Value: strconv.FormatInt(c.ID, 10), Label: c.Nombre})
	}
	return out
}

func statusOptions(empty string) []resource.Option {
	var out []resource.Option
	if empty != "" {
		out = append(out, resource.Option{Value: "", Label: empty})
	}
	for _, s := range Statuses {
		out = append(out, resource.Option{Value: string(s), Label: s.Label()})
	}
	return out
}

// Summary counts orders by state and adds up their totals.
func Summary(items []Order) []resource.Card {
	pending, inProgress := 0, 0
	amount := 0.0
	for _, o := range items {
		switch o.Estado {
		case StatusPending:
			pending++
		case StatusInProgress:
			inProgress++
		}
		amount += o.Total.Float()
	}
	return []resource.Card{
		{Label: "Total Pedidos", Value: strconv.Itoa(len(items)), Tone: resource.ToneInfo},
		{Label: "Pendientes", Value: strconv.Itoa(pending), Tone: resource.ToneWarn},
		{Label: "En Producción", Value: strconv.Itoa(inProgress), Tone: resource.ToneInfo},
		{Label: "Importe Total", Value: view.Money(gateway.Round2(amount)), Tone: resource.ToneOK},
	}
}

// Sheet is the order export layout.
func Sheet() export.Sheet[Order] {
	return export.Sheet[Order]{
		Name:       "Pedidos",
		FilePrefix: "Pedidos",
		Columns: []export.Column[Order]{
			{Header: "Número", Width: 15, Value: func(o Order) any { return o.NumeroPedido }},
			{Header: "Cliente", Width: 30, Value: func(o Order) any { return o.CustomerName() }},
			{Header: "Fecha Pedido", Width: 15, Value: func(o Order) any { return view.Date(o.FechaPedido) }},
			{Header: "Fecha Entrega", Width: 15, Value: func(o Order) any { return view.Date(o.FechaEntregaEstimada) }},
			{Header: "Estado", Width: 15, Value: func(o Order) any { return o.Estado.Label() }},
			{Header: "Total", Width: 12, Format: export.Money, Value: func(o Order) any { return o.Total.Float() }},
		},
	}
}
