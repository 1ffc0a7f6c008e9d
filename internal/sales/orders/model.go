package orders

import (
	"github.com/fabrica-erp/panel/internal/gateway"
	"github.com/fabrica-erp/panel/internal/resource"
	"github.com/fabrica-erp/panel/internal/sales/customers"
)

// Status is the production state of an order.
type Status string

const (
	StatusPending    Status = "pendiente"
	StatusInProgress Status = "en_produccion"
	StatusProduced   Status = "producido"
	StatusDelivered  Status = "entregado"
	StatusCancelled  Status = "cancelado"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusProduced, StatusDelivered, StatusCancelled}

var statusLabels = map[Status]string{
	StatusPending:    "Pendiente",
	StatusInProgress: "En Producción",
	StatusProduced:   "Producido",
	StatusDelivered:  "Entregado",
	StatusCancelled:  "Cancelado",
}

// Label is the display name of s.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Tone is the badge tone of s.
func (s Status) Tone() string {
	switch s {
	case StatusPending:
		return resource.ToneWarn
	case StatusInProgress:
		return resource.ToneInfo
	case StatusProduced, StatusDelivered:
		return resource.ToneOK
	case StatusCancelled:
		return resource.ToneDanger
	}
	return resource.ToneMuted
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Order is a customer order. List responses carry ClienteNombre; the detail
// adds Lineas and ClienteDatos.
type Order struct {
	ID                   int64               `json:"id"`
	NumeroPedido         string              `json:"numero_pedido"`
	Cliente              int64               `json:"cliente"`
	ClienteNombre        string              `json:"cliente_nombre,omitempty"`
	FechaPedido          string              `json:"fecha_pedido"`
	FechaEntregaEstimada string              `json:"fecha_entrega_estimada"`
	Estado               Status              `json:"estado"`
	Observaciones        string              `json:"observaciones"`
	Total                gateway.Decimal     `json:"total"`
	Lineas               []Line              `json:"lineas,omitempty"`
	ClienteDatos         *customers.Customer `json:"cliente_datos,omitempty"`
}

// CustomerName prefers the list projection and falls back to the detail.
func (o Order) CustomerName() string {
	if o.ClienteNombre != "" {
		return o.ClienteNombre
	}
	if o.ClienteDatos != nil {
		return o.ClienteDatos.Nombre
	}
	return ""
}

// Line is a persisted order line.
type Line struct {
	ID             int64           `json:"id,omitempty"`
	Pedido         int64           `json:"pedido,omitempty"`
	Producto       int64           `json:"producto"`
	ProductoNombre string          `json:"producto_nombre,omitempty"`
	ProductoCodigo string          `json:"producto_codigo,omitempty"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario gateway.Decimal `json:"precio_unitario"`
	Subtotal       gateway.Decimal `json:"subtotal"`
}
