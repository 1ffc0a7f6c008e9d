package orders

import (
	"strconv"
	"strings"

	"github.com/fabrica-erp/panel/internal/forms"
	"github.com/fabrica-erp/panel/internal/gateway"
)

// Form keys of the repeated line inputs. The previous product key lets a
// stateless POST tell which rows had their product changed.
const (
	keyProduct     = "line_producto"
	keyPrevProduct = "line_producto_prev"
	keyQuantity    = "line_cantidad"
	keyPrice       = "line_precio"
)

// OrderPayload is the order header sent on create and update.
type OrderPayload struct {
	NumeroPedido         string          `json:"numero_pedido"`
	Cliente              int64           `json:"cliente"`
	FechaEntregaEstimada string          `json:"fecha_entrega_estimada"`
	Estado               Status          `json:"estado"`
	Observaciones        string          `json:"observaciones"`
	Total                gateway.Decimal `json:"total"`
}

// LinePayload is one POST to /lineas-pedido/.
type LinePayload struct {
	Pedido         int64           `json:"pedido"`
	Producto       int64           `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario gateway.Decimal `json:"precio_unitario"`
	Subtotal       gateway.Decimal `json:"subtotal"`
}

// Submission is what the order store receives from the controller.
type Submission struct {
	Order OrderPayload
	Lines []LinePayload
}

// EditorFromForm rebuilds the line editor from the repeated line inputs.
func EditorFromForm(v forms.Values) *LineEditor {
	products := v.All(keyProduct)
	quantities := v.All(keyQuantity)
	prices := v.All(keyPrice)
	n := max(len(products), len(quantities), len(prices))
	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, Row{
			Product:   parseID(at(products, i)),
			Quantity:  parseInt(at(quantities, i)),
			UnitPrice: parseFloat(at(prices, i)),
		})
	}
	return NewLineEditor(rows...)
}

// ChangedProducts lists the rows whose product differs from the one the form
// was rendered with.
func ChangedProducts(v forms.Values) []int {
	products := v.All(keyProduct)
	prev := v.All(keyPrevProduct)
	var out []int
	for i, p := range products {
		if p != "" && p != at(prev, i) {
			out = append(out, i)
		}
	}
	return out
}

// WriteLines replaces the line inputs of v with the editor rows.
func WriteLines(v forms.Values, e *LineEditor) {
	v.Del(keyProduct)
	v.Del(keyPrevProduct)
	v.Del(keyQuantity)
	v.Del(keyPrice)
	for _, r := range e.Rows() {
		product := ""
		if r.Product > 0 {
			product = strconv.FormatInt(r.Product, 10)
		}
		v.Add(keyProduct, product)
		v.Add(keyPrevProduct, product)
		v.Add(keyQuantity, strconv.Itoa(r.Quantity))
		v.Add(keyPrice, strconv.FormatFloat(r.UnitPrice, 'f', 2, 64))
	}
}

// PayloadFromForm maps a validated form to a Submission. The total is the sum
// of the lines that will be persisted.
func PayloadFromForm(v forms.Values) (any, error) {
	editor := EditorFromForm(v)
	valid := editor.ValidLines()
	if len(valid) == 0 {
		return nil, &forms.ValidationError{Fields: forms.Errors{"lineas": NoLinesMessage}}
	}
	cliente, _ := strconv.ParseInt(v.Trimmed("cliente"), 10, 64)
	estado := Status(v.Trimmed("estado"))
	if estado == "" {
		estado = StatusPending
	}
	sub := Submission{
		Order: OrderPayload{
			NumeroPedido:         v.Trimmed("numero_pedido"),
			Cliente:              cliente,
			FechaEntregaEstimada: v.Trimmed("fecha_entrega_estimada"),
			Estado:               estado,
			Observaciones:        v.Trimmed("observaciones"),
			Total:                gateway.Decimal(editor.ValidTotal()),
		},
	}
	for _, r := range valid {
		sub.Lines = append(sub.Lines, LinePayload{
			Producto:       r.Product,
			Cantidad:       r.Quantity,
			PrecioUnitario: gateway.Decimal(r.UnitPrice),
			Subtotal:       gateway.Decimal(r.Subtotal()),
		})
	}
	return sub, nil
}

// HeaderOf rebuilds the header payload of a fetched order.
func HeaderOf(o Order) OrderPayload {
	return OrderPayload{
		NumeroPedido:         o.NumeroPedido,
		Cliente:              o.Cliente,
		FechaEntregaEstimada: o.FechaEntregaEstimada,
		Estado:               o.Estado,
		Observaciones:        o.Observaciones,
		Total:                o.Total,
	}
}

// ToForm fills the edit form from an order detail.
func ToForm(o Order) forms.Values {
	v := forms.Values{}
	v.Set("numero_pedido", o.NumeroPedido)
	if o.Cliente > 0 {
		v.Set("cliente", strconv.FormatInt(o.Cliente, 10))
	}
	v.Set("fecha_entrega_estimada", o.FechaEntregaEstimada)
	v.Set("estado", string(o.Estado))
	v.Set("observaciones", o.Observaciones)
	rows := make([]Row, 0, len(o.Lineas))
	for _, l := range o.Lineas {
		rows = append(rows, Row{Product: l.Producto, Quantity: l.Cantidad, UnitPrice: l.PrecioUnitario.Float()})
	}
	WriteLines(v, NewLineEditor(rows...))
	return v
}

// Defaults is the empty create form: pending, one blank line.
func Defaults() forms.Values {
	v := forms.Values{}
	v.Set("estado", string(StatusPending))
	WriteLines(v, NewLineEditor())
	return v
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func parseID(s string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

func parseInt(s string) int {
	f, _ := forms.ParseNumber(s)
	return int(f)
}

func parseFloat(s string) float64 {
	f, _ := forms.ParseNumber(s)
	return f
}
