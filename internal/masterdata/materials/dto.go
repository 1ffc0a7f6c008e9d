package materials

import (
	"strconv"

	"github.com/fabrica-erp/panel/internal/forms"
	"github.com/fabrica-erp/panel/internal/gateway"
)

// Payload is the body of create and update requests.
type Payload struct {
	Codigo         string          `json:"codigo"`
	Nombre         string          `json:"nombre"`
	Descripcion    string          `json:"descripcion"`
	StockActual    gateway.Decimal `json:"stock_actual"`
	StockMinimo    gateway.Decimal `json:"stock_minimo"`
	Unidad         string          `json:"unidad"`
	PrecioUnitario gateway.Decimal `json:"precio_unitario"`
	Proveedor      string          `json:"proveedor"`
}

// PayloadFromForm maps a validated form to a request body.
func PayloadFromForm(v forms.Values) (any, error) {
	stock, _ := v.Float("stock_actual")
	minimo, _ := v.Float("stock_minimo")
	precio, _ := v.Float("precio_unitario")
	return Payload{
		Codigo:         v.Trimmed("codigo"),
		Nombre:         v.Trimmed("nombre"),
		Descripcion:    v.Trimmed("descripcion"),
		StockActual:    gateway.Decimal(stock),
		StockMinimo:    gateway.Decimal(minimo),
		Unidad:         v.Trimmed("unidad"),
		PrecioUnitario: gateway.Decimal(precio),
		Proveedor:      v.Trimmed("proveedor"),
	}, nil
}

// ToForm fills the edit form from m.
func ToForm(m Material) forms.Values {
	v := forms.Values{}
	v.Set("codigo", m.Codigo)
	v.Set("nombre", m.Nombre)
	v.Set("descripcion", m.Descripcion)
	v.Set("stock_actual", decimal(m.StockActual))
	v.Set("stock_minimo", decimal(m.StockMinimo))
	v.Set("unidad", m.Unidad)
	v.Set("precio_unitario", decimal(m.PrecioUnitario))
	v.Set("proveedor", m.Proveedor)
	return v
}

// Defaults is the empty create form: zero stock, meters, zero price.
func Defaults() forms.Values {
	v := forms.Values{}
	v.Set("stock_actual", "0")
	v.Set("stock_minimo", "0")
	v.Set("unidad", "m")
	v.Set("precio_unitario", "0")
	return v
}

func decimal(d gateway.Decimal) string {
	return strconv.FormatFloat(d.Float(), 'f', 2, 64)
}
