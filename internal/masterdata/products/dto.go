package products

import (
	"strconv"

	"github.com/fabrica-erp/panel/internal/forms"
	"github.com/fabrica-erp/panel/internal/gateway"
)

// Payload is the body of create and update requests.
type Payload struct {
	Codigo            string          `json:"codigo"`
	Nombre            string          `json:"nombre"`
	Descripcion       string          `json:"descripcion"`
	StockActual       int             `json:"stock_actual"`
	StockMinimo       int             `json:"stock_minimo"`
	PrecioVenta       gateway.Decimal `json:"precio_venta"`
	TiempoFabricacion int             `json:"tiempo_fabricacion"`
}

// PayloadFromForm maps a validated form to a request body.
func PayloadFromForm(v forms.Values) (any, error) {
	stock, _ := v.Int("stock_actual")
	minimo, _ := v.Int("stock_minimo")
	precio, _ := v.Float("precio_venta")
	tiempo, _ := v.Int("tiempo_fabricacion")
	return Payload{
		Codigo:            v.Trimmed("codigo"),
		Nombre:            v.Trimmed("nombre"),
		Descripcion:       v.Trimmed("descripcion"),
		StockActual:       stock,
		StockMinimo:       minimo,
		PrecioVenta:       gateway.Decimal(gateway.Round2(precio)),
		TiempoFabricacion: tiempo,
	}, nil
}

// ToForm fills the edit form from p.
func ToForm(p Product) forms.Values {
	v := forms.Values{}
	v.Set("codigo", p.Codigo)
	v.Set("nombre", p.Nombre)
	v.Set("descripcion", p.Descripcion)
	v.Set("stock_actual", strconv.Itoa(p.StockActual))
	v.Set("stock_minimo", strconv.Itoa(p.StockMinimo))
	v.Set("precio_venta", strconv.FormatFloat(p.PrecioVenta.Float(), 'f', 2, 64))
	v.Set("tiempo_fabricacion", strconv.Itoa(p.TiempoFabricacion))
	return v
}

// Defaults is the empty create form.
func Defaults() forms.Values {
	v := forms.Values{}
	v.Set("stock_actual", "0")
	v.Set("stock_minimo", "0")
	v.Set("precio_venta", "0")
	v.Set("tiempo_fabricacion", "0")
	return v
}
