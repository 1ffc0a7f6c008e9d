package products

import "github.com/fabrica-erp/panel/internal/gateway"

// Product is a finished good as returned by /productos/.
type Product struct {
	ID                int64           `json:"id"`
	Codigo            string          `json:"codigo"`
	Nombre            string          `json:"nombre"`
	Descripcion       string          `json:"descripcion"`
	StockActual       int             `json:"stock_actual"`
	StockMinimo       int             `json:"stock_minimo"`
	PrecioVenta       gateway.Decimal `json:"precio_venta"`
	TiempoFabricacion int             `json:"tiempo_fabricacion"`
	AlertaStock       bool            `json:"alerta_stock"`
}

// Label is the "codigo - nombre" text used in selects.
func (p Product) Label() string {
	return p.Codigo + " - " + p.Nombre
}
