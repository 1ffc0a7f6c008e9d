package materials

import "github.com/fabrica-erp/panel/internal/gateway"

// Material is a raw material as returned by /materias-primas/.
type Material struct {
	ID             int64           `json:"id"`
	Codigo         string          `json:"codigo"`
	Nombre         string          `json:"nombre"`
	Descripcion    string          `json:"descripcion"`
	StockActual    gateway.Decimal `json:"stock_actual"`
	StockMinimo    gateway.Decimal `json:"stock_minimo"`
	Unidad         string          `json:"unidad"`
	PrecioUnitario gateway.Decimal `json:"precio_unitario"`
	Proveedor      string          `json:"proveedor"`
	AlertaStock    bool            `json:"alerta_stock"`
}

// StockValue is stock on hand times unit price, rounded to cents.
func (m Material) StockValue() float64 {
	return gateway.Round2(m.StockActual.Float() * m.PrecioUnitario.Float())
}

// Units of measure accepted by the API.
var Units = []string{"m", "m2", "kg", "unidad", "litro"}

var unitNames = map[string]string{
	"m":      "Metros",
	"m2":     "m²",
	"kg":     "Kilogramos",
	"unidad": "Unidades",
	"litro":  "Litros",
}

var unitShort = map[string]string{
	"m":      "metros",
	"m2":     "m²",
	"kg":     "kg",
	"unidad": "uds",
	"litro":  "litros",
}

// UnitName is the long label shown in selects.
func UnitName(unit string) string {
	if name, ok := unitNames[unit]; ok {
		return name
	}
	return unit
}

// UnitShort is the abbreviation shown next to quantities.
func UnitShort(unit string) string {
	if name, ok := unitShort[unit]; ok {
		return name
	}
	return unit
}
