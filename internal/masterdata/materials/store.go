package materials

import (
	"context"

	"github.com/fabrica-erp/panel/internal/gateway"
	"github.com/fabrica-erp/panel/internal/listing"
)

// Store returns the /materias-primas/ collection bound to gw.
func Store(gw *gateway.Gateway) listing.Store[Material] {
	return gateway.NewResource[Material](gw, gateway.MateriasPrimas)
}

// Alerts lists raw materials at or below their minimum stock.
func Alerts(ctx context.Context, gw *gateway.Gateway) ([]Material, error) {
	return gateway.NewResource[Material](gw, gateway.MateriasPrimas).Action(ctx, "alertas", nil)
}
