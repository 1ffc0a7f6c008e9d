package products

import (
	"context"

	"github.com/fabrica-erp/panel/internal/gateway"
	"github.com/fabrica-erp/panel/internal/listing"
)

// Store returns the /productos/ collection bound to gw.
func Store(gw *gateway.Gateway) listing.Store[Product] {
	return gateway.NewResource[Product](gw, gateway.Productos)
}

// Alerts lists products at or below their minimum stock.
func Alerts(ctx context.Context, gw *gateway.Gateway) ([]Product, error) {
	return gateway.NewResource[Product](gw, gateway.Productos).Action(ctx, "alertas", nil)
}
