package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fabrica-erp/panel/internal/export"
	"github.com/fabrica-erp/panel/internal/gateway"
	"github.com/fabrica-erp/panel/internal/masterdata/materials"
	"github.com/fabrica-erp/panel/internal/masterdata/products"
	"github.com/fabrica-erp/panel/internal/resource"
	"github.com/fabrica-erp/panel/internal/sales/customers"
	"github.com/fabrica-erp/panel/internal/sales/orders"
)

// Entities lists the names accepted by the export command.
var Entities = []string{"clientes", "productos", "materias-primas", "pedidos"}

// Export writes every item of entity to w. format is "xlsx" or "csv".
func Export(ctx context.Context, gw *gateway.Gateway, entity, format string, w io.Writer) (int, error) {
	switch entity {
	case "clientes":
		return exportAll(ctx, gw, customers.Config(), format, w)
	case "productos":
		return exportAll(ctx, gw, products.Config(), format, w)
	case "materias-primas":
		return exportAll(ctx, gw, materials.Config(), format, w)
	case "pedidos":
		return exportAll(ctx, gw, orders.Config(), format, w)
	default:
		return 0, fmt.Errorf("export: unknown entity %q (want one of %s)", entity, strings.Join(Entities, ", "))
	}
}

func exportAll[T any](ctx context.Context, gw *gateway.Gateway, cfg resource.Config[T], format string, w io.Writer) (int, error) {
	items, err := cfg.Store(gw).List(ctx)
	if err != nil {
		return 0, fmt.Errorf("export: list %s: %w", cfg.Path, err)
	}
	if format == "csv" {
		err = export.WriteCSV(w, cfg.Sheet, items)
	} else {
		err = export.WriteXLSX(w, cfg.Sheet, items)
	}
	if err != nil {
		return 0, fmt.Errorf("export: write: %w", err)
	}
	return len(items), nil
}

// FormatFor picks the export format from the file extension.
func FormatFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return "csv"
	}
	return "xlsx"
}
