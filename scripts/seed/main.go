// Command seed fills a development backend with demo customers, products,
// raw materials and orders through the REST API.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/fabrica-erp/panel/internal/gateway"
	"github.com/fabrica-erp/panel/internal/masterdata/materials"
	"github.com/fabrica-erp/panel/internal/masterdata/products"
	"github.com/fabrica-erp/panel/internal/sales/customers"
	"github.com/fabrica-erp/panel/internal/sales/orders"
)

func main() {
	_ = godotenv.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := gateway.NewClient(gateway.Options{BaseURL: getenv("API_BASE_URL", gateway.DefaultBaseURL)})
	tokens, err := client.Login(ctx, getenv("API_SERVICE_USER", "admin"), getenv("API_SERVICE_PASSWORD", "admin"))
	if err != nil {
		log.Fatalf("login: %v", err)
	}
	gw := client.WithSession(gateway.NewMemoryStore(tokens))

	fmt.Println("→ Seeding customers...")
	customerIDs, err := seedCustomers(ctx, gw)
	if err != nil {
		log.Fatalf("seed customers: %v", err)
	}

	fmt.Println("→ Seeding products...")
	catalog, err := seedProducts(ctx, gw)
	if err != nil {
		log.Fatalf("seed products: %v", err)
	}

	fmt.Println("→ Seeding raw materials...")
	if err := seedMaterials(ctx, gw); err != nil {
		log.Fatalf("seed materials: %v", err)
	}

	fmt.Println("→ Seeding orders...")
	if err := seedOrders(ctx, gw, customerIDs, catalog); err != nil {
		log.Fatalf("seed orders: %v", err)
	}

	fmt.Println("✓ Seed complete at", time.Now().Format(time.RFC3339))
}

// =============================================================================
// CUSTOMERS
// =============================================================================

func seedCustomers(ctx context.Context, gw *gateway.Gateway) ([]int64, error) {
	payloads := []customers.Payload{
		{Nombre: "Talleres Norte S.L.", Contacto: "Ana Ruiz", Email: "compras@talleresnorte.es", Telefono: "944 123 456", Direccion: "Polígono Ugaldeguren 3, Zamudio", NIFCIF: "B48123456", Activo: true},
		{Nombre: "Muebles Levante S.A.", Contacto: "Jordi Puig", Email: "pedidos@muebleslevante.es", Telefono: "963 987 654", Direccion: "Av. del Puerto 112, Valencia", NIFCIF: "A46987654", Activo: true},
		{Nombre: "Construcciones Sur", Contacto: "Lucía Moreno", Email: "lucia@construsur.es", Telefono: "954 222 333", Direccion: "C/ Betis 8, Sevilla", NIFCIF: "B41222333", Activo: true},
		{Nombre: "Interiorismo Centro", Contacto: "Pablo Gil", Email: "pablo@intcentro.es", Telefono: "915 444 555", Direccion: "C/ Alcalá 200, Madrid", NIFCIF: "B28444555", Activo: false},
	}
	store := customers.Store(gw)
	ids := make([]int64, 0, len(payloads))
	for _, p := range payloads {
		created, err := store.Create(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Nombre, err)
		}
		ids = append(ids, created.ID)
	}
	return ids, nil
}

// =============================================================================
// PRODUCTS
// =============================================================================

func seedProducts(ctx context.Context, gw *gateway.Gateway) ([]products.Product, error) {
	payloads := []products.Payload{
		{Codigo: "MES-001", Nombre: "Mesa de roble", Descripcion: "Mesa de comedor 180x90", StockActual: 12, StockMinimo: 5, PrecioVenta: 450, TiempoFabricacion: 16},
		{Codigo: "SIL-002", Nombre: "Silla tapizada", Descripcion: "Silla con asiento de tela", StockActual: 3, StockMinimo: 20, PrecioVenta: 85.5, TiempoFabricacion: 4},
		{Codigo: "EST-003", Nombre: "Estantería modular", Descripcion: "Módulo de 80 cm", StockActual: 25, StockMinimo: 10, PrecioVenta: 129.9, TiempoFabricacion: 6},
		{Codigo: "ARM-004", Nombre: "Armario dos puertas", Descripcion: "Armario lacado blanco", StockActual: 2, StockMinimo: 2, PrecioVenta: 620, TiempoFabricacion: 24},
	}
	store := products.Store(gw)
	out := make([]products.Product, 0, len(payloads))
	for _, p := range payloads {
		created, err := store.Create(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Codigo, err)
		}
		out = append(out, created)
	}
	return out, nil
}

// =============================================================================
// RAW MATERIALS
// =============================================================================

func seedMaterials(ctx context.Context, gw *gateway.Gateway) error {
	payloads := []materials.Payload{
		{Codigo: "MP-ROB", Nombre: "Tablero de roble", StockActual: 42.5, StockMinimo: 20, Unidad: "m2", PrecioUnitario: 38, Proveedor: "Maderas del Norte"},
		{Codigo: "MP-TEL", Nombre: "Tela de tapizar", StockActual: 8, StockMinimo: 30, Unidad: "m", PrecioUnitario: 12.4, Proveedor: "Textiles Alcoy"},
		{Codigo: "MP-BAR", Nombre: "Barniz al agua", StockActual: 15, StockMinimo: 10, Unidad: "litro", PrecioUnitario: 9.75, Proveedor: "Pinturas Ebro"},
		{Codigo: "MP-TOR", Nombre: "Tornillería surtida", StockActual: 1200, StockMinimo: 500, Unidad: "unidad", PrecioUnitario: 0.05, Proveedor: "Ferretería Industrial"},
	}
	store := materials.Store(gw)
	for _, p := range payloads {
		if _, err := store.Create(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p.Codigo, err)
		}
	}
	return nil
}

// =============================================================================
// ORDERS
// =============================================================================

func seedOrders(ctx context.Context, gw *gateway.Gateway, customerIDs []int64, catalog []products.Product) error {
	if len(customerIDs) == 0 || len(catalog) == 0 {
		return nil
	}
	statuses := orders.Statuses
	today := time.Now()
	store := orders.NewStore(gw)
	for i := 0; i < 8; i++ {
		editor := orders.NewLineEditor(
			orders.Row{Product: catalog[i%len(catalog)].ID, Quantity: 1 + i%3, UnitPrice: catalog[i%len(catalog)].PrecioVenta.Float()},
			orders.Row{Product: catalog[(i+1)%len(catalog)].ID, Quantity: 2 + i%4, UnitPrice: catalog[(i+1)%len(catalog)].PrecioVenta.Float()},
		)
		sub := orders.Submission{
			Order: orders.OrderPayload{
				NumeroPedido:         fmt.Sprintf("PED-%04d", i+1),
				Cliente:              customerIDs[i%len(customerIDs)],
				FechaEntregaEstimada: today.AddDate(0, 0, 7+i*3).Format("2006-01-02"),
				Estado:               statuses[i%len(statuses)],
				Total:                gateway.Decimal(editor.ValidTotal()),
			},
		}
		for _, row := range editor.ValidLines() {
			sub.Lines = append(sub.Lines, orders.LinePayload{
				Producto:       row.Product,
				Cantidad:       row.Quantity,
				PrecioUnitario: gateway.Decimal(row.UnitPrice),
				Subtotal:       gateway.Decimal(row.Subtotal()),
			})
		}
		if _, err := store.Create(ctx, sub); err != nil {
			return fmt.Errorf("%s: %w", sub.Order.NumeroPedido, err)
		}
	}
	return nil
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
