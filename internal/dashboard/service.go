// Package dashboard builds the landing page: entity totals, orders per
// status, the monthly sales trend and the low-stock alerts.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fabrica-erp/panel/internal/gateway"
	"github.com/fabrica-erp/panel/internal/masterdata/materials"
	"github.com/fabrica-erp/panel/internal/masterdata/products"
	"github.com/fabrica-erp/panel/internal/platform/cache"
	"github.com/fabrica-erp/panel/internal/sales/customers"
	"github.com/fabrica-erp/panel/internal/sales/orders"
)

// SalesMonths is the length of the sales trend.
const SalesMonths = 6

// SnapshotKey holds the AlertSnapshot written by the stock alert job.
const SnapshotKey = "panel:stock-alerts:last"

// StatusCount is the number of orders in one status.
type StatusCount struct {
	Status orders.Status `json:"estado"`
	Count  int           `json:"count"`
}

// MonthTotal is the order amount of one calendar month.
type MonthTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// StockAlert is a product or raw material at or below its minimum stock.
type StockAlert struct {
	Kind    string  `json:"kind"`
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	Stock   float64 `json:"stock"`
	Minimum float64 `json:"minimum"`
	Unit    string  `json:"unit"`
}

// Alert kinds.
const (
	KindProduct  = "producto"
	KindMaterial = "materia_prima"
)

// Summary is everything the dashboard shows.
type Summary struct {
	Customers   int           `json:"customers"`
	Orders      int           `json:"orders"`
	Products    int           `json:"products"`
	Pending     int           `json:"pending"`
	ByStatus    []StatusCount `json:"by_status"`
	Sales       []MonthTotal  `json:"sales"`
	Alerts      []StockAlert  `json:"alerts"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// AlertSnapshot is the result of the last scheduled alert scan.
type AlertSnapshot struct {
	CheckedAt time.Time    `json:"checked_at"`
	Alerts    []StockAlert `json:"alerts"`
}

// Load fetches every dashboard source in parallel. now anchors the sales
// trend to its calendar month.
func Load(ctx context.Context, gw *gateway.Gateway, now time.Time) (Summary, error) {
	var (
		summary   Summary
		orderList []orders.Order
		prodAlert []products.Product
		matAlert  []materials.Material
	)
	counts := make([]int, len(orders.Statuses))
	store := orders.NewStore(gw)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := customers.Store(gw).List(ctx)
		summary.Customers = len(items)
		return wrap("clientes", err)
	})
	g.Go(func() error {
		items, err := products.Store(gw).List(ctx)
		summary.Products = len(items)
		return wrap("productos", err)
	})
	g.Go(func() error {
		items, err := store.List(ctx)
		orderList = items
		return wrap("pedidos", err)
	})
	for i, status := range orders.Statuses {
		i, status := i, status
		g.Go(func() error {
			items, err := store.ByStatus(ctx, status)
			counts[i] = len(items)
			return wrap("pedidos por estado "+string(status), err)
		})
	}
	g.Go(func() error {
		items, err := products.Alerts(ctx, gw)
		prodAlert = items
		return wrap("alertas de productos", err)
	})
	g.Go(func() error {
		items, err := materials.Alerts(ctx, gw)
		matAlert = items
		return wrap("alertas de materias primas", err)
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	summary.Orders = len(orderList)
	for i, status := range orders.Statuses {
		summary.ByStatus = append(summary.ByStatus, StatusCount{Status: status, Count: counts[i]})
		if status == orders.StatusPending {
			summary.Pending = counts[i]
		}
	}
	summary.Sales = MonthlySales(orderList, now, SalesMonths)
	summary.Alerts = Alerts(prodAlert, matAlert)
	summary.GeneratedAt = now
	return summary, nil
}

// MonthlySales sums order totals per month over the months calendar months
// ending with now's. Cancelled orders do not count.
func MonthlySales(items []orders.Order, now time.Time, months int) []MonthTotal {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	out := make([]MonthTotal, months)
	index := make(map[string]int, months)
	for i := range out {
		month := first.AddDate(0, i, 0).Format("2006-01")
		out[i].Month = month
		index[month] = i
	}
	for _, o := range items {
		if o.Estado == orders.StatusCancelled || len(o.FechaPedido) < 7 {
			continue
		}
		if i, ok := index[o.FechaPedido[:7]]; ok {
			out[i].Total = gateway.Round2(out[i].Total + o.Total.Float())
		}
	}
	return out
}

// Alerts merges product and material alerts, products first.
func Alerts(prods []products.Product, mats []materials.Material) []StockAlert {
	out := make([]StockAlert, 0, len(prods)+len(mats))
	for _, p := range prods {
		out = append(out, StockAlert{
			Kind:    KindProduct,
			Code:    p.Codigo,
			Name:    p.Nombre,
			Stock:   float64(p.StockActual),
			Minimum: float64(p.StockMinimo),
			Unit:    "uds",
		})
	}
	for _, m := range mats {
		out = append(out, StockAlert{
			Kind:    KindMaterial,
			Code:    m.Codigo,
			Name:    m.Nombre,
			Stock:   m.StockActual.Float(),
			Minimum: m.StockMinimo.Float(),
			Unit:    materials.UnitShort(m.Unidad),
		})
	}
	return out
}

func wrap(source string, err error) error {
	if err != nil {
		return fmt.Errorf("dashboard %s: %w", source, err)
	}
	return nil
}

// Service caches summaries per user. The cache version is bumped after every
// mutation made through the panel.
type Service struct {
	cache  *cache.Versioned
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds a Service; c may be nil to disable caching.
func NewService(c *cache.Versioned, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cache: c, logger: logger, now: time.Now}
}

// Summary returns the cached summary for user or loads it through gw.
func (s *Service) Summary(ctx context.Context, gw *gateway.Gateway, user string) (Summary, error) {
	loader := func(ctx context.Context) (any, error) {
		return Load(ctx, gw, s.now())
	}
	key, err := s.cache.Key(ctx, "panel", "dashboard", user)
	if err != nil {
		s.logger.Warn("dashboard cache unavailable", slog.Any("error", err))
		return Load(ctx, gw, s.now())
	}
	var out Summary
	if err := s.cache.Fetch(ctx, key, &out, loader); err != nil {
		return Summary{}, err
	}
	return out, nil
}

// Invalidate drops every cached summary.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("dashboard cache bump failed", slog.Any("error", err))
	}
}

// LastScan returns the snapshot of the last scheduled alert scan.
func (s *Service) LastScan(ctx context.Context) (AlertSnapshot, bool) {
	var snap AlertSnapshot
	found, err := s.cache.Get(ctx, SnapshotKey, &snap)
	if err != nil {
		s.logger.Warn("read alert snapshot", slog.Any("error", err))
		return AlertSnapshot{}, false
	}
	return snap, found
}
