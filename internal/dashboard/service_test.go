package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabrica-erp/panel/internal/gateway"
	"github.com/fabrica-erp/panel/internal/platform/cache"
	"github.com/fabrica-erp/panel/internal/sales/orders"
)

var now = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

type fakeAPI struct {
	calls  int32
	status int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&f.calls, 1)
	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}
	var body any
	switch r.URL.Path {
	case "/api/clientes/":
		body = []map[string]any{{"id": 1}, {"id": 2}}
	case "/api/productos/":
		body = []map[string]any{{"id": 1}, {"id": 2}, {"id": 3}}
	case "/api/pedidos/":
		body = []map[string]any{
			{"id": 1, "fecha_pedido": "2024-06-02", "estado": "pendiente", "total": "100.00"},
			{"id": 2, "fecha_pedido": "2024-06-20T09:00:00Z", "estado": "entregado", "total": "50.50"},
			{"id": 3, "fecha_pedido": "2024-04-10", "estado": "cancelado", "total": "900.00"},
			{"id": 4, "fecha_pedido": "2024-01-10", "estado": "producido", "total": "30.00"},
			{"id": 5, "fecha_pedido": "2023-12-31", "estado": "producido", "total": "70.00"},
		}
	case "/api/pedidos/por_estado/":
		switch r.URL.Query().Get("estado") {
		case "pendiente":
			body = []map[string]any{{"id": 1}}
		case "producido":
			body = []map[string]any{{"id": 4}, {"id": 5}}
		default:
			body = []map[string]any{}
		}
	case "/api/productos/alertas/":
		body = []map[string]any{{"codigo": "P-1", "nombre": "Sofá", "stock_actual": 1, "stock_minimo": 5}}
	case "/api/materias-primas/alertas/":
		body = []map[string]any{{"codigo": "MP-1", "nombre": "Tela", "stock_actual": "2.50", "stock_minimo": "10.00", "unidad": "m2"}}
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

func newGateway(t *testing.T, api *fakeAPI) *gateway.Gateway {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	client := gateway.NewClient(gateway.Options{BaseURL: srv.URL + "/api", HTTPClient: srv.Client()})
	return client.WithSession(gateway.NewMemoryStore(gateway.Tokens{Access: "a", Refresh: "r"}))
}

func TestLoad(t *testing.T) {
	s, err := Load(context.Background(), newGateway(t, &fakeAPI{}), now)
	require.NoError(t, err)

	assert.Equal(t, 2, s.Customers)
	assert.Equal(t, 3, s.Products)
	assert.Equal(t, 5, s.Orders)
	assert.Equal(t, 1, s.Pending)
	require.Len(t, s.ByStatus, len(orders.Statuses))
	assert.Equal(t, StatusCount{Status: orders.StatusProduced, Count: 2}, s.ByStatus[2])

	require.Len(t, s.Sales, SalesMonths)
	assert.Equal(t, MonthTotal{Month: "2024-01", Total: 30}, s.Sales[0])
	assert.Equal(t, MonthTotal{Month: "2024-04", Total: 0}, s.Sales[3])
	assert.Equal(t, MonthTotal{Month: "2024-06", Total: 150.5}, s.Sales[5])

	require.Len(t, s.Alerts, 2)
	assert.Equal(t, KindProduct, s.Alerts[0].Kind)
	assert.Equal(t, StockAlert{Kind: KindMaterial, Code: "MP-1", Name: "Tela", Stock: 2.5, Minimum: 10, Unit: "m²"}, s.Alerts[1])
}

func TestLoadFailure(t *testing.T) {
	_, err := Load(context.Background(), newGateway(t, &fakeAPI{status: http.StatusInternalServerError}), now)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, gateway.StatusOf(err))
}

func TestServiceCachesUntilInvalidated(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	svc := NewService(cache.NewVersioned(client, "panel:dashboard", time.Minute), nil)
	svc.now = func() time.Time { return now }

	api := &fakeAPI{}
	gw := newGateway(t, api)
	ctx := context.Background()

	first, err := svc.Summary(ctx, gw, "ana")
	require.NoError(t, err)
	calls := atomic.LoadInt32(&api.calls)
	assert.Positive(t, calls)

	second, err := svc.Summary(ctx, gw, "ana")
	require.NoError(t, err)
	assert.Equal(t, calls, atomic.LoadInt32(&api.calls))
	assert.Equal(t, first.Orders, second.Orders)

	svc.Invalidate(ctx)
	_, err = svc.Summary(ctx, gw, "ana")
	require.NoError(t, err)
	assert.Equal(t, 2*calls, atomic.LoadInt32(&api.calls))
}

func TestLastScan(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := cache.NewVersioned(client, "panel:dashboard", time.Minute)
	svc := NewService(c, nil)

	_, found := svc.LastScan(context.Background())
	assert.False(t, found)

	require.NoError(t, c.Put(context.Background(), SnapshotKey, AlertSnapshot{CheckedAt: now, Alerts: []StockAlert{{Code: "P-1"}}}, 0))
	snap, found := svc.LastScan(context.Background())
	assert.True(t, found)
	assert.True(t, now.Equal(snap.CheckedAt))
}

func TestBuildPage(t *testing.T) {
	page := BuildPage(Summary{
		Customers: 2, Orders: 5, Products: 3, Pending: 1,
		ByStatus: []StatusCount{{Status: orders.StatusPending, Count: 1}, {Status: orders.StatusDelivered, Count: 4}},
		Sales:    []MonthTotal{{Month: "2024-05", Total: 10}, {Month: "2024-06", Total: 150.5}},
		Alerts:   []StockAlert{{Kind: KindMaterial, Code: "MP-1", Stock: 2.5, Minimum: 10, Unit: "m²"}},
	})
	require.Len(t, page.Cards, 4)
	assert.Equal(t, "Pedidos Pendientes", page.Cards[3].Label)
	assert.Equal(t, "1", page.Cards[3].Value)
	assert.Contains(t, string(page.StatusChart), "Entregado")
	assert.Contains(t, string(page.SalesChart), "jun 24")
	assert.Equal(t, "/pedidos?estado=entregado", page.Statuses[1].URL)
	require.Len(t, page.Alerts, 1)
	assert.Equal(t, "2,50 m²", page.Alerts[0].Stock)
	assert.Equal(t, "10 m²", page.Alerts[0].Minimum)
	assert.Equal(t, "/materias-primas?alerta_stock=true", page.Alerts[0].URL)
}
