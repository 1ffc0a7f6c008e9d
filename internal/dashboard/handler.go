package dashboard

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fabrica-erp/panel/internal/dashboard/chart"
	"github.com/fabrica-erp/panel/internal/gateway"
	"github.com/fabrica-erp/panel/internal/resource"
	"github.com/fabrica-erp/panel/internal/sales/orders"
	"github.com/fabrica-erp/panel/internal/shared"
	"github.com/fabrica-erp/panel/internal/view"
)

var monthNames = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"}

var statusColors = map[orders.Status]string{
	orders.StatusPending:    "#f59e0b",
	orders.StatusInProgress: "#3b82f6",
	orders.StatusProduced:   "#8b5cf6",
	orders.StatusDelivered:  "#16a34a",
	orders.StatusCancelled:  "#dc2626",
}

// StatusRow is one status of the orders table.
type StatusRow struct {
	Status string
	Label  string
	Tone   string
	Count  int
	URL    string
}

// AlertRow is one rendered stock alert.
type AlertRow struct {
	Kind    string
	Code    string
	Name    string
	Stock   string
	Minimum string
	URL     string
}

// Page is the data of pages/dashboard.html.
type Page struct {
	Cards       []resource.Card
	StatusChart template.HTML
	SalesChart  template.HTML
	Statuses    []StatusRow
	Alerts      []AlertRow
	LastScan    string
	Failed      bool
	Error       string
}

// Handler serves the dashboard.
type Handler struct {
	base    *resource.Base
	service *Service
}

// NewHandler builds the dashboard handler.
func NewHandler(base *resource.Base, service *Service) *Handler {
	return &Handler{base: base, service: service}
}

// MountRoutes registers the dashboard route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.index)
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	user := ""
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		user = sess.Username()
	}
	summary, err := h.service.Summary(r.Context(), h.base.Gateway(r), user)
	if errors.Is(err, gateway.ErrSessionExpired) {
		h.base.Expired(w, r)
		return
	}
	if err != nil {
		h.base.Log().Warn("dashboard load failed", slog.Any("error", err))
		h.base.Render(w, r, http.StatusBadGateway, "pages/dashboard.html", "Dashboard", Page{
			Failed: true,
			Error:  "Error al cargar los datos",
		})
		return
	}
	page := BuildPage(summary)
	if snap, ok := h.service.LastScan(r.Context()); ok {
		page.LastScan = snap.CheckedAt.Local().Format("02/01/2006 15:04")
	}
	h.base.Render(w, r, http.StatusOK, "pages/dashboard.html", "Dashboard", page)
}

// BuildPage renders the summary into cards, charts and tables.
func BuildPage(s Summary) Page {
	page := Page{
		Cards: []resource.Card{
			{Label: "Total Clientes", Value: strconv.Itoa(s.Customers), Tone: resource.ToneInfo},
			{Label: "Total Pedidos", Value: strconv.Itoa(s.Orders), Tone: resource.ToneInfo},
			{Label: "Total Productos", Value: strconv.Itoa(s.Products), Tone: resource.ToneInfo},
			{Label: "Pedidos Pendientes", Value: strconv.Itoa(s.Pending), Tone: resource.ToneWarn},
		},
	}

	bars := make([]chart.Bar, 0, len(s.ByStatus))
	for _, c := range s.ByStatus {
		bars = append(bars, chart.Bar{Label: c.Status.Label(), Value: float64(c.Count), Color: statusColors[c.Status]})
		page.Statuses = append(page.Statuses, StatusRow{
			Status: string(c.Status),
			Label:  c.Status.Label(),
			Tone:   c.Status.Tone(),
			Count:  c.Count,
			URL:    orders.Path + "?estado=" + string(c.Status),
		})
	}
	if svg, err := chart.Bars(0, 0, bars, chart.Opts{Title: "Pedidos por estado", Description: "Número de pedidos en cada estado"}); err == nil {
		page.StatusChart = svg
	}

	values := make([]float64, len(s.Sales))
	labels := make([]string, len(s.Sales))
	for i, m := range s.Sales {
		values[i] = m.Total
		labels[i] = monthLabel(m.Month)
	}
	if svg, err := chart.Line(0, 0, values, labels, chart.Opts{Title: "Ventas mensuales", Description: "Importe de pedidos por mes", Tick: chart.Euros}); err == nil {
		page.SalesChart = svg
	}

	for _, a := range s.Alerts {
		row := AlertRow{
			Code:    a.Code,
			Name:    a.Name,
			Stock:   view.Number(a.Stock) + " " + a.Unit,
			Minimum: view.Number(a.Minimum) + " " + a.Unit,
		}
		if a.Kind == KindProduct {
			row.Kind = "Producto"
			row.URL = "/productos?alerta_stock=true"
		} else {
			row.Kind = "Materia prima"
			row.URL = "/materias-primas?alerta_stock=true"
		}
		page.Alerts = append(page.Alerts, row)
	}
	return page
}

// monthLabel turns "2024-03" into "mar 24".
func monthLabel(month string) string {
	if len(month) != 7 {
		return month
	}
	m, err := strconv.Atoi(month[5:])
	if err != nil || m < 1 || m > 12 {
		return month
	}
	return monthNames[m-1] + " " + month[2:4]
}
