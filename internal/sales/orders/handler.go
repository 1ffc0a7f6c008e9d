package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/fabrica-erp/panel/internal/forms"
	"github.com/fabrica-erp/panel/internal/gateway"
	"github.com/fabrica-erp/panel/internal/listing"
	"github.com/fabrica-erp/panel/internal/platform/httpx"
	"github.com/fabrica-erp/panel/internal/resource"
	"github.com/fabrica-erp/panel/internal/shared"
	"github.com/fabrica-erp/panel/internal/view"
)

// Flash messages of the status change and PDF actions.
const (
	StatusUpdated    = "Estado actualizado exitosamente"
	StatusFailed     = "Error al actualizar el estado"
	PDFUnavailable   = "La generación de PDF no está disponible"
	PDFFailed        = "Error al generar el PDF del pedido"
	actionAddLine    = "add_line"
	actionRemoveLine = "remove_line:"
)

// PDFRenderer converts an HTML document to PDF.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, filename, document string) ([]byte, error)
}

// Handler serves the order pages. List, export and delete come from the
// generic resource handler.
type Handler struct {
	base  *resource.Base
	pages *resource.Handler[Order]
	pdf   PDFRenderer
}

// NewHandler builds the order handler; pdf may be nil.
func NewHandler(base *resource.Base, pdf PDFRenderer) *Handler {
	return &Handler{base: base, pages: resource.NewHandler(base, Config()), pdf: pdf}
}

// MountRoutes registers the order routes on r.
func (h *Handler) MountRoutes(r chi.Router) {
	h.pages.MountRoutes(r)
	r.Get("/new", h.newForm)
	r.Post("/", h.create)
	r.Post("/lines/preview", h.preview)
	r.Get("/{id}", h.show)
	r.Get("/{id}/edit", h.editForm)
	r.Post("/{id}/edit", h.update)
	r.Post("/{id}/estado", h.changeStatus)
	r.Get("/{id}/pdf", h.pdfSheet)
}

func (h *Handler) controller(r *http.Request, gw *gateway.Gateway) *listing.Controller[Order] {
	return resource.Controller(h.base, r, Descriptor(), NewStore(gw))
}

func (h *Handler) newForm(w http.ResponseWriter, r *http.Request) {
	gw := h.base.Gateway(r)
	cat, err := LoadCatalog(r.Context(), gw)
	if err != nil {
		h.base.Fail(w, r, err, Path, Descriptor().Messages.LoadFailed)
		return
	}
	h.render(w, r, http.StatusOK, BuildForm(cat, Defaults(), nil, false, 0))
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	gw := h.base.Gateway(r)
	ctrl := h.controller(r, gw)
	defer ctrl.Close()

	var cat Catalog
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		return ctrl.OpenEdit(ctx, id)
	})
	g.Go(func() error {
		var err error
		cat, err = LoadCatalog(ctx, gw)
		return err
	})
	if err := g.Wait(); err != nil {
		h.base.Fail(w, r, err, Path, Descriptor().Messages.LoadFailed)
		return
	}
	h.render(w, r, http.StatusOK, BuildForm(cat, ctrl.Form(), nil, true, id))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, false, 0)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	h.save(w, r, true, id)
}

// save handles every POST of the order form. The line buttons only re-render
// the form; the submit button validates and persists.
func (h *Handler) save(w http.ResponseWriter, r *http.Request, editing bool, id int64) {
	values, ok := resource.PostedValues(w, r)
	if !ok {
		return
	}
	action := values.Get("action")
	values.Del("action")

	gw := h.base.Gateway(r)
	cat, err := LoadCatalog(r.Context(), gw)
	if err != nil {
		h.base.Fail(w, r, err, Path, Descriptor().Messages.LoadFailed)
		return
	}
	// Lines of an existing order are read-only; only the header is updated.
	editor := EditorFromForm(values)
	if !editing {
		cat.Reprice(values, editor)
		switch {
		case action == actionAddLine:
			editor.Add()
		case strings.HasPrefix(action, actionRemoveLine):
			if i, err := strconv.Atoi(strings.TrimPrefix(action, actionRemoveLine)); err == nil {
				editor.Remove(i)
			}
		}
	}
	WriteLines(values, editor)
	if action != "" {
		h.render(w, r, http.StatusOK, BuildForm(cat, values, nil, editing, id))
		return
	}

	ctrl := h.controller(r, gw)
	defer ctrl.Close()
	if editing {
		ctrl.ResumeEdit(id)
	} else {
		ctrl.OpenCreate()
	}
	ctrl.SetForm(values)

	err = ctrl.Submit(r.Context())
	var verr *forms.ValidationError
	switch {
	case err == nil:
		http.Redirect(w, r, Path, http.StatusSeeOther)
	case errors.As(err, &verr):
		h.render(w, r, http.StatusUnprocessableEntity, BuildForm(cat, values, ctrl.FormErrors(), editing, id))
	case errors.Is(err, gateway.ErrSessionExpired):
		h.base.Expired(w, r)
	default:
		h.base.Log().Warn("order save failed", slog.Bool("editing", editing), slog.Any("error", err))
		h.render(w, r, http.StatusBadRequest, BuildForm(cat, values, nil, editing, id))
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page FormPage) {
	h.base.Render(w, r, status, "pages/order_form.html", page.Title, page)
}

// PreviewLine is one line of a preview request.
type PreviewLine struct {
	Producto       int64   `json:"producto"`
	Cantidad       int     `json:"cantidad"`
	PrecioUnitario float64 `json:"precio_unitario"`
}

// PreviewRequest is the body of POST /pedidos/lines/preview.
type PreviewRequest struct {
	Lines []PreviewLine `json:"lines"`
}

// PreviewLineResult is the recomputed subtotal of one line.
type PreviewLineResult struct {
	Subtotal      float64 `json:"subtotal"`
	SubtotalLabel string  `json:"subtotal_label"`
	Valid         bool    `json:"valid"`
}

// PreviewResponse carries the line subtotals and the order total.
type PreviewResponse struct {
	Lines      []PreviewLineResult `json:"lines"`
	Total      float64             `json:"total"`
	TotalLabel string              `json:"total_label"`
	ValidLines int                 `json:"valid_lines"`
}

// Preview recomputes the line subtotals. The total only counts the lines that
// would be saved.
func Preview(req PreviewRequest) PreviewResponse {
	rows := make([]Row, 0, len(req.Lines))
	for _, l := range req.Lines {
		rows = append(rows, Row{Product: l.Producto, Quantity: l.Cantidad, UnitPrice: l.PrecioUnitario})
	}
	editor := NewLineEditor(rows...)
	resp := PreviewResponse{
		Total:      editor.ValidTotal(),
		ValidLines: len(editor.ValidLines()),
	}
	for _, row := range editor.Rows() {
		resp.Lines = append(resp.Lines, PreviewLineResult{
			Subtotal:      row.Subtotal(),
			SubtotalLabel: view.Money(row.Subtotal()),
			Valid:         row.Valid(),
		})
	}
	resp.TotalLabel = view.Money(resp.Total)
	return resp
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, Preview(req))
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	order, err := NewStore(h.base.Gateway(r)).Get(r.Context(), id)
	if err != nil {
		h.base.Fail(w, r, err, Path, Descriptor().Messages.LoadFailed)
		return
	}
	page := BuildDetail(order)
	page.PDFAvailable = h.pdf != nil
	h.base.Render(w, r, http.StatusOK, "pages/order_detail.html", "Pedido "+order.NumeroPedido, page)
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	back := fmt.Sprintf("%s/%d", Path, id)
	if r.PostFormValue("return") == "list" {
		back = Path
	}
	status := Status(r.PostFormValue("estado"))
	err := NewStore(h.base.Gateway(r)).ChangeStatus(r.Context(), id, status)
	switch {
	case err == nil:
		if h.base.OnChange != nil {
			h.base.OnChange(r.Context())
		}
		h.base.Redirect(w, r, back, shared.FlashSuccess, StatusUpdated)
	case errors.Is(err, gateway.ErrSessionExpired):
		h.base.Expired(w, r)
	default:
		h.base.Log().Warn("order status change failed", slog.Int64("id", id), slog.String("estado", string(status)), slog.Any("error", err))
		h.base.Redirect(w, r, back, shared.FlashError, StatusFailed)
	}
}

func (h *Handler) pdfSheet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	back := fmt.Sprintf("%s/%d", Path, id)
	if h.pdf == nil {
		h.base.Redirect(w, r, back, shared.FlashWarning, PDFUnavailable)
		return
	}
	order, err := NewStore(h.base.Gateway(r)).Get(r.Context(), id)
	if err != nil {
		h.base.Fail(w, r, err, Path, Descriptor().Messages.LoadFailed)
		return
	}
	page := BuildDetail(order)
	page.GeneratedAt = h.base.Today()
	document, err := h.base.Templates.RenderDocument("pdf/order_sheet.html", page)
	if err != nil {
		h.base.Log().Error("render order sheet", slog.Int64("id", id), slog.Any("error", err))
		h.base.Redirect(w, r, back, shared.FlashError, PDFFailed)
		return
	}
	filename := "Pedido_" + order.NumeroPedido
	pdf, err := h.pdf.RenderHTML(r.Context(), filename, document)
	if err != nil {
		h.base.Log().Error("convert order sheet", slog.Int64("id", id), slog.Any("error", err))
		h.base.Redirect(w, r, back, shared.FlashError, PDFFailed)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename+".pdf"))
	_, _ = w.Write(pdf)
}

func (h *Handler) id(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := resource.ParseID(r)
	if err != nil {
		h.base.NotFound(w, r)
		return 0, false
	}
	return id, true
}
