package resource

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/fabrica-erp/panel/internal/export"
	"github.com/fabrica-erp/panel/internal/forms"
	"github.com/fabrica-erp/panel/internal/gateway"
	"github.com/fabrica-erp/panel/internal/listing"
	"github.com/fabrica-erp/panel/internal/shared"
)

// Handler serves the pages of one entity.
type Handler[T any] struct {
	base *Base
	cfg  Config[T]
}

// NewHandler constructs a Handler.
func NewHandler[T any](base *Base, cfg Config[T]) *Handler[T] {
	return &Handler[T]{base: base, cfg: cfg}
}

// Config returns the entity configuration.
func (h *Handler[T]) Config() Config[T] {
	return h.cfg
}

// MountRoutes registers the entity routes on r.
func (h *Handler[T]) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/export", h.export)
	if !h.cfg.CustomForms {
		r.Get("/new", h.newForm)
		r.Post("/", h.create)
		r.Get("/{id}", h.show)
		r.Get("/{id}/edit", h.editForm)
		r.Post("/{id}/edit", h.update)
	}
	r.Get("/{id}/delete", h.confirmDelete)
	r.Post("/{id}/delete", h.delete)
}

// Controller builds the per-request controller for this entity.
func (h *Handler[T]) Controller(r *http.Request) *listing.Controller[T] {
	return Controller(h.base, r, h.cfg.Descriptor, h.cfg.Store(h.base.Gateway(r)))
}

func (h *Handler[T]) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	gw := h.base.Gateway(r)
	ctrl := Controller(h.base, r, h.cfg.Descriptor, h.cfg.Store(gw))
	defer ctrl.Close()

	var loaded map[string][]Option
	var g errgroup.Group
	g.Go(func() error {
		return ctrl.Refresh(ctx)
	})
	if h.cfg.FilterOptions != nil {
		g.Go(func() error {
			opts, err := h.cfg.FilterOptions(ctx, gw)
			if err != nil {
				h.base.Log().Warn("filter options fetch failed", slog.String("entity", h.cfg.Descriptor.Name), slog.Any("error", err))
				return nil
			}
			loaded = opts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, gateway.ErrSessionExpired) {
			h.base.Expired(w, r)
			return
		}
		h.base.Log().Warn("list fetch failed", slog.String("entity", h.cfg.Descriptor.Name), slog.Any("error", err))
	}
	query := r.URL.Query()
	ApplyQuery(ctrl, h.cfg.Filters, query)

	cfg := h.cfg
	cfg.Filters = withOptions(h.cfg.Filters, loaded)
	page := BuildList(cfg, ctrl, query)
	status := http.StatusOK
	if page.Failed {
		status = http.StatusBadGateway
	}
	h.base.Render(w, r, status, "pages/resource_list.html", h.cfg.Title, page)
}

func (h *Handler[T]) export(w http.ResponseWriter, r *http.Request) {
	ctrl := h.Controller(r)
	defer ctrl.Close()

	if err := ctrl.Refresh(r.Context()); err != nil {
		h.base.Fail(w, r, err, h.cfg.Path, h.cfg.Descriptor.Messages.LoadFailed)
		return
	}
	query := r.URL.Query()
	ApplyQuery(ctrl, h.cfg.Filters, query)
	WriteExport(w, h.base, h.cfg.Sheet, ctrl.Filtered(), query.Get("format"))
}

// WriteExport streams items as xlsx (default) or csv.
func WriteExport[T any](w http.ResponseWriter, base *Base, sheet export.Sheet[T], items []T, format string) {
	ext, contentType := "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if format == "csv" {
		ext, contentType = "csv", "text/csv; charset=utf-8"
	}
	name := export.Filename(sheet.FilePrefix, base.now(), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	var err error
	if ext == "csv" {
		err = export.WriteCSV(w, sheet, items)
	} else {
		err = export.WriteXLSX(w, sheet, items)
	}
	if err != nil {
		base.Log().Error("export failed", slog.String("sheet", sheet.Name), slog.Any("error", err))
	}
}

func (h *Handler[T]) newForm(w http.ResponseWriter, r *http.Request) {
	ctrl := h.Controller(r)
	defer ctrl.Close()
	ctrl.OpenCreate()
	h.renderForm(w, r, http.StatusOK, ctrl, false, 0)
}

func (h *Handler[T]) create(w http.ResponseWriter, r *http.Request) {
	values, ok := PostedValues(w, r)
	if !ok {
		return
	}
	ctrl := h.Controller(r)
	defer ctrl.Close()
	ctrl.OpenCreate()
	ctrl.SetForm(values)
	h.submit(w, r, ctrl, false, 0)
}

func (h *Handler[T]) editForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	ctrl := h.Controller(r)
	defer ctrl.Close()
	if err := ctrl.OpenEdit(r.Context(), id); err != nil {
		h.base.Fail(w, r, err, h.cfg.Path, h.cfg.Descriptor.Messages.LoadFailed)
		return
	}
	h.renderForm(w, r, http.StatusOK, ctrl, true, id)
}

func (h *Handler[T]) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	values, ok := PostedValues(w, r)
	if !ok {
		return
	}
	ctrl := h.Controller(r)
	defer ctrl.Close()
	ctrl.ResumeEdit(id)
	ctrl.SetForm(values)
	h.submit(w, r, ctrl, true, id)
}

func (h *Handler[T]) submit(w http.ResponseWriter, r *http.Request, ctrl *listing.Controller[T], editing bool, id int64) {
	err := ctrl.Submit(r.Context())
	var verr *forms.ValidationError
	switch {
	case err == nil:
		http.Redirect(w, r, h.cfg.Path, http.StatusSeeOther)
	case errors.As(err, &verr):
		h.renderForm(w, r, http.StatusUnprocessableEntity, ctrl, editing, id)
	case errors.Is(err, gateway.ErrSessionExpired):
		h.base.Expired(w, r)
	default:
		h.base.Log().Warn("save failed", slog.String("entity", h.cfg.Descriptor.Name), slog.Any("error", err))
		h.renderForm(w, r, http.StatusBadRequest, ctrl, editing, id)
	}
}

func (h *Handler[T]) renderForm(w http.ResponseWriter, r *http.Request, status int, ctrl *listing.Controller[T], editing bool, id int64) {
	page := FormPage{
		Path:    h.cfg.Path,
		Action:  h.cfg.Path,
		Editing: editing,
		Errors:  ctrl.FormErrors(),
	}
	page.Title = h.cfg.NewLabel
	if editing {
		page.Title = "Editar " + h.cfg.Singular
		page.Action = fmt.Sprintf("%s/%d/edit", h.cfg.Path, id)
	}
	page.Fields = BuildFields(h.cfg.Fields, ctrl.Form(), page.Errors)
	h.base.Render(w, r, status, "pages/resource_form.html", page.Title, page)
}

func (h *Handler[T]) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	ctrl := h.Controller(r)
	defer ctrl.Close()
	if err := ctrl.OpenDetail(r.Context(), id); err != nil {
		h.base.Fail(w, r, err, h.cfg.Path, h.cfg.Descriptor.Messages.LoadFailed)
		return
	}
	page := BuildDetail(h.cfg, ctrl.Modal().Entity)
	h.base.Render(w, r, http.StatusOK, "pages/resource_detail.html", page.Title, page)
}

func (h *Handler[T]) confirmDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	ctrl := h.Controller(r)
	defer ctrl.Close()
	if err := ctrl.OpenDetail(r.Context(), id); err != nil {
		h.base.Fail(w, r, err, h.cfg.Path, h.cfg.Descriptor.Messages.LoadFailed)
		return
	}
	ctrl.RequestRemove(id)
	page := ConfirmPage{
		Title:   "Eliminar " + h.cfg.Singular,
		Message: fmt.Sprintf("¿Estás seguro de eliminar %s?", h.cfg.label(ctrl.Modal().Entity)),
		Action:  fmt.Sprintf("%s/%d/delete", h.cfg.Path, id),
		Cancel:  h.cfg.Path,
		Confirm: "Eliminar",
	}
	h.base.Render(w, r, http.StatusOK, "pages/confirm.html", page.Title, page)
}

func (h *Handler[T]) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	ctrl := h.Controller(r)
	defer ctrl.Close()
	ctrl.RequestRemove(id)
	err := ctrl.ConfirmRemove(r.Context(), r.PostFormValue("confirm") == "yes")
	if errors.Is(err, gateway.ErrSessionExpired) {
		h.base.Expired(w, r)
		return
	}
	if err != nil {
		h.base.Log().Warn("delete failed", slog.String("entity", h.cfg.Descriptor.Name), slog.Int64("id", id), slog.Any("error", err))
	}
	http.Redirect(w, r, h.cfg.Path, http.StatusSeeOther)
}

func (h *Handler[T]) id(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := ParseID(r)
	if err != nil {
		h.base.NotFound(w, r)
		return 0, false
	}
	return id, true
}

// ParseID reads the {id} route parameter.
func ParseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}

// PostedValues parses the form body without the CSRF field.
func PostedValues(w http.ResponseWriter, r *http.Request) (forms.Values, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return nil, false
	}
	values := forms.FromURL(r.PostForm)
	values.Del(shared.CSRFFormField)
	return values, true
}
