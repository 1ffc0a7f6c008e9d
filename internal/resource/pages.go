package resource

import (
	"net/url"
	"strconv"

	"github.com/fabrica-erp/panel/internal/forms"
	"github.com/fabrica-erp/panel/internal/listing"
)

// Cell is one rendered table cell.
type Cell struct {
	Text  string
	Badge string
	Align string
}

// Row is one rendered table row.
type Row struct {
	ID    int64
	Cells []Cell
}

// OptionView is a select option with its selection state.
type OptionView struct {
	Value    string
	Label    string
	Selected bool
}

// FilterView is a filter control with its current value.
type FilterView struct {
	Name    string
	Label   string
	Kind    FieldKind
	Value   string
	Options []OptionView
}

// PageLink is one pagination link.
type PageLink struct {
	Number  int
	URL     string
	Current bool
}

// ListPage is the data of pages/resource_list.html.
type ListPage struct {
	Title             string
	Path              string
	NewLabel          string
	SearchPlaceholder string
	Search            string
	Headers           []Cell
	Rows              []Row
	Filters           []FilterView
	Cards             []Card
	Failed            bool
	Error             string
	RetryURL          string
	Total             int
	From              int
	To                int
	Page              int
	TotalPages        int
	Pages             []PageLink
	PrevURL           string
	NextURL           string
	ExportXLSX        string
	ExportCSV         string
	HasFilters        bool
}

// FieldView is a form control with its value and error.
type FieldView struct {
	Field
	Value   string
	Checked bool
	Error   string
	Options []OptionView
}

// FormPage is the data of pages/resource_form.html.
type FormPage struct {
	Title   string
	Path    string
	Action  string
	Editing bool
	Fields  []FieldView
	Errors  forms.Errors
}

// DetailRow is one label/value pair of a detail page.
type DetailRow struct {
	Label string
	Value string
	Badge string
}

// DetailPage is the data of pages/resource_detail.html.
type DetailPage struct {
	Title string
	Path  string
	ID    int64
	Rows  []DetailRow
}

// ConfirmPage is the data of pages/confirm.html.
type ConfirmPage struct {
	Title   string
	Message string
	Action  string
	Cancel  string
	Confirm string
}

// BuildFields pairs fields with the form values and errors.
func BuildFields(fields []Field, values forms.Values, errs forms.Errors) []FieldView {
	out := make([]FieldView, 0, len(fields))
	for _, f := range fields {
		value := values.Get(f.Name)
		fv := FieldView{Field: f, Value: value, Error: errs[f.Name]}
		if f.Kind == FieldCheckbox {
			fv.Checked = values.Bool(f.Name)
		}
		fv.Options = options(f.Options, value)
		out = append(out, fv)
	}
	return out
}

func options(opts []Option, selected string) []OptionView {
	if len(opts) == 0 {
		return nil
	}
	out := make([]OptionView, len(opts))
	for i, o := range opts {
		out[i] = OptionView{Value: o.Value, Label: o.Label, Selected: o.Value == selected}
	}
	return out
}

// BuildFilters renders filter controls with their active values.
func BuildFilters(filters []FilterField, active map[string]string) []FilterView {
	out := make([]FilterView, 0, len(filters))
	for _, f := range filters {
		kind := f.Kind
		if kind == "" {
			kind = FieldSelect
		}
		out = append(out, FilterView{
			Name:    f.Name,
			Label:   f.Label,
			Kind:    kind,
			Value:   active[f.Name],
			Options: options(f.Options, active[f.Name]),
		})
	}
	return out
}

// ApplyQuery copies search, filters and page from the query string. Page is
// applied last because search and filters reset it.
func ApplyQuery[T any](ctrl *listing.Controller[T], filters []FilterField, q url.Values) {
	ctrl.SetSearch(q.Get("q"))
	for _, f := range filters {
		ctrl.SetFilter(f.Name, q.Get(f.Name))
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		ctrl.SetPage(page)
	}
}

// BuildList assembles the list page for the controller's current view.
func BuildList[T any](cfg Config[T], ctrl *listing.Controller[T], query url.Values) ListPage {
	state := ctrl.State()
	v := ctrl.View()
	page := ListPage{
		Title:             cfg.Title,
		Path:              cfg.Path,
		NewLabel:          cfg.NewLabel,
		SearchPlaceholder: cfg.SearchPlaceholder,
		Search:            ctrl.Search(),
		Filters:           BuildFilters(cfg.Filters, ctrl.Filters()),
		Failed:            state.Status == listing.Failed,
		Error:             state.Message,
		RetryURL:          cfg.Path + encode(query),
		Total:             v.Pagination.Total,
		From:              v.From,
		To:                v.To,
		Page:              v.Pagination.Page,
		TotalPages:        v.Pagination.TotalPages,
		HasFilters:        len(ctrl.Filters()) > 0 || ctrl.Search() != "",
	}
	for _, col := range cfg.Columns {
		page.Headers = append(page.Headers, Cell{Text: col.Label, Align: col.Align})
	}
	for _, item := range v.Items {
		row := Row{ID: cfg.Descriptor.ID(item)}
		for _, col := range cfg.Columns {
			cell := Cell{Text: col.Value(item), Align: col.Align}
			if col.Badge != nil {
				cell.Badge = col.Badge(item)
			}
			row.Cells = append(row.Cells, cell)
		}
		page.Rows = append(page.Rows, row)
	}
	if cfg.Summary != nil && !page.Failed {
		page.Cards = cfg.Summary(ctrl.Items())
	}

	for _, n := range v.Pagination.Pages() {
		page.Pages = append(page.Pages, PageLink{Number: n, URL: pageURL(cfg.Path, query, n), Current: n == v.Pagination.Page})
	}
	if v.Pagination.HasPrev() {
		page.PrevURL = pageURL(cfg.Path, query, v.Pagination.Page-1)
	}
	if v.Pagination.HasNext() {
		page.NextURL = pageURL(cfg.Path, query, v.Pagination.Page+1)
	}
	page.ExportXLSX = exportURL(cfg.Path, query, "xlsx")
	page.ExportCSV = exportURL(cfg.Path, query, "csv")
	return page
}

// BuildDetail renders the detail rows of item.
func BuildDetail[T any](cfg Config[T], item T) DetailPage {
	page := DetailPage{Title: cfg.label(item), Path: cfg.Path, ID: cfg.Descriptor.ID(item)}
	for _, col := range cfg.details() {
		row := DetailRow{Label: col.Label, Value: col.Value(item)}
		if col.Badge != nil {
			row.Badge = col.Badge(item)
		}
		page.Rows = append(page.Rows, row)
	}
	return page
}

func pageURL(path string, query url.Values, page int) string {
	q := clone(query)
	q.Set("page", strconv.Itoa(page))
	return path + encode(q)
}

func exportURL(path string, query url.Values, format string) string {
	q := clone(query)
	q.Del("page")
	q.Set("format", format)
	return path + "/export" + encode(q)
}

func clone(query url.Values) url.Values {
	out := url.Values{}
	for k, v := range query {
		if len(v) > 0 && v[0] != "" {
			out[k] = append([]string(nil), v...)
		}
	}
	return out
}

func encode(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
