package orders

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/fabrica-erp/panel/internal/forms"
	"github.com/fabrica-erp/panel/internal/gateway"
	"github.com/fabrica-erp/panel/internal/masterdata/products"
	"github.com/fabrica-erp/panel/internal/resource"
	"github.com/fabrica-erp/panel/internal/sales/customers"
	"github.com/fabrica-erp/panel/internal/view"
)

// Catalog is the customer and product data an order form needs.
type Catalog struct {
	Customers []customers.Customer
	Products  []products.Product
}

// LoadCatalog fetches customers and products in parallel.
func LoadCatalog(ctx context.Context, gw *gateway.Gateway) (Catalog, error) {
	var cat Catalog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := customers.Store(gw).List(gctx)
		cat.Customers = items
		return err
	})
	g.Go(func() error {
		items, err := products.Store(gw).List(gctx)
		cat.Products = items
		return err
	})
	if err := g.Wait(); err != nil {
		return Catalog{}, err
	}
	return cat, nil
}

// Price is the sale price of product id.
func (c Catalog) Price(id int64) (float64, bool) {
	for _, p := range c.Products {
		if p.ID == id {
			return p.PrecioVenta.Float(), true
		}
	}
	return 0, false
}

// Reprice applies the catalog price to every row whose product changed since
// the form was rendered.
func (c Catalog) Reprice(v forms.Values, e *LineEditor) {
	rows := e.Rows()
	for _, i := range ChangedProducts(v) {
		if i >= len(rows) {
			continue
		}
		if price, ok := c.Price(rows[i].Product); ok {
			e.SetProduct(i, rows[i].Product, price)
		}
	}
}

// ProductOption is a product choice of a line.
type ProductOption struct {
	Value    string
	Label    string
	Price    string
	Selected bool
}

// LineView is one rendered line row.
type LineView struct {
	Index     int
	Product   string
	Quantity  string
	UnitPrice string
	Subtotal  string
	Label     string
	Products  []ProductOption
}

// FormPage is the data of pages/order_form.html.
type FormPage struct {
	Title      string
	Path       string
	Action     string
	Editing    bool
	Fields     []resource.FieldView
	Lines      []LineView
	LinesError string
	CanRemove  bool
	Locked     bool
	Total      string
	Errors     forms.Errors
}

func (c Catalog) fields() []resource.Field {
	clientes := []resource.Option{{Value: "", Label: "Seleccionar cliente"}}
	clientes = append(clientes, customerOptions(c.Customers)...)
	return []resource.Field{
		{Name: "numero_pedido", Label: "Número de pedido", Kind: resource.FieldText, Required: true, Placeholder: "PED-0001"},
		{Name: "cliente", Label: "Cliente", Kind: resource.FieldSelect, Options: clientes, Required: true},
		{Name: "fecha_entrega_estimada", Label: "Fecha de entrega estimada", Kind: resource.FieldDate, Required: true},
		{Name: "estado", Label: "Estado", Kind: resource.FieldSelect, Options: statusOptions("")},
		{Name: "observaciones", Label: "Observaciones", Kind: resource.FieldTextarea, Wide: true},
	}
}

// BuildForm assembles the order form from the submitted or loaded values.
func BuildForm(cat Catalog, values forms.Values, errs forms.Errors, editing bool, id int64) FormPage {
	editor := EditorFromForm(values)
	page := FormPage{
		Title:      "Nuevo Pedido",
		Path:       Path,
		Action:     Path,
		Editing:    editing,
		Fields:     resource.BuildFields(cat.fields(), values, errs),
		LinesError: errs["lineas"],
		CanRemove:  !editing && editor.Len() > 1,
		Locked:     editing,
		Total:      view.Money(editor.ValidTotal()),
		Errors:     errs,
	}
	if editing {
		page.Title = "Editar Pedido"
		page.Action = fmt.Sprintf("%s/%d/edit", Path, id)
	}
	for i, row := range editor.Rows() {
		product := ""
		if row.Product > 0 {
			product = strconv.FormatInt(row.Product, 10)
		}
		line := LineView{
			Index:     i,
			Product:   product,
			Quantity:  strconv.Itoa(row.Quantity),
			UnitPrice: strconv.FormatFloat(row.UnitPrice, 'f', 2, 64),
			Subtotal:  view.Money(row.Subtotal()),
		}
		line.Products = append(line.Products, ProductOption{Value: "", Label: "Seleccionar producto"})
		for _, p := range cat.Products {
			value := strconv.FormatInt(p.ID, 10)
			line.Products = append(line.Products, ProductOption{
				Value:    value,
				Label:    p.Label(),
				Price:    strconv.FormatFloat(p.PrecioVenta.Float(), 'f', 2, 64),
				Selected: value == product,
			})
			if value == product {
				line.Label = p.Label()
			}
		}
		page.Lines = append(page.Lines, line)
	}
	return page
}

// StatusOption is a choice of the status change control.
type StatusOption struct {
	Value    string
	Label    string
	Selected bool
}

// DetailLine is one line of the detail page and the order sheet.
type DetailLine struct {
	Code      string
	Product   string
	Quantity  int
	UnitPrice string
	Subtotal  string
}

// DetailPage is the data of pages/order_detail.html and pdf/order_sheet.html.
type DetailPage struct {
	ID           int64
	Path         string
	Number       string
	Customer     *customers.Customer
	CustomerName string
	OrderDate    string
	DeliveryDate string
	Status       Status
	StatusLabel  string
	StatusTone   string
	Statuses     []StatusOption
	Notes        string
	Lines        []DetailLine
	Total        string
	GeneratedAt  string
	PDFAvailable bool
}

// BuildDetail renders an order detail.
func BuildDetail(o Order) DetailPage {
	page := DetailPage{
		ID:           o.ID,
		Path:         Path,
		Number:       o.NumeroPedido,
		Customer:     o.ClienteDatos,
		CustomerName: o.CustomerName(),
		OrderDate:    view.Date(o.FechaPedido),
		DeliveryDate: view.Date(o.FechaEntregaEstimada),
		Status:       o.Estado,
		StatusLabel:  o.Estado.Label(),
		StatusTone:   o.Estado.Tone(),
		Notes:        o.Observaciones,
		Total:        view.Money(o.Total.Float()),
	}
	for _, s := range Statuses {
		page.Statuses = append(page.Statuses, StatusOption{Value: string(s), Label: s.Label(), Selected: s == o.Estado})
	}
	for _, l := range o.Lineas {
		name := l.ProductoNombre
		if name == "" {
			name = fmt.Sprintf("Producto #%d", l.Producto)
		}
		page.Lines = append(page.Lines, DetailLine{
			Code:      l.ProductoCodigo,
			Product:   name,
			Quantity:  l.Cantidad,
			UnitPrice: view.Money(l.PrecioUnitario.Float()),
			Subtotal:  view.Money(l.Subtotal.Float()),
		})
	}
	return page
}
