package orders

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabrica-erp/panel/internal/forms"
	"github.com/fabrica-erp/panel/internal/gateway"
)

func orderForm() forms.Values {
	v := forms.Values{}
	v.Set("numero_pedido", "PED-001")
	v.Set("cliente", "3")
	v.Set("fecha_entrega_estimada", "2024-07-01")
	v.Set("estado", "pendiente")
	return v
}

func addLine(v forms.Values, product, quantity, price string) {
	v.Add(keyProduct, product)
	v.Add(keyPrevProduct, product)
	v.Add(keyQuantity, quantity)
	v.Add(keyPrice, price)
}

func TestPayloadFromForm(t *testing.T) {
	v := orderForm()
	addLine(v, "1", "2", "10.00")
	addLine(v, "2", "1", "5,00")
	addLine(v, "", "1", "8.00")

	assert.Empty(t, Validate(v))
	payload, err := PayloadFromForm(v)
	require.NoError(t, err)
	sub := payload.(Submission)
	assert.Equal(t, gateway.Decimal(25), sub.Order.Total)
	assert.Equal(t, int64(3), sub.Order.Cliente)
	assert.Equal(t, StatusPending, sub.Order.Estado)
	require.Len(t, sub.Lines, 2)
	assert.Equal(t, LinePayload{Producto: 1, Cantidad: 2, PrecioUnitario: 10, Subtotal: 20}, sub.Lines[0])
	assert.Equal(t, LinePayload{Producto: 2, Cantidad: 1, PrecioUnitario: 5, Subtotal: 5}, sub.Lines[1])
}

func TestPayloadWithoutValidLines(t *testing.T) {
	v := orderForm()
	addLine(v, "", "1", "0")
	addLine(v, "4", "0", "3")

	errs := Validate(v)
	assert.Equal(t, NoLinesMessage, errs["lineas"])

	_, err := PayloadFromForm(v)
	var verr *forms.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, NoLinesMessage, verr.Fields["lineas"])
}

func TestValidateHeader(t *testing.T) {
	v := forms.Values{}
	addLine(v, "1", "1", "1")
	v.Set("estado", "archivado")
	errs := Validate(v)
	assert.Equal(t, "Debe seleccionar un cliente", errs["cliente"])
	assert.Contains(t, errs, "numero_pedido")
	assert.Contains(t, errs, "fecha_entrega_estimada")
	assert.Equal(t, "El estado no es válido", errs["estado"])
	assert.NotContains(t, errs, "lineas")
}

func TestChangedProductsAndWriteLines(t *testing.T) {
	v := forms.Values{}
	v[keyProduct] = []string{"1", "2", ""}
	v[keyPrevProduct] = []string{"1", "5", ""}
	v[keyQuantity] = []string{"1", "1", "1"}
	v[keyPrice] = []string{"3", "4", "0"}
	assert.Equal(t, []int{1}, ChangedProducts(v))

	e := EditorFromForm(v)
	e.SetProduct(1, 2, 7.5)
	WriteLines(v, e)
	assert.Equal(t, []string{"1", "2", ""}, v.All(keyPrevProduct))
	assert.Equal(t, []string{"3.00", "7.50", "0.00"}, v.All(keyPrice))
	assert.Empty(t, ChangedProducts(v))
}

func TestToFormRoundTrip(t *testing.T) {
	o := Order{
		NumeroPedido:         "PED-9",
		Cliente:              4,
		FechaEntregaEstimada: "2024-05-02",
		Estado:               StatusInProgress,
		Lineas: []Line{
			{Producto: 1, Cantidad: 2, PrecioUnitario: 3.5},
		},
	}
	v := ToForm(o)
	assert.Equal(t, "4", v.Get("cliente"))
	assert.Equal(t, "en_produccion", v.Get("estado"))
	e := EditorFromForm(v)
	assert.Equal(t, []Row{{Product: 1, Quantity: 2, UnitPrice: 3.5}}, e.Rows())

	d := Defaults()
	assert.Equal(t, "pendiente", d.Get("estado"))
	assert.Equal(t, 1, EditorFromForm(d).Len())
}
