package products

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabrica-erp/panel/internal/forms"
	"github.com/fabrica-erp/panel/internal/listing"
)

func TestRules(t *testing.T) {
	v := Defaults()
	errs := forms.Validate(v, Rules)
	assert.Equal(t, "El código es obligatorio", errs["codigo"])
	assert.Equal(t, "El precio debe ser mayor a 0", errs["precio_venta"])
	assert.NotContains(t, errs, "stock_actual")

	v.Set("codigo", "MARTINA-001")
	v.Set("nombre", "Silla Martina")
	v.Set("precio_venta", "89,90")
	v.Set("stock_minimo", "-1")
	v.Set("tiempo_fabricacion", "-2")
	errs = forms.Validate(v, Rules)
	assert.Equal(t, forms.Errors{
		"stock_minimo":       "El stock mínimo no puede ser negativo",
		"tiempo_fabricacion": "El tiempo no puede ser negativo",
	}, errs)
}

func TestPayloadFromForm(t *testing.T) {
	v := Defaults()
	v.Set("codigo", " MARTINA-001 ")
	v.Set("nombre", "Silla Martina")
	v.Set("stock_actual", "12")
	v.Set("precio_venta", "89,9")
	payload, err := PayloadFromForm(v)
	require.NoError(t, err)

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"codigo":"MARTINA-001","nombre":"Silla Martina","descripcion":"","stock_actual":12,"stock_minimo":0,"precio_venta":"89.90","tiempo_fabricacion":0}`, string(body))
}

func TestDecodeAndAlertFilter(t *testing.T) {
	var items []Product
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id":1,"codigo":"MARTINA-001","nombre":"Silla","stock_actual":2,"stock_minimo":5,"precio_venta":"89.90","tiempo_fabricacion":4,"alerta_stock":true},
		{"id":2,"codigo":"MARIA-001","nombre":"Mesa","stock_actual":9,"stock_minimo":3,"precio_venta":120,"tiempo_fabricacion":8,"alerta_stock":false}
	]`), &items))
	assert.InDelta(t, 89.90, items[0].PrecioVenta.Float(), 0.001)

	view := listing.ComputeView(items, listing.Query{Filters: map[string]string{"alerta_stock": "true"}, Page: 1, PageSize: 10}, Descriptor())
	require.Len(t, view.Items, 1)
	assert.Equal(t, "MARTINA-001", view.Items[0].Codigo)

	form := ToForm(items[1])
	assert.Equal(t, "120.00", form.Get("precio_venta"))

	cards := Summary(items)
	assert.Equal(t, "2", cards[0].Value)
	assert.Equal(t, "11", cards[1].Value)
	assert.Equal(t, "1", cards[2].Value)
}
