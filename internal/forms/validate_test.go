package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customerRules() Rules {
	return Rules{
		"nombre":  {Required("El nombre es obligatorio")},
		"email":   {Required("El email es obligatorio"), Email("Email inválido")},
		"stock":   {Required("Obligatorio"), NonNegative("No puede ser negativo")},
		"precio":  {Positive("Debe ser mayor a 0")},
		"unidad":  {OneOf("Unidad inválida", "m", "m2", "kg", "unidad", "litro")},
		"entrega": {Date("Fecha inválida")},
	}
}

func TestValidateReportsFirstFailingRule(t *testing.T) {
	values := Values{
		"nombre": {"  "},
		"email":  {"no-es-email"},
		"stock":  {"-1"},
		"precio": {"0"},
		"unidad": {"toneladas"},
	}
	errs := Validate(values, customerRules())

	assert.Equal(t, "El nombre es obligatorio", errs["nombre"])
	assert.Equal(t, "Email inválido", errs["email"])
	assert.Equal(t, "No puede ser negativo", errs["stock"])
	assert.Equal(t, "Debe ser mayor a 0", errs["precio"])
	assert.Equal(t, "Unidad inválida", errs["unidad"])
	assert.NotContains(t, errs, "entrega")
}

func TestValidateEmptyEmailUsesRequiredMessage(t *testing.T) {
	errs := Validate(Values{"nombre": {"ACME"}, "stock": {"0"}}, customerRules())
	assert.Equal(t, "El email es obligatorio", errs["email"])
}

func TestValidateAcceptsValidForm(t *testing.T) {
	values := Values{
		"nombre":  {"ACME"},
		"email":   {"compras@acme.es"},
		"stock":   {"0"},
		"precio":  {"12,50"},
		"unidad":  {"kg"},
		"entrega": {"2024-05-01"},
	}
	errs := Validate(values, customerRules())
	assert.False(t, errs.Any(), "unexpected errors: %v", errs)
}

func TestValidateDoesNotMutateInput(t *testing.T) {
	values := Values{"nombre": {" ACME "}, "email": {"x"}}
	snapshot := values.Clone()
	_ = Validate(values, customerRules())
	require.Equal(t, snapshot, values)
}

func TestValidationErrorListsFields(t *testing.T) {
	err := &ValidationError{Fields: Errors{"email": "x", "nombre": "y"}}
	assert.Equal(t, "validation failed: email, nombre", err.Error())
}

func TestValuesHelpers(t *testing.T) {
	v := Values{}
	v.Set("activo", "on")
	v.Add("line", "1")
	v.Add("line", "2")
	v.Set("precio", "3,5")

	assert.True(t, v.Bool("activo"))
	assert.Equal(t, []string{"1", "2"}, v.All("line"))
	f, ok := v.Float("precio")
	assert.True(t, ok)
	assert.InDelta(t, 3.5, f, 1e-9)
	_, ok = v.Int("missing")
	assert.False(t, ok)
}
