package customers

import (
	"strconv"

	"github.com/fabrica-erp/panel/internal/export"
	"github.com/fabrica-erp/panel/internal/gateway"
	"github.com/fabrica-erp/panel/internal/listing"
	"github.com/fabrica-erp/panel/internal/resource"
)

// Store returns the /clientes/ collection bound to gw.
func Store(gw *gateway.Gateway) listing.Store[Customer] {
	return gateway.NewResource[Customer](gw, gateway.Clientes)
}

// Config describes the customer pages.
func Config() resource.Config[Customer] {
	return resource.Config[Customer]{
		Title:             "Clientes",
		Singular:          "cliente",
		Path:              "/clientes",
		NewLabel:          "Nuevo Cliente",
		SearchPlaceholder: "Buscar por nombre, contacto, email o NIF/CIF...",
		Descriptor:        Descriptor(),
		Store:             Store,
		Label:             func(c Customer) string { return "el cliente " + c.Nombre },
		Columns: []resource.Column[Customer]{
			{Label: "Nombre", Value: func(c Customer) string { return c.Nombre }},
			{Label: "Contacto", Value: func(c Customer) string { return c.Contacto }},
			{Label: "Email", Value: func(c Customer) string { return c.Email }},
			{Label: "Teléfono", Value: func(c Customer) string { return c.Telefono }},
			{Label: "NIF/CIF", Value: func(c Customer) string { return c.NIFCIF }},
			{Label: "Estado", Value: estado, Badge: estadoTone},
		},
		Details: []resource.Column[Customer]{
			{Label: "Nombre", Value: func(c Customer) string { return c.Nombre }},
			{Label: "Contacto", Value: func(c Customer) string { return c.Contacto }},
			{Label: "Email", Value: func(c Customer) string { return c.Email }},
			{Label: "Teléfono", Value: func(c Customer) string { return c.Telefono }},
			{Label: "Dirección", Value: func(c Customer) string { return orDash(c.Direccion) }},
			{Label: "NIF/CIF", Value: func(c Customer) string { return c.NIFCIF }},
			{Label: "Estado", Value: estado, Badge: estadoTone},
		},
		Fields: []resource.Field{
			{Name: "nombre", Label: "Nombre de la empresa", Kind: resource.FieldText, Required: true},
			{Name: "contacto", Label: "Persona de contacto", Kind: resource.FieldText, Required: true},
			{Name: "email", Label: "Email", Kind: resource.FieldEmail, Required: true},
			{Name: "telefono", Label: "Teléfono", Kind: resource.FieldTel, Required: true},
			{Name: "nif_cif", Label: "NIF/CIF", Kind: resource.FieldText, Required: true},
			{Name: "direccion", Label: "Dirección", Kind: resource.FieldTextarea, Wide: true},
			{Name: "activo", Label: "Cliente activo", Kind: resource.FieldCheckbox},
		},
		Filters: []resource.FilterField{
			{Name: "activo", Label: "Estado", Options: []resource.Option{
				{Value: "", Label: "Todos"},
				{Value: "true", Label: "Activos"},
				{Value: "false", Label: "Inactivos"},
			}},
		},
		Summary: Summary,
		Sheet:   Sheet(),
	}
}

// NewHandler builds the customer page handler.
func NewHandler(base *resource.Base) *resource.Handler[Customer] {
	return resource.NewHandler(base, Config())
}

// Summary counts all, active and inactive customers.
func Summary(items []Customer) []resource.Card {
	active := 0
	for _, c := range items {
		if c.Activo {
			active++
		}
	}
	return []resource.Card{
		{Label: "Total clientes", Value: strconv.Itoa(len(items)), Tone: resource.ToneInfo},
		{Label: "Activos", Value: strconv.Itoa(active), Tone: resource.ToneOK},
		{Label: "Inactivos", Value: strconv.Itoa(len(items) - active), Tone: resource.ToneMuted},
	}
}

// Sheet is the customer export layout.
func Sheet() export.Sheet[Customer] {
	return export.Sheet[Customer]{
		Name:       "Clientes",
		FilePrefix: "Clientes",
		Columns: []export.Column[Customer]{
			{Header: "Nombre", Width: 30, Value: func(c Customer) any { return c.Nombre }},
			{Header: "Contacto", Width: 25, Value: func(c Customer) any { return c.Contacto }},
			{Header: "NIF/CIF", Width: 15, Value: func(c Customer) any { return c.NIFCIF }},
			{Header: "Email", Width: 30, Value: func(c Customer) any { return c.Email }},
			{Header: "Teléfono", Width: 15, Value: func(c Customer) any { return c.Telefono }},
			{Header: "Dirección", Width: 40, Value: func(c Customer) any { return c.Direccion }},
			{Header: "Estado", Width: 10, Value: func(c Customer) any { return estado(c) }},
		},
	}
}

func estado(c Customer) string {
	if c.Activo {
		return "Activo"
	}
	return "Inactivo"
}

func estadoTone(c Customer) string {
	if c.Activo {
		return resource.ToneOK
	}
	return resource.ToneMuted
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
