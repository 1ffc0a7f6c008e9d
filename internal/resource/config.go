package resource

import (
	"context"

	"github.com/fabrica-erp/panel/internal/export"
	"github.com/fabrica-erp/panel/internal/gateway"
	"github.com/fabrica-erp/panel/internal/listing"
)

// Badge tones understood by the stylesheet.
const (
	ToneOK     = "ok"
	ToneWarn   = "warn"
	ToneDanger = "danger"
	ToneInfo   = "info"
	ToneMuted  = "muted"
)

// Column is one table column (and one detail row).
type Column[T any] struct {
	Label string
	Value func(T) string
	// Badge, when set, renders the value as a pill of the returned tone.
	Badge func(T) string
	Align string
}

// FieldKind selects the form control.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldEmail    FieldKind = "email"
	FieldTel      FieldKind = "tel"
	FieldNumber   FieldKind = "number"
	FieldDate     FieldKind = "date"
	FieldTextarea FieldKind = "textarea"
	FieldSelect   FieldKind = "select"
	FieldCheckbox FieldKind = "checkbox"
)

// Option is a select choice.
type Option struct {
	Value string
	Label string
}

// Field is one form control.
type Field struct {
	Name        string
	Label       string
	Kind        FieldKind
	Options     []Option
	Step        string
	Min         string
	Placeholder string
	Required    bool
	Wide        bool
}

// FilterField is one list filter control; select or date.
type FilterField struct {
	Name    string
	Label   string
	Kind    FieldKind
	Options []Option
}

// Card is a summary figure shown above a list.
type Card struct {
	Label string
	Value string
	Tone  string
}

// Config describes the pages of one entity.
type Config[T any] struct {
	Title             string
	Singular          string
	Path              string
	NewLabel          string
	SearchPlaceholder string
	Descriptor        listing.Descriptor[T]
	Columns           []Column[T]
	Details           []Column[T] // defaults to Columns
	Fields            []Field
	Filters           []FilterField
	Label             func(T) string
	Summary           func([]T) []Card
	Sheet             export.Sheet[T]
	Store             func(gw *gateway.Gateway) listing.Store[T]

	// FilterOptions loads select options that come from the API, keyed by
	// filter name. It runs in parallel with the list fetch.
	FilterOptions func(ctx context.Context, gw *gateway.Gateway) (map[string][]Option, error)

	// CustomForms leaves the form and detail routes to the entity package.
	CustomForms bool
}

func (c Config[T]) details() []Column[T] {
	if len(c.Details) > 0 {
		return c.Details
	}
	return c.Columns
}

func (c Config[T]) label(item T) string {
	if c.Label != nil {
		return c.Label(item)
	}
	return c.Singular
}

// withOptions returns the filters with API-loaded options appended.
func withOptions(filters []FilterField, loaded map[string][]Option) []FilterField {
	if len(loaded) == 0 {
		return filters
	}
	out := make([]FilterField, len(filters))
	for i, f := range filters {
		if opts, ok := loaded[f.Name]; ok {
			f.Options = append(append([]Option(nil), f.Options...), opts...)
		}
		out[i] = f
	}
	return out
}
