// Package listing implements the list-management controller shared by every
// resource page: fetch the collection, derive the searched, filtered and
// paginated view, and run create, update and delete through a form.
package listing

import (
	"context"

	"github.com/fabrica-erp/panel/internal/forms"
)

// Store is the data source behind a controller.
type Store[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, payload any) (T, error)
	Update(ctx context.Context, id int64, payload any) (T, error)
	Delete(ctx context.Context, id int64) error
}

// FilterFunc reports whether item matches a non-empty filter value.
type FilterFunc[T any] func(item T, value string) bool

// Messages are the notification texts for one entity.
type Messages struct {
	Created      string
	Updated      string
	Deleted      string
	SaveFailed   string
	DeleteFailed string
	LoadFailed   string
}

// Descriptor configures a controller for one entity.
type Descriptor[T any] struct {
	Name       string
	Searchable func(T) []string
	Filters    map[string]FilterFunc[T]
	Rules      forms.Rules
	// Validate replaces Rules when the form needs cross-field checks.
	Validate func(forms.Values) forms.Errors
	Defaults func() forms.Values
	ToForm   func(T) forms.Values
	Payload  func(forms.Values) (any, error)
	ID       func(T) int64
	// DetailOnEdit fetches the full entity because list rows are a summary.
	DetailOnEdit bool
	Messages     Messages
}

func (d Descriptor[T]) validate(values forms.Values) forms.Errors {
	if d.Validate != nil {
		return d.Validate(values)
	}
	return forms.Validate(values, d.Rules)
}

func (d Descriptor[T]) defaults() forms.Values {
	if d.Defaults == nil {
		return forms.Values{}
	}
	return d.Defaults()
}

func (d Descriptor[T]) messages() Messages {
	m := d.Messages
	if m.Created == "" {
		m.Created = "Registro creado exitosamente"
	}
	if m.Updated == "" {
		m.Updated = "Registro actualizado exitosamente"
	}
	if m.Deleted == "" {
		m.Deleted = "Registro eliminado exitosamente"
	}
	if m.SaveFailed == "" {
		m.SaveFailed = "Error al guardar. Verifica que el código/NIF no esté duplicado."
	}
	if m.DeleteFailed == "" {
		m.DeleteFailed = "Error al eliminar"
	}
	if m.LoadFailed == "" {
		m.LoadFailed = "Error al cargar los datos"
	}
	return m
}
