package gateway

import "context"

// Resource is a typed facade over one collection.
type Resource[T any] struct {
	gw   *Gateway
	path string
}

// NewResource binds a collection path to an entity type.
func NewResource[T any](gw *Gateway, path string) *Resource[T] {
	return &Resource[T]{gw: gw, path: path}
}

// Path returns the collection path.
func (r *Resource[T]) Path() string {
	return r.path
}

func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	if err := r.gw.List(ctx, r.path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var item T
	err := r.gw.Get(ctx, r.path, id, &item)
	return item, err
}

func (r *Resource[T]) Create(ctx context.Context, payload any) (T, error) {
	var item T
	err := r.gw.Create(ctx, r.path, payload, &item)
	return item, err
}

func (r *Resource[T]) Update(ctx context.Context, id int64, payload any) (T, error) {
	var item T
	err := r.gw.Update(ctx, r.path, id, payload, &item)
	return item, err
}

func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	return r.gw.Delete(ctx, r.path, id)
}

// Action lists the result of a custom collection action, e.g. "alertas".
func (r *Resource[T]) Action(ctx context.Context, action string, params map[string]string) ([]T, error) {
	var items []T
	query := make(map[string][]string, len(params))
	for k, v := range params {
		query[k] = []string{v}
	}
	if err := r.gw.Query(ctx, collectionPath(r.path)+action+"/", query, &items); err != nil {
		return nil, err
	}
	return items, nil
}
