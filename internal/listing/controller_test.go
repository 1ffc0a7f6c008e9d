package listing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabrica-erp/panel/internal/forms"
	"github.com/fabrica-erp/panel/internal/gateway"
)

type widget struct {
	ID     int64
	Nombre string
	Email  string
	Activo bool
}

func widgetDescriptor() Descriptor[widget] {
	return Descriptor[widget]{
		Name:       "widgets",
		Searchable: func(w widget) []string { return []string{w.Nombre, w.Email} },
		Filters: map[string]FilterFunc[widget]{
			"activo": Flag(func(w widget) bool { return w.Activo }),
		},
		Rules: forms.Rules{
			"nombre": {forms.Required("El nombre es obligatorio")},
			"email":  {forms.Required("El email es obligatorio"), forms.Email("Email inválido")},
		},
		Defaults: func() forms.Values { return forms.Values{"activo": {"true"}} },
		ToForm: func(w widget) forms.Values {
			return forms.Values{"nombre": {w.Nombre}, "email": {w.Email}}
		},
		Payload: func(v forms.Values) (any, error) {
			return widget{Nombre: v.Trimmed("nombre"), Email: v.Trimmed("email"), Activo: v.Bool("activo")}, nil
		},
		ID: func(w widget) int64 { return w.ID },
		Messages: Messages{
			Created:    "creado",
			Updated:    "actualizado",
			Deleted:    "eliminado",
			SaveFailed: "error al guardar",
		},
	}
}

type fakeStore struct {
	mu        sync.Mutex
	items     []widget
	listErr   error
	saveErr   error
	deleteErr error
	lists     int
	gets      int
	creates   []any
	updates   []any
	deletes   []int64
	gate      chan struct{}
}

func (s *fakeStore) List(ctx context.Context) ([]widget, error) {
	s.mu.Lock()
	s.lists++
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]widget(nil), s.items...), nil
}

func (s *fakeStore) Get(ctx context.Context, id int64) (widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	for _, w := range s.items {
		if w.ID == id {
			return w, nil
		}
	}
	return widget{}, &gateway.HTTPError{Status: 404}
}

func (s *fakeStore) Create(ctx context.Context, payload any) (widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates = append(s.creates, payload)
	if s.saveErr != nil {
		return widget{}, s.saveErr
	}
	w := payload.(widget)
	w.ID = int64(len(s.items) + 1)
	s.items = append(s.items, w)
	return w, nil
}

func (s *fakeStore) Update(ctx context.Context, id int64, payload any) (widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, payload)
	if s.saveErr != nil {
		return widget{}, s.saveErr
	}
	return payload.(widget), nil
}

func (s *fakeStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, id)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	kept := s.items[:0]
	for _, w := range s.items {
		if w.ID != id {
			kept = append(kept, w)
		}
	}
	s.items = kept
	return nil
}

type recorder struct {
	mu    sync.Mutex
	notes []string
}

func (r *recorder) Notify(kind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, kind+":"+message)
}

func seedWidgets(n int) []widget {
	items := make([]widget, n)
	for i := range items {
		items[i] = widget{ID: int64(i + 1), Nombre: "Widget " + strconv.Itoa(i+1), Email: fmt.Sprintf("w%d@acme.es", i+1), Activo: i%2 == 0}
	}
	return items
}

func TestComputeViewIsPure(t *testing.T) {
	items := seedWidgets(23)
	q := Query{Search: "widget 1", Filters: map[string]string{"activo": "true"}, Page: 1, PageSize: 10}

	first := ComputeView(items, q, widgetDescriptor())
	second := ComputeView(items, q, widgetDescriptor())
	assert.Equal(t, first, second)

	q.Page = 2
	third := ComputeView(items, q, widgetDescriptor())
	assert.Equal(t, first.Filtered, third.Filtered, "page must not change the filtered set")
	assert.Len(t, items, 23, "input untouched")
}

func TestComputeViewPaginationBounds(t *testing.T) {
	items := seedWidgets(23)
	desc := widgetDescriptor()

	cases := []struct {
		page     int
		wantPage int
		from, to int
	}{
		{page: 0, wantPage: 1, from: 1, to: 10},
		{page: 1, wantPage: 1, from: 1, to: 10},
		{page: 3, wantPage: 3, from: 21, to: 23},
		{page: 9, wantPage: 3, from: 21, to: 23},
	}
	for _, tc := range cases {
		view := ComputeView(items, Query{Page: tc.page, PageSize: 10}, desc)
		assert.Equal(t, tc.wantPage, view.Pagination.Page)
		assert.Equal(t, 3, view.Pagination.TotalPages)
		assert.Equal(t, tc.from, view.From)
		assert.Equal(t, tc.to, view.To)
	}

	last := ComputeView(items, Query{Page: 3, PageSize: 10}, desc)
	require.Len(t, last.Items, 3)
	assert.Equal(t, int64(21), last.Items[0].ID)
	assert.Equal(t, int64(23), last.Items[2].ID)

	empty := ComputeView(nil, Query{Page: 4, PageSize: 10}, desc)
	assert.Equal(t, 1, empty.Pagination.Page)
	assert.Empty(t, empty.Items)
}

func TestSearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	items := []widget{{ID: 1, Nombre: "Tornillo", Email: "a@x.es"}, {ID: 2, Nombre: "Tuerca", Email: "TORNILLOS@x.es"}, {ID: 3, Nombre: "Arandela"}}
	got := Filter(items, "torn", nil, widgetDescriptor())
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
}

func TestSearchAndFilterResetPage(t *testing.T) {
	store := &fakeStore{items: seedWidgets(23)}
	c := New(widgetDescriptor(), store)
	require.NoError(t, c.Refresh(context.Background()))

	c.SetPage(3)
	assert.Equal(t, 3, c.Page())
	c.SetSearch("widget")
	assert.Equal(t, 1, c.Page())

	c.SetPage(2)
	c.SetFilter("activo", "true")
	assert.Equal(t, 1, c.Page())

	c.SetPage(99)
	assert.Equal(t, 2, c.Page(), "12 active widgets fit in two pages")
}

func TestRefreshFailureSetsErrorState(t *testing.T) {
	store := &fakeStore{listErr: errors.New("boom")}
	c := New(widgetDescriptor(), store)

	err := c.Refresh(context.Background())
	require.Error(t, err)
	state := c.State()
	assert.Equal(t, Failed, state.Status)
	assert.NotEmpty(t, state.Message)

	store.mu.Lock()
	store.listErr = nil
	store.items = seedWidgets(2)
	store.mu.Unlock()
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, Loaded, c.State().Status)
	assert.Len(t, c.Items(), 2)
}

func TestSubmitInvalidFormNeverCallsStore(t *testing.T) {
	store := &fakeStore{}
	notes := &recorder{}
	c := New(widgetDescriptor(), store, WithNotifier[widget](notes))
	c.OpenCreate()
	c.SetForm(forms.Values{"nombre": {"ACME"}, "email": {""}})

	err := c.Submit(context.Background())
	var verr *forms.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, c.FormErrors(), "email")
	assert.Empty(t, store.creates)
	assert.Empty(t, store.updates)
	assert.Empty(t, notes.notes)
	assert.Equal(t, ModalCreate, c.Modal().Mode, "form stays open")
}

func TestSubmitCreateClosesModalAndRefreshes(t *testing.T) {
	store := &fakeStore{}
	notes := &recorder{}
	changed := 0
	c := New(widgetDescriptor(), store,
		WithNotifier[widget](notes),
		WithOnChange[widget](func(context.Context) { changed++ }),
	)
	c.OpenCreate()
	assert.Equal(t, "true", c.Form().Get("activo"))
	c.SetForm(forms.Values{"nombre": {"ACME"}, "email": {"ventas@acme.es"}, "activo": {"on"}})

	require.NoError(t, c.Submit(context.Background()))
	assert.Len(t, store.creates, 1)
	assert.Equal(t, 1, store.lists)
	assert.Equal(t, ModalClosed, c.Modal().Mode)
	assert.Empty(t, c.Form())
	assert.Len(t, c.Items(), 1)
	assert.Equal(t, []string{"success:creado"}, notes.notes)
	assert.Equal(t, 1, changed)
}

func TestSubmitUpdateFailureNotifiesGenericError(t *testing.T) {
	store := &fakeStore{items: seedWidgets(3), saveErr: &gateway.HTTPError{Status: 400, Body: `{"nif_cif":["ya existe"]}`}}
	notes := &recorder{}
	c := New(widgetDescriptor(), store, WithNotifier[widget](notes))
	require.NoError(t, c.Refresh(context.Background()))
	require.NoError(t, c.OpenEdit(context.Background(), 2))
	assert.Equal(t, "Widget 2", c.Form().Get("nombre"))
	assert.Zero(t, store.gets, "edit served from snapshot")

	err := c.Submit(context.Background())
	require.ErrorIs(t, err, ErrSaveFailed)
	assert.Equal(t, 400, gateway.StatusOf(err))
	assert.Equal(t, []string{"error:error al guardar"}, notes.notes)
	assert.Equal(t, ModalEdit, c.Modal().Mode)
	assert.Equal(t, 1, store.lists, "no refresh after failure")
}

func TestSessionExpiryIsNotNotified(t *testing.T) {
	store := &fakeStore{saveErr: gateway.ErrSessionExpired}
	notes := &recorder{}
	c := New(widgetDescriptor(), store, WithNotifier[widget](notes))
	c.OpenCreate()
	c.SetForm(forms.Values{"nombre": {"ACME"}, "email": {"a@b.es"}})

	err := c.Submit(context.Background())
	assert.ErrorIs(t, err, gateway.ErrSessionExpired)
	assert.Empty(t, notes.notes)
}

func TestOpenEditFetchesDetailWhenConfigured(t *testing.T) {
	store := &fakeStore{items: seedWidgets(3)}
	desc := widgetDescriptor()
	desc.DetailOnEdit = true
	c := New(desc, store)
	require.NoError(t, c.Refresh(context.Background()))

	require.NoError(t, c.OpenEdit(context.Background(), 3))
	assert.Equal(t, 1, store.gets)
	assert.Equal(t, int64(3), c.Modal().Entity.ID)
}

func TestSubmitWithoutOpenForm(t *testing.T) {
	c := New(widgetDescriptor(), &fakeStore{})
	assert.ErrorIs(t, c.Submit(context.Background()), ErrNoForm)
}

func TestRemoveRequiresConfirmation(t *testing.T) {
	store := &fakeStore{items: seedWidgets(3)}
	notes := &recorder{}
	c := New(widgetDescriptor(), store, WithNotifier[widget](notes))
	require.NoError(t, c.Refresh(context.Background()))

	c.RequestRemove(2)
	assert.Equal(t, int64(2), c.PendingRemoval())
	require.NoError(t, c.ConfirmRemove(context.Background(), false))
	assert.Empty(t, store.deletes)
	assert.Zero(t, c.PendingRemoval())

	c.RequestRemove(2)
	require.NoError(t, c.ConfirmRemove(context.Background(), true))
	assert.Equal(t, []int64{2}, store.deletes)
	assert.Len(t, c.Items(), 2)
	assert.Equal(t, []string{"success:eliminado"}, notes.notes)
}

func TestRemoveFailureKeepsItem(t *testing.T) {
	store := &fakeStore{items: seedWidgets(3), deleteErr: &gateway.HTTPError{Status: 500}}
	notes := &recorder{}
	c := New(widgetDescriptor(), store, WithNotifier[widget](notes))
	require.NoError(t, c.Refresh(context.Background()))

	c.RequestRemove(1)
	err := c.ConfirmRemove(context.Background(), true)
	require.ErrorIs(t, err, ErrDeleteFailed)
	assert.Len(t, c.Items(), 3)
	assert.Equal(t, []string{"error:Error al eliminar"}, notes.notes)
}

func waitForList(t *testing.T, store *fakeStore) {
	t.Helper()
	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.lists > 0
	}, time.Second, time.Millisecond)
}

func TestStaleRefreshAfterCloseIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	store := &fakeStore{items: seedWidgets(5), gate: gate}
	c := New(widgetDescriptor(), store)

	done := make(chan error, 1)
	go func() {
		done <- c.Refresh(context.Background())
	}()
	waitForList(t, store)

	c.Close()
	close(gate)

	require.NoError(t, <-done)
	assert.Empty(t, c.Items())
	assert.Equal(t, Loading, c.State().Status)
	assert.ErrorIs(t, c.Submit(context.Background()), ErrClosed)
}

func TestSupersededRefreshIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	store := &fakeStore{items: seedWidgets(1), gate: gate}
	c := New(widgetDescriptor(), store)

	done := make(chan error, 1)
	go func() {
		done <- c.Refresh(context.Background())
	}()
	waitForList(t, store)

	store.mu.Lock()
	store.gate = nil
	store.items = seedWidgets(4)
	store.mu.Unlock()
	require.NoError(t, c.Refresh(context.Background()))
	assert.Len(t, c.Items(), 4)

	store.mu.Lock()
	store.items = seedWidgets(1)
	store.mu.Unlock()
	close(gate)

	require.NoError(t, <-done)
	assert.Len(t, c.Items(), 4, "older response must not overwrite the newer snapshot")
}
