package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fabrica-erp/panel/internal/forms"
	"github.com/fabrica-erp/panel/internal/gateway"
	"github.com/fabrica-erp/panel/internal/shared"
)

var (
	// ErrSaveFailed wraps create and update failures reported by the store.
	ErrSaveFailed = errors.New("listing: save failed")
	// ErrDeleteFailed wraps delete failures reported by the store.
	ErrDeleteFailed = errors.New("listing: delete failed")
	// ErrNoForm is returned by Submit when no create or edit form is open.
	ErrNoForm = errors.New("listing: no form open")
	// ErrBusy is returned by Submit while a previous submission is running.
	ErrBusy = errors.New("listing: submission in progress")
	// ErrClosed is returned by mutations after Close.
	ErrClosed = errors.New("listing: controller closed")
)

// LoadStatus is the fetch lifecycle of the collection.
type LoadStatus int

const (
	Idle LoadStatus = iota
	Loading
	Loaded
	Failed
)

// LoadState is the current fetch status plus the failure, if any.
type LoadState struct {
	Status  LoadStatus
	Message string
	Err     error
}

// ModalMode identifies the open dialog.
type ModalMode int

const (
	ModalClosed ModalMode = iota
	ModalCreate
	ModalEdit
	ModalDetail
)

// Modal is the dialog state. ID and Entity are set for edit and detail.
type Modal[T any] struct {
	Mode   ModalMode
	ID     int64
	Entity T
}

// Notification kinds.
const (
	KindSuccess = "success"
	KindError   = "error"
)

// Notifier surfaces transient feedback to the user.
type Notifier interface {
	Notify(kind, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(kind, message string)

func (f NotifierFunc) Notify(kind, message string) {
	f(kind, message)
}

// Option customises a controller.
type Option[T any] func(*Controller[T])

// WithNotifier sets the feedback sink.
func WithNotifier[T any](n Notifier) Option[T] {
	return func(c *Controller[T]) { c.notifier = n }
}

// WithPageSize overrides the default page size.
func WithPageSize[T any](size int) Option[T] {
	return func(c *Controller[T]) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithOnChange registers a hook run after every successful mutation.
func WithOnChange[T any](fn func(context.Context)) Option[T] {
	return func(c *Controller[T]) { c.onChange = fn }
}

// Controller owns one entity's collection snapshot and UI state. Methods are
// safe for concurrent use; results that arrive after Close, or after a newer
// Refresh started, are discarded.
type Controller[T any] struct {
	mu       sync.Mutex
	desc     Descriptor[T]
	store    Store[T]
	notifier Notifier
	onChange func(context.Context)

	items      []T
	load       LoadState
	search     string
	filters    map[string]string
	page       int
	pageSize   int
	modal      Modal[T]
	form       forms.Values
	formErrors forms.Errors
	submitting bool
	removing   int64
	closed     bool
	generation uint64
}

// New builds a controller for desc backed by store.
func New[T any](desc Descriptor[T], store Store[T], opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		desc:       desc,
		store:      store,
		filters:    map[string]string{},
		page:       1,
		pageSize:   shared.DefaultPageSize,
		formErrors: forms.Errors{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh refetches the collection. There is no retry; callers may invoke it
// again. A response for a closed controller or a superseded call is dropped.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.generation++
	gen := c.generation
	c.load = LoadState{Status: Loading}
	c.mu.Unlock()

	items, err := c.store.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.generation {
		return nil
	}
	if err != nil {
		c.load = LoadState{Status: Failed, Message: c.desc.messages().LoadFailed, Err: err}
		return err
	}
	c.items = items
	c.load = LoadState{Status: Loaded}
	c.clampPageLocked()
	return nil
}

// Close tears the controller down. Later responses become no-ops.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.generation++
}

// Closed reports whether Close was called.
func (c *Controller[T]) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// State returns the fetch status.
func (c *Controller[T]) State() LoadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load
}

// Items returns a copy of the fetched snapshot.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.items...)
}

// Search returns the current search term.
func (c *Controller[T]) Search() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search
}

// SetSearch changes the search term and resets to the first page.
func (c *Controller[T]) SetSearch(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = term
	c.page = 1
}

// Filters returns a copy of the active filters.
func (c *Controller[T]) Filters() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.filters))
	for k, v := range c.filters {
		out[k] = v
	}
	return out
}

// SetFilter sets one filter value and resets to the first page. An empty value
// disables the filter.
func (c *Controller[T]) SetFilter(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if value == "" {
		delete(c.filters, name)
	} else {
		c.filters[name] = value
	}
	c.page = 1
}

// ClearFilters drops the search term and every filter.
func (c *Controller[T]) ClearFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = map[string]string{}
	c.search = ""
	c.page = 1
}

// Page returns the current page number.
func (c *Controller[T]) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// SetPage moves to page, clamped to the filtered result.
func (c *Controller[T]) SetPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = page
	c.clampPageLocked()
}

// View derives the current page.
func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ComputeView(c.items, c.queryLocked(), c.desc)
}

// Filtered returns the searched and filtered collection without paging.
func (c *Controller[T]) Filtered() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Filter(c.items, c.search, c.filters, c.desc)
}

func (c *Controller[T]) queryLocked() Query {
	return Query{Search: c.search, Filters: c.filters, Page: c.page, PageSize: c.pageSize}
}

func (c *Controller[T]) clampPageLocked() {
	filtered := Filter(c.items, c.search, c.filters, c.desc)
	c.page = shared.NewPagination(c.page, c.pageSize, len(filtered)).Page
}

// Modal returns the dialog state.
func (c *Controller[T]) Modal() Modal[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modal
}

// OpenCreate opens an empty form populated with defaults.
func (c *Controller[T]) OpenCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modal = Modal[T]{Mode: ModalCreate}
	c.form = c.desc.defaults()
	c.formErrors = forms.Errors{}
}

// OpenEdit loads the entity into the form. The snapshot is used unless the
// descriptor asks for the full detail or the entity is not in it.
func (c *Controller[T]) OpenEdit(ctx context.Context, id int64) error {
	item, err := c.lookup(ctx, id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modal = Modal[T]{Mode: ModalEdit, ID: id, Entity: item}
	if c.desc.ToForm != nil {
		c.form = c.desc.ToForm(item)
	} else {
		c.form = c.desc.defaults()
	}
	c.formErrors = forms.Errors{}
	return nil
}

// ResumeEdit restores edit mode for id without fetching. Stateless callers
// use it to replay a form submission.
func (c *Controller[T]) ResumeEdit(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modal = Modal[T]{Mode: ModalEdit, ID: id}
	c.formErrors = forms.Errors{}
}

// OpenDetail loads the entity for read-only display.
func (c *Controller[T]) OpenDetail(ctx context.Context, id int64) error {
	item, err := c.lookup(ctx, id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modal = Modal[T]{Mode: ModalDetail, ID: id, Entity: item}
	return nil
}

// CloseModal closes any dialog and clears the form.
func (c *Controller[T]) CloseModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modal = Modal[T]{}
	c.form = nil
	c.formErrors = forms.Errors{}
}

func (c *Controller[T]) lookup(ctx context.Context, id int64) (T, error) {
	c.mu.Lock()
	if !c.desc.DetailOnEdit && c.desc.ID != nil {
		for _, item := range c.items {
			if c.desc.ID(item) == id {
				c.mu.Unlock()
				return item, nil
			}
		}
	}
	c.mu.Unlock()
	return c.store.Get(ctx, id)
}

// Form returns a copy of the form state.
func (c *Controller[T]) Form() forms.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.Clone()
}

// SetForm replaces the form state.
func (c *Controller[T]) SetForm(values forms.Values) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = values.Clone()
}

// FormErrors returns the field errors of the last submission.
func (c *Controller[T]) FormErrors() forms.Errors {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(forms.Errors, len(c.formErrors))
	for k, v := range c.formErrors {
		out[k] = v
	}
	return out
}

// Submitting reports whether a submission is in flight.
func (c *Controller[T]) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// Submit validates the form and creates or updates the entity. Invalid forms
// never reach the store. On success the dialog closes and the collection is
// refreshed; on failure a generic notification is sent.
func (c *Controller[T]) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.submitting {
		c.mu.Unlock()
		return ErrBusy
	}
	mode, id := c.modal.Mode, c.modal.ID
	if mode != ModalCreate && mode != ModalEdit {
		c.mu.Unlock()
		return ErrNoForm
	}
	values := c.form.Clone()
	if errs := c.desc.validate(values); errs.Any() {
		c.formErrors = errs
		c.mu.Unlock()
		return &forms.ValidationError{Fields: errs}
	}
	c.formErrors = forms.Errors{}
	c.submitting = true
	c.mu.Unlock()

	err := c.save(ctx, mode, id, values)

	c.mu.Lock()
	c.submitting = false
	closed := c.closed
	c.mu.Unlock()

	msgs := c.desc.messages()
	if err != nil {
		var verr *forms.ValidationError
		if errors.As(err, &verr) {
			c.mu.Lock()
			c.formErrors = verr.Fields
			c.mu.Unlock()
			return err
		}
		if !errors.Is(err, gateway.ErrSessionExpired) {
			c.notify(KindError, msgs.SaveFailed)
		}
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	if closed {
		return nil
	}

	c.mu.Lock()
	c.modal = Modal[T]{}
	c.form = nil
	c.mu.Unlock()

	if mode == ModalCreate {
		c.notify(KindSuccess, msgs.Created)
	} else {
		c.notify(KindSuccess, msgs.Updated)
	}
	c.changed(ctx)
	// A failed reload is recorded in State; the save itself succeeded.
	_ = c.Refresh(ctx)
	return nil
}

func (c *Controller[T]) save(ctx context.Context, mode ModalMode, id int64, values forms.Values) error {
	var payload any = values
	if c.desc.Payload != nil {
		p, err := c.desc.Payload(values)
		if err != nil {
			return err
		}
		payload = p
	}
	var err error
	if mode == ModalCreate {
		_, err = c.store.Create(ctx, payload)
	} else {
		_, err = c.store.Update(ctx, id, payload)
	}
	return err
}

// RequestRemove starts the two-step delete for id.
func (c *Controller[T]) RequestRemove(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removing = id
}

// PendingRemoval returns the id awaiting confirmation, or 0.
func (c *Controller[T]) PendingRemoval() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removing
}

// CancelRemove abandons a pending delete.
func (c *Controller[T]) CancelRemove() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removing = 0
}

// ConfirmRemove deletes the pending entity when affirmative is true. The item
// stays in the snapshot until the following refresh, and stays there if the
// delete fails.
func (c *Controller[T]) ConfirmRemove(ctx context.Context, affirmative bool) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	id := c.removing
	c.removing = 0
	c.mu.Unlock()
	if !affirmative || id == 0 {
		return nil
	}

	msgs := c.desc.messages()
	if err := c.store.Delete(ctx, id); err != nil {
		if !errors.Is(err, gateway.ErrSessionExpired) {
			c.notify(KindError, msgs.DeleteFailed)
		}
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	c.notify(KindSuccess, msgs.Deleted)
	c.changed(ctx)
	_ = c.Refresh(ctx)
	return nil
}

func (c *Controller[T]) notify(kind, message string) {
	if c.notifier == nil || message == "" {
		return
	}
	c.notifier.Notify(kind, message)
}

func (c *Controller[T]) changed(ctx context.Context) {
	if c.onChange != nil {
		c.onChange(ctx)
	}
}
