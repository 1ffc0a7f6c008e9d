// Package resource serves the list, form, detail and delete pages shared by
// every entity of the panel.
package resource

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fabrica-erp/panel/internal/gateway"
	"github.com/fabrica-erp/panel/internal/listing"
	"github.com/fabrica-erp/panel/internal/shared"
	"github.com/fabrica-erp/panel/internal/view"
)

// ExpiredMessage is flashed when the API session cannot be refreshed.
const ExpiredMessage = "Tu sesión ha expirado. Inicia sesión de nuevo."

// Base carries the dependencies every page handler needs.
type Base struct {
	Logger    *slog.Logger
	Templates *view.Engine
	CSRF      *shared.CSRFManager
	API       *gateway.Client
	PageSize  int
	// OnChange runs after any successful create, update or delete.
	OnChange func(context.Context)
	Now      func() time.Time
}

// Log returns the configured logger or the default one.
func (b *Base) Log() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

func (b *Base) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// Today is the current date as DD/MM/YYYY.
func (b *Base) Today() string {
	return b.now().Format("02/01/2006")
}

// Gateway returns an API gateway bound to the request session tokens.
func (b *Base) Gateway(r *http.Request) *gateway.Gateway {
	sess := shared.SessionFromContext(r.Context())
	return b.API.WithSession(shared.NewSessionTokens(sess))
}

// Notifier turns controller notifications into flash messages.
func (b *Base) Notifier(r *http.Request) listing.Notifier {
	sess := shared.SessionFromContext(r.Context())
	return listing.NotifierFunc(func(kind, message string) {
		if sess == nil {
			return
		}
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	})
}

// Controller builds the per-request controller for desc.
func Controller[T any](b *Base, r *http.Request, desc listing.Descriptor[T], store listing.Store[T]) *listing.Controller[T] {
	opts := []listing.Option[T]{listing.WithNotifier[T](b.Notifier(r))}
	if b.PageSize > 0 {
		opts = append(opts, listing.WithPageSize[T](b.PageSize))
	}
	if b.OnChange != nil {
		opts = append(opts, listing.WithOnChange[T](b.OnChange))
	}
	return listing.New(desc, store, opts...)
}

// Render writes a page inside the main layout.
func (b *Base) Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken := ""
	if sess != nil {
		csrfToken, _ = b.CSRF.EnsureToken(r.Context(), sess)
	}
	td := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       sess.PopFlash(),
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if sess != nil {
		td.User = sess.Username()
	}
	if err := b.Templates.RenderStatus(w, status, name, td); err != nil {
		b.Log().Error("render page", slog.String("template", name), slog.Any("error", err))
	}
}

// Redirect flashes message (when set) and redirects with 303.
func (b *Base) Redirect(w http.ResponseWriter, r *http.Request, to, kind, message string) {
	if message != "" {
		if sess := shared.SessionFromContext(r.Context()); sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
		}
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// Expired forgets the API tokens and sends the user to the login page.
func (b *Base) Expired(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	shared.NewSessionTokens(sess).Clear()
	b.Redirect(w, r, "/auth/login", shared.FlashWarning, ExpiredMessage)
}

// Fail handles an error from the API: session expiry goes to login, 404
// renders the not-found page and anything else redirects to fallback with
// message.
func (b *Base) Fail(w http.ResponseWriter, r *http.Request, err error, fallback, message string) {
	switch {
	case errors.Is(err, gateway.ErrSessionExpired):
		b.Expired(w, r)
	case gateway.IsNotFound(err):
		b.NotFound(w, r)
	default:
		b.Log().Warn("api request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		b.Redirect(w, r, fallback, shared.FlashError, message)
	}
}

// NotFound renders the 404 page.
func (b *Base) NotFound(w http.ResponseWriter, r *http.Request) {
	b.Render(w, r, http.StatusNotFound, "pages/error.html", "No encontrado", ErrorPage{
		Status:  http.StatusNotFound,
		Message: "El registro solicitado no existe.",
	})
}

// ErrorPage is the data of pages/error.html.
type ErrorPage struct {
	Status  int
	Message string
}
