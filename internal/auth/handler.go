package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fabrica-erp/panel/internal/resource"
	"github.com/fabrica-erp/panel/internal/shared"
	"github.com/fabrica-erp/panel/internal/view"
)

// Login and logout messages.
const (
	MsgInvalidCredentials = "Usuario o contraseña incorrectos"
	MsgBackendDown        = "No se pudo conectar con el servidor. Inténtalo más tarde."
	MsgLoggedOut          = "Sesión cerrada exitosamente"
)

var fieldMessages = map[string]string{
	"Username": "El usuario es obligatorio",
	"Password": "La contraseña es obligatoria",
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	templates   *view.Engine
	csrfManager *shared.CSRFManager
	validator   *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:      logger,
		service:     service,
		templates:   templates,
		csrfManager: csrf,
		validator:   validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Get("/logout", h.confirmLogout)
	r.Post("/logout", h.handleLogout)
}

type loginPageData struct {
	Username string
	Next     string
	Errors   map[string]string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess.Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "pages/login.html", "Iniciar sesión", loginPageData{Next: SafeNext(r.URL.Query().Get("next"))})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	creds := Credentials{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	data := loginPageData{Username: creds.Username, Next: SafeNext(r.PostFormValue("next")), Errors: map[string]string{}}

	if err := h.validator.Struct(creds); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				data.Errors[fieldErr.Field()] = fieldMessages[fieldErr.Field()]
			}
		}
		h.render(w, r, http.StatusBadRequest, "pages/login.html", "Iniciar sesión", data)
		return
	}

	identity, tokens, err := h.service.Authenticate(r.Context(), creds)
	if err != nil {
		status := http.StatusBadRequest
		data.Errors["general"] = MsgInvalidCredentials
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			h.logger.Warn("login failed", slog.String("username", creds.Username), slog.Any("error", err))
			status = http.StatusBadGateway
			data.Errors["general"] = MsgBackendDown
		}
		h.render(w, r, status, "pages/login.html", "Iniciar sesión", data)
		return
	}
	if sess == nil {
		h.logger.Error("session missing during login")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	sess.SetUser(identity.UserID, identity.Username)
	shared.NewSessionTokens(sess).SetTokens(tokens.Access, tokens.Refresh)
	h.csrfManager.Rotate(sess)
	sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: "Bienvenido, " + identity.Username})
	h.logger.Info("user logged in", slog.String("username", identity.Username))
	target := data.Next
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) confirmLogout(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "pages/confirm.html", "Cerrar sesión", resource.ConfirmPage{
		Title:   "Cerrar sesión",
		Message: "¿Estás seguro de que deseas cerrar sesión?",
		Action:  "/auth/logout",
		Cancel:  "/",
		Confirm: "Cerrar sesión",
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.PostFormValue("confirm") != "yes" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		h.logger.Info("user logged out", slog.String("username", sess.Username()))
		shared.NewSessionTokens(sess).Clear()
		h.csrfManager.Rotate(sess)
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: MsgLoggedOut})
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       sess.PopFlash(),
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if sess.Authenticated() {
		viewData.User = sess.Username()
	}
	if err := h.templates.RenderStatus(w, status, name, viewData); err != nil {
		h.logger.Error("render auth page", slog.String("template", name), slog.Any("error", err))
	}
}

// SafeNext keeps only local absolute paths as post-login targets.
func SafeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	if strings.HasPrefix(next, "/auth/") {
		return ""
	}
	return next
}
