package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/fabrica-erp/panel/internal/platform/httpx"
	"github.com/fabrica-erp/panel/internal/shared"
)

// RequireLogin sends requests without API tokens to the login page. JSON
// callers get a 401 problem instead of a redirect.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess.Authenticated() {
			next.ServeHTTP(w, r)
			return
		}
		if strings.Contains(r.Header.Get("Accept"), "application/json") || strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
			return
		}
		target := "/auth/login"
		if r.Method == http.MethodGet && r.URL.Path != "/" {
			target += "?next=" + url.QueryEscape(r.URL.RequestURI())
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	})
}
