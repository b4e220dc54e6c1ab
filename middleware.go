package backoffice

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
)

// Context key for the session user injected by the guard.
type contextKey string

const userContextKey contextKey = "backoffice_user"

// GuardConfig tunes the access guard's behavior.
type GuardConfig struct {
	// LoginURL is where anonymous requests are redirected. Defaults to
	// "/login".
	LoginURL string

	// IntentParam is the query parameter carrying the originally requested
	// path through the redirect. Defaults to "next".
	IntentParam string

	// Placeholder handles requests arriving while session restoration is
	// still in flight. Defaults to a neutral loading response; it must not
	// redirect, or a slow restore would bounce signed-in users to login.
	Placeholder http.Handler
}

// DefaultGuardConfig returns the standard guard configuration.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		LoginURL:    "/login",
		IntentParam: "next",
		Placeholder: http.HandlerFunc(defaultPlaceholder),
	}
}

func defaultPlaceholder(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusServiceUnavailable)
	w.Write([]byte("session restoring\n"))
}

// RequireSession guards protected content behind a confirmed session. Its
// decision is a pure function of session state plus the request path:
//
//   - restoring: serve the neutral placeholder, never redirect
//   - anonymous: redirect to the login URL, carrying the requested path as
//     navigation intent so login can return the user where they were headed
//   - authenticated: serve the protected handler unchanged, with the
//     session user available via UserFromContext
//
// Usage:
//
//	r.With(backoffice.RequireSession(store)).Get("/hotels", handler)
func RequireSession(store *SessionStore, config ...GuardConfig) func(http.Handler) http.Handler {
	cfg := DefaultGuardConfig()
	if len(config) > 0 {
		cfg = config[0]
		if cfg.LoginURL == "" {
			cfg.LoginURL = "/login"
		}
		if cfg.IntentParam == "" {
			cfg.IntentParam = "next"
		}
		if cfg.Placeholder == nil {
			cfg.Placeholder = http.HandlerFunc(defaultPlaceholder)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store.Loading() {
				slog.Debug("Session restoring, serving placeholder", "path", r.URL.Path)
				cfg.Placeholder.ServeHTTP(w, r)
				return
			}

			user := store.User()
			if user == nil {
				target := cfg.LoginURL + "?" + cfg.IntentParam + "=" + url.QueryEscape(r.URL.RequestURI())
				slog.Debug("Anonymous request, redirecting to login", "path", r.URL.Path)
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the session user the guard placed on the request
// context, or nil for unguarded requests.
func UserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(userContextKey).(*User)
	return user
}
