package backoffice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/hotelzen/backoffice/storage"
)

func protectedProbe(t *testing.T, served *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*served = true
		user := UserFromContext(r.Context())
		if user == nil {
			t.Error("Guard should inject the session user into context")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestGuardServesPlaceholderWhileRestoring(t *testing.T) {
	svc := newTestService(t, http.NotFoundHandler(), nil)
	// Initialize not called: the store is still restoring.

	served := false
	handler := RequireSession(svc.Store)(protectedProbe(t, &served))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hotels/42", nil))

	if served {
		t.Error("Protected content must not render while restoring")
	}
	if rec.Code == http.StatusSeeOther {
		t.Error("Guard must not redirect while restoring")
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Placeholder status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestGuardRedirectsAnonymousWithIntent(t *testing.T) {
	svc := newTestService(t, http.NotFoundHandler(), nil)
	svc.Store.Initialize(context.Background())

	served := false
	handler := RequireSession(svc.Store)(protectedProbe(t, &served))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hotels/42", nil))

	if served {
		t.Error("Protected content must not render for anonymous requests")
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	location, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatal("Redirect target should parse:", err)
	}
	if location.Path != "/login" {
		t.Errorf("Redirect path = %q, want %q", location.Path, "/login")
	}
	if next := location.Query().Get("next"); next != "/hotels/42" {
		t.Errorf("Navigation intent = %q, want %q", next, "/hotels/42")
	}
}

func TestGuardServesAuthenticatedRequests(t *testing.T) {
	st := storage.NewMemory()
	seedSession(t, st, `{"id":"u1","email":"a@b.com"}`, "tok")
	svc := newTestService(t, http.NotFoundHandler(), st)
	svc.Store.Initialize(context.Background())

	served := false
	handler := RequireSession(svc.Store)(protectedProbe(t, &served))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hotels/42", nil))

	if !served {
		t.Fatal("Protected content should render for authenticated requests")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestGuardCustomConfig(t *testing.T) {
	svc := newTestService(t, http.NotFoundHandler(), nil)
	svc.Store.Initialize(context.Background())

	cfg := GuardConfig{LoginURL: "/signin", IntentParam: "return_to"}
	handler := RequireSession(svc.Store, cfg)(http.NotFoundHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings", nil))

	location, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	if location.Path != "/signin" {
		t.Errorf("Redirect path = %q, want %q", location.Path, "/signin")
	}
	if got := location.Query().Get("return_to"); got != "/bookings" {
		t.Errorf("Intent = %q, want %q", got, "/bookings")
	}
}

func TestGuardPreservesQueryInIntent(t *testing.T) {
	svc := newTestService(t, http.NotFoundHandler(), nil)
	svc.Store.Initialize(context.Background())

	handler := RequireSession(svc.Store)(http.NotFoundHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings?status=pending", nil))

	location, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	if next := location.Query().Get("next"); next != "/bookings?status=pending" {
		t.Errorf("Intent = %q, want the full request URI", next)
	}
}

func TestUserFromContextWithoutGuard(t *testing.T) {
	if user := UserFromContext(context.Background()); user != nil {
		t.Error("UserFromContext should return nil outside guarded requests")
	}
}
