package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func initTestStore(t *testing.T) {
	t.Helper()
	err := InitSessionStore("0123456789abcdef0123456789abcdef", "noticehub-test", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("InitSessionStore failed: %v", err)
	}
	t.Cleanup(func() { Store = nil })
}

func TestInitSessionStore_EmptyKey(t *testing.T) {
	if err := InitSessionStore("", "", "", false, zap.NewNop()); err == nil {
		t.Error("expected error for empty session key")
	}
}

func TestSignInThenLoad(t *testing.T) {
	initTestStore(t)

	// Sign in and capture the cookie.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", nil)
	err := SignIn(rec, req, SessionUser{ID: "64f1a2b3c4d5e6f708192a3b", Email: "admin@example.com", AuthMethod: "password"})
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie to be set")
	}

	// Replay the cookie through the middleware.
	var got *SessionUser
	handler := LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = CurrentUser(r)
	}))
	req2 := httptest.NewRequest("GET", "/notices", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req2)

	if got == nil {
		t.Fatal("expected user in context after replaying session cookie")
	}
	if got.ID != "64f1a2b3c4d5e6f708192a3b" {
		t.Errorf("ID: got %q", got.ID)
	}
	if got.Email != "admin@example.com" {
		t.Errorf("Email: got %q", got.Email)
	}
}

func TestRequireSignedIn_Anonymous(t *testing.T) {
	initTestStore(t)

	handler := RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("inner handler must not run for anonymous request")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/notices", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(rec.Body.String(), "unauthorized") {
		t.Errorf("body: got %q", rec.Body.String())
	}
}

func TestRequireSignedIn_WithUser(t *testing.T) {
	called := false
	handler := RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	req := WithTestUser(httptest.NewRequest("GET", "/notices", nil), &SessionUser{ID: "abc"})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Error("inner handler should run for signed-in request")
	}
}

func TestSignOut_ClearsSession(t *testing.T) {
	initTestStore(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/logout", nil)
	if err := SignOut(rec, req); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	found := false
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			found = true
		}
	}
	if !found {
		t.Error("expected an expiring cookie after SignOut")
	}
}
