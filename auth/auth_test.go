package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var testSecret = []byte(strings.Repeat("s", 32))

func TestGenerateValidateToken_RoundTrip(t *testing.T) {
	claims := &Claims{
		UserID:      "12345",
		Login:       "octocat",
		Email:       "octo@example.com",
		GitHubToken: "gho_test",
	}
	tok, err := GenerateToken(testSecret, claims, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	got, err := ValidateToken(testSecret, tok)
	if err != nil {
		t.Fatal(err)
	}
	if got.UserID != "12345" || got.Login != "octocat" || got.GitHubToken != "gho_test" {
		t.Fatalf("claims mismatch: %+v", got)
	}
}

func TestGenerateToken_ShortSecret(t *testing.T) {
	// WHAT: Token generation refuses secrets under the minimum length.
	// WHY: A weak HS256 secret makes every session forgeable.
	if _, err := GenerateToken([]byte("weak"), &Claims{}, time.Hour); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	tok, err := GenerateToken(testSecret, &Claims{UserID: "u"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	other := []byte(strings.Repeat("x", 32))
	if _, err := ValidateToken(other, tok); err == nil {
		t.Fatal("expected validation failure with wrong secret")
	}
}

func TestValidateToken_Expired(t *testing.T) {
	tok, err := GenerateToken(testSecret, &Claims{UserID: "u"}, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ValidateToken(testSecret, tok); err == nil {
		t.Fatal("expected validation failure for expired token")
	}
}

func TestMiddleware_CookieInjectsClaims(t *testing.T) {
	tok, err := GenerateToken(testSecret, &Claims{UserID: "42", Login: "octocat"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	var got *Claims
	h := Middleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetClaims(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: tok})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.Login != "octocat" {
		t.Fatalf("claims not injected: %+v", got)
	}
}

func TestMiddleware_BearerHeader(t *testing.T) {
	tok, err := GenerateToken(testSecret, &Claims{UserID: "42"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	var got *Claims
	h := Middleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetClaims(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.UserID != "42" {
		t.Fatalf("claims not injected: %+v", got)
	}
}

func TestMiddleware_InvalidTokenIgnored(t *testing.T) {
	// WHAT: A garbage token leaves the request anonymous instead of failing it.
	// WHY: Public routes share the middleware; enforcement lives in RequireAuth.
	called := false
	h := Middleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if GetClaims(r.Context()) != nil {
			t.Error("claims should be absent for invalid token")
		}
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "not-a-jwt"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Fatal("next handler not called")
	}
}

func TestRequireAuth_Unauthenticated(t *testing.T) {
	h := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/analyze", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got %d, want 401", rec.Code)
	}
}

func TestSetTokenCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetTokenCookie(rec, "abc", "", true)
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies", len(cookies))
	}
	c := cookies[0]
	if c.Name != "token" || c.Value != "abc" || !c.HttpOnly || !c.Secure {
		t.Fatalf("cookie attributes wrong: %+v", c)
	}
}
