package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/candycraft/sweetshop-api/internal/core/domain"
)

type stubValidator struct {
	identity *domain.Identity
	err      error
	got      string
}

func (s *stubValidator) ValidateToken(token string) (*domain.Identity, error) {
	s.got = token
	return s.identity, s.err
}

func runAuthenticate(t *testing.T, header string, v *stubValidator) (bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	called := false
	err := Authenticate(v)(func(c echo.Context) error {
		called = true
		id, ok := Identity(c)
		if !ok || id != v.identity {
			t.Fatalf("identity not attached")
		}
		return nil
	})(c)
	return called, err
}

func TestAuthenticate_ValidToken(t *testing.T) {
	v := &stubValidator{identity: &domain.Identity{UserID: "u1", Email: "a@b.com", Role: domain.RoleAdmin}}

	called, err := runAuthenticate(t, "Bearer abc.def.ghi", v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if v.got != "abc.def.ghi" {
		t.Fatalf("validator received %q", v.got)
	}
}

func TestAuthenticate_MissingOrMalformedHeader(t *testing.T) {
	for _, header := range []string{"", "Token abc", "Bearer", "Bearer   "} {
		t.Run(header, func(t *testing.T) {
			called, err := runAuthenticate(t, header, &stubValidator{})
			if called {
				t.Fatalf("should not reach next")
			}
			if !errors.Is(err, domain.ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
			if err.Error() != "Access token required" {
				t.Fatalf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	v := &stubValidator{err: domain.Errorf(domain.ErrUnauthenticated, "Invalid or expired token")}

	called, err := runAuthenticate(t, "bearer not-a-token", v)
	if called {
		t.Fatalf("should not reach next")
	}
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err.Error() != "Invalid or expired token" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
