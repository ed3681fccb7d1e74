package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/anshulagrawal2902/MSS/internal/utils"
)

const testSecret = "middleware-test-secret"

func protected(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, uint64) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen uint64
	handler := mw(func(c echo.Context) error {
		seen = CurrentUserID(c)
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return rec, seen
}

func TestJWTAuthBearerHeader(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 7, 5)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+at.Token)

	rec, uid := protected(t, JWTAuth(testSecret), req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rec.Code)
	}
	if uid != 7 {
		t.Fatalf("user id=%d, want 7", uid)
	}
}

func TestJWTAuthQueryToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 7, 5)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/v1/me?token="+at.Token, nil)

	rec, uid := protected(t, JWTAuth(testSecret), req)
	if rec.Code != http.StatusOK || uid != 7 {
		t.Fatalf("status=%d uid=%d, want 200 7", rec.Code, uid)
	}
}

func TestJWTAuthRejects(t *testing.T) {
	wrongSecret, err := utils.NewAccessToken("other-secret", 7, 5)
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"malformed", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + wrongSecret.Token},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec, _ := protected(t, JWTAuth(testSecret), req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status=%d, want 401", rec.Code)
			}
		})
	}
}

type fakeAccounts struct {
	confirmed map[uint64]bool
	err       error
}

func (f *fakeAccounts) IsConfirmed(_ context.Context, userID uint64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.confirmed[userID], nil
}

func TestRequireConfirmed(t *testing.T) {
	accounts := &fakeAccounts{confirmed: map[uint64]bool{1: true, 2: false}}

	cases := []struct {
		name string
		uid  uint64
		want int
	}{
		{"confirmed", 1, http.StatusOK},
		{"unconfirmed", 2, http.StatusForbidden},
		{"unauthenticated", 0, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/v1/operations", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tc.uid != 0 {
				c.Set("user_id", tc.uid)
			}
			handler := RequireConfirmed(accounts)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})
			if err := handler(c); err != nil {
				t.Fatal(err)
			}
			if rec.Code != tc.want {
				t.Fatalf("status=%d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestRequireConfirmedLookupError(t *testing.T) {
	accounts := &fakeAccounts{err: errors.New("db down")}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/operations", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(1))

	handler := RequireConfirmed(accounts)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", rec.Code)
	}
}
