package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-live-status/internal/utils"
)

func newTestContext(t *testing.T, method, path string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)
	return c
}

func TestRateKeyUsesAuthenticatedUser(t *testing.T) {
	// Issue a real token and run it through JWTAuth so the user_id in the
	// context has the exact type the limiter sees in production.
	const secret = "test-secret"
	tok, err := utils.NewAccessToken(secret, 42, "OWNER", 5)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	c := newTestContext(t, http.MethodPut, "/v1/owner/venues/:id/status")
	c.Request().Header.Set("Authorization", "Bearer "+tok.Token)

	var key string
	h := JWTAuth(secret)(func(c echo.Context) error {
		key = rateKey("rl", c)
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("JWTAuth: %v", err)
	}

	if !strings.Contains(key, ":user:42:") {
		t.Fatalf("key = %q, want user dimension 42", key)
	}
	if strings.Contains(key, ":user:anon:") {
		t.Fatal("authenticated request bucketed as anon")
	}
}

func TestRateKeyDimensions(t *testing.T) {
	cases := []struct {
		name   string
		userID any
		want   string
	}{
		{"unauthenticated", nil, "user:anon"},
		{"float64 claim", float64(7), "user:7"},
		{"uint64", uint64(8), "user:8"},
		{"int64", int64(9), "user:9"},
		{"string", "10", "user:10"},
		{"empty string", "", "user:anon"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestContext(t, http.MethodPost, "/v1/auth/login")
			if tc.userID != nil {
				c.Set("user_id", tc.userID)
			}
			key := rateKey("rl", c)
			if !strings.Contains(key, tc.want) {
				t.Fatalf("key = %q, want %q", key, tc.want)
			}
			if !strings.HasPrefix(key, "rl:ip:") {
				t.Fatalf("key = %q, want rl:ip: prefix", key)
			}
			if !strings.HasSuffix(key, "route:POST /v1/auth/login") {
				t.Fatalf("key = %q, want route suffix", key)
			}
		})
	}
}

func TestRateKeySeparatesUsersOnSameRoute(t *testing.T) {
	a := newTestContext(t, http.MethodPut, "/v1/owner/venues/:id/status")
	a.Set("user_id", float64(1))
	b := newTestContext(t, http.MethodPut, "/v1/owner/venues/:id/status")
	b.Set("user_id", float64(2))

	if rateKey("rl", a) == rateKey("rl", b) {
		t.Fatal("different users must get different buckets")
	}
}
