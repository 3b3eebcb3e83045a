package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/emran-niftyitsolution/tms-sub000/internal/handler"
)

// The response cache keys on route and query with no user identity, so it may
// only ever wrap the public browse routes.  This test registers the public
// and customer surfaces with a marker standing in for the cache middleware
// and checks the marker fires on a public GET but never on an authenticated
// one; mounting the cache globally would replay one passenger's tickets to
// the next caller.
func TestResponseCacheMountedOnPublicRoutesOnly(t *testing.T) {
	e := echo.New()
	marker := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Short-circuit like a cache hit so the nil-repo handlers
			// behind the route are never reached.
			c.Response().Header().Set("X-Cache", "HIT")
			return c.NoContent(http.StatusOK)
		}
	}
	RegisterPublic(e, &handler.PublicHandler{}, &handler.CustomerHandler{}, marker)
	RegisterCustomer(e, &handler.CustomerHandler{}, "test-secret")

	public := httptest.NewRecorder()
	e.ServeHTTP(public, httptest.NewRequest(http.MethodGet, "/v1/companies", nil))
	if public.Header().Get("X-Cache") != "HIT" {
		t.Errorf("/v1/companies: cache middleware did not run, X-Cache = %q", public.Header().Get("X-Cache"))
	}

	private := httptest.NewRecorder()
	e.ServeHTTP(private, httptest.NewRequest(http.MethodGet, "/v1/my-tickets", nil))
	if got := private.Header().Get("X-Cache"); got != "" {
		t.Errorf("/v1/my-tickets: cache middleware ran on an authenticated route, X-Cache = %q", got)
	}
	if private.Code != http.StatusUnauthorized {
		t.Errorf("/v1/my-tickets without a token: status = %d, want 401", private.Code)
	}
}
