package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type routes struct{}

func (routes) RegisterRoutes(e *echo.Echo) {
	e.GET("/items/:id", func(c echo.Context) error {
		return SuccessResponse(c, map[string]string{"id": c.Param("id")})
	})
	e.GET("/missing", func(c echo.Context) error {
		return ErrorResponse(c, NotFoundError("nothing here"))
	})
	e.GET("/panic", func(c echo.Context) error {
		panic("boom")
	})
}

func serve(s *Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestServerRoutesAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewServer(routes{}, WithMetrics("/metrics", reg), WithCORS(false))

	if rec := serve(s, "/items/42"); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"id":"42"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
	if rec := serve(s, "/missing"); rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "ERR_NOT_FOUND") {
		t.Fatalf("expected app error body, got %d %s", rec.Code, rec.Body.String())
	}
	if rec := serve(s, "/panic"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected recovered panic as 500, got %d", rec.Code)
	}

	rec := serve(s, "/no/such/route")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"code":"ERR_NOT_FOUND"`) {
		t.Fatalf("expected enveloped 404 for unmatched route, got %d %s", rec.Code, rec.Body.String())
	}
	if id := rec.Header().Get(echo.HeaderXRequestID); id == "" || !strings.Contains(rec.Body.String(), id) {
		t.Fatalf("expected request id %q echoed in body %s", id, rec.Body.String())
	}

	body := serve(s, "/metrics").Body.String()
	for _, want := range []string{
		`paramsweep_http_requests_total{method="GET",route="/items/:id",status="200"} 1`,
		`paramsweep_http_requests_total{method="GET",route="/missing",status="404"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestServerCORSPreflight(t *testing.T) {
	s := NewServer(routes{}, WithMetrics("", nil))

	req := httptest.NewRequest(http.MethodOptions, "/items/1", nil)
	req.Header.Set(echo.HeaderOrigin, "http://dashboard.local")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodGet)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != "*" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
}

func TestServerAddr(t *testing.T) {
	s := NewServer(nil, WithHost("127.0.0.1"), WithPort(9090))
	if s.Addr() != "127.0.0.1:9090" {
		t.Fatalf("unexpected addr %q", s.Addr())
	}
}
