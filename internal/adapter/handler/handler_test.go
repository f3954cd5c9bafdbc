package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inkline-team/inkline/internal/adapter/dto/tab"
	"github.com/inkline-team/inkline/internal/infrastructure/cache"
	"github.com/inkline-team/inkline/pkg/tabtoken"
	pkgvalidator "github.com/inkline-team/inkline/pkg/validator"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = pkgvalidator.New()
	return e
}

func TestTabRegisterIssuesVerifiableToken(t *testing.T) {
	e := newTestEcho()
	tokens := tabtoken.NewManager("test-secret", time.Hour)
	h := NewTab(tokens, cache.NewMemoryStore(), time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/v1/tabs", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	var resp tab.RegisterTabResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TabID == "" || resp.Token == "" {
		t.Fatalf("incomplete response: %+v", resp)
	}

	tabID, err := tokens.Verify(resp.Token)
	if err != nil {
		t.Fatalf("issued token failed verification: %v", err)
	}
	if tabID != resp.TabID {
		t.Fatalf("token carries tab %q, response says %q", tabID, resp.TabID)
	}
}

func TestTabAuthStoresTabID(t *testing.T) {
	e := newTestEcho()
	tokens := tabtoken.NewManager("test-secret", time.Hour)

	tabID := tabtoken.NewTabID()
	token, err := tokens.Issue(tabID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var seen string
	next := func(c echo.Context) error {
		seen = TabID(c)
		return c.NoContent(http.StatusOK)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/lessons/x/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := TabAuth(tokens)(next)(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen != tabID {
		t.Fatalf("handler saw tab %q, want %q", seen, tabID)
	}
}

func TestTabAuthRejectsMissingAndBadTokens(t *testing.T) {
	e := newTestEcho()
	tokens := tabtoken.NewManager("test-secret", time.Hour)
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, "/v1/lessons/x/session", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := TabAuth(tokens)(next)(c); err != nil {
			t.Fatalf("%s: middleware returned error: %v", tc.name, err)
		}
		if rec.Code != tc.want {
			t.Fatalf("%s: status = %d, want %d", tc.name, rec.Code, tc.want)
		}
	}
}

func TestTabAuthAcceptsQueryParamToken(t *testing.T) {
	e := newTestEcho()
	tokens := tabtoken.NewManager("test-secret", time.Hour)

	token, err := tokens.Issue(tabtoken.NewTabID())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	req := httptest.NewRequest(http.MethodGet, "/v1/lessons/x/channel?token="+token, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := TabAuth(tokens)(next)(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestPlacementEndpoint(t *testing.T) {
	e := newTestEcho()
	h := NewLesson(nil)

	url := "/v1/placements?zone=centerMain&scale_hint=medium" +
		"&container_width=1000&container_height=800&native_width=500&native_height=400"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Placement(c); err != nil {
		t.Fatalf("Placement: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
		Scale float64 `json:"scale"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.X != 500 || resp.Y != 360 {
		t.Fatalf("center = (%v, %v), want (500, 360)", resp.X, resp.Y)
	}
	if resp.Scale != 0.64 {
		t.Fatalf("scale = %v, want 0.64", resp.Scale)
	}
}

func TestPlacementEndpointRejectsUnknownZone(t *testing.T) {
	e := newTestEcho()
	h := NewLesson(nil)

	url := "/v1/placements?zone=nowhere&container_width=1000&container_height=800" +
		"&native_width=500&native_height=400"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Placement(c); err != nil {
		t.Fatalf("Placement: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
