package quote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeRefresher struct {
	refreshErr  error
	invalidated bool
}

func (f *fakeRefresher) Refresh(context.Context) error { return f.refreshErr }
func (f *fakeRefresher) Invalidate(context.Context) error {
	f.invalidated = true
	return nil
}

func testRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/v1/shipping/quote", h.Quote)
	r.Post("/api/v1/shipping/options", h.Options)
	r.Get("/api/v1/shipping/zones/{postalCode}", h.ResolveZone)
	r.Post("/api/v1/admin/shipping/refresh", h.AdminRefresh)
	return r
}

func TestHandlerQuote(t *testing.T) {
	h := &Handler{
		Svc: &Service{Provider: staticProvider{snapshot: testSnapshot()}, Validate: validator.New(), Log: zerolog.Nop()},
		Log: zerolog.Nop(),
	}
	body := `{"postalCode":"10431","methodCode":"HOME","items":[{"producerId":1,"qty":1,"unitPriceCents":500,"weightGrams":400}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shipping/quote", strings.NewReader(body))
	rr := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var payload struct {
		Data QuoteResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	require.Equal(t, int64(350), payload.Data.TotalCents)
	require.Equal(t, "EUR", payload.Data.Currency)
}

func TestHandlerQuoteMalformedBody(t *testing.T) {
	h := &Handler{
		Svc: &Service{Provider: staticProvider{snapshot: testSnapshot()}, Validate: validator.New(), Log: zerolog.Nop()},
		Log: zerolog.Nop(),
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shipping/quote", strings.NewReader(`{"postalCode":`))
	rr := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlerQuoteUnknownField(t *testing.T) {
	h := &Handler{
		Svc: &Service{Provider: staticProvider{snapshot: testSnapshot()}, Validate: validator.New(), Log: zerolog.Nop()},
		Log: zerolog.Nop(),
	}
	body := `{"postalCode":"10431","methodCode":"HOME","surprise":true,"items":[{"producerId":1,"qty":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shipping/quote", strings.NewReader(body))
	rr := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlerQuoteZoneUnavailable(t *testing.T) {
	h := &Handler{
		Svc: &Service{Provider: staticProvider{snapshot: testSnapshot()}, Validate: validator.New(), Log: zerolog.Nop()},
		Log: zerolog.Nop(),
	}
	body := `{"postalCode":"99999","methodCode":"HOME","items":[{"producerId":1,"qty":1,"unitPriceCents":500,"weightGrams":400}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/shipping/quote", strings.NewReader(body))
	rr := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	require.Equal(t, CodeShippingUnavailable, payload.Error.Code)
}

func TestHandlerResolveZone(t *testing.T) {
	h := &Handler{
		Svc: &Service{Provider: staticProvider{snapshot: testSnapshot()}, Validate: validator.New(), Log: zerolog.Nop()},
		Log: zerolog.Nop(),
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/shipping/zones/10431", nil)
	rr := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var payload struct {
		Data ZoneResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	require.Equal(t, "Athens", payload.Data.ZoneName)
}

func TestHandlerAdminRefresh(t *testing.T) {
	refresher := &fakeRefresher{}
	h := &Handler{
		Svc:       &Service{Provider: staticProvider{snapshot: testSnapshot()}, Validate: validator.New(), Log: zerolog.Nop()},
		Refresher: refresher,
		Log:       zerolog.Nop(),
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/shipping/refresh", nil)
	rr := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, refresher.invalidated)
}

func TestHandlerAdminRefreshFailure(t *testing.T) {
	refresher := &fakeRefresher{refreshErr: errors.New("database unavailable")}
	h := &Handler{
		Svc:       &Service{Provider: staticProvider{snapshot: testSnapshot()}, Validate: validator.New(), Log: zerolog.Nop()},
		Refresher: refresher,
		Log:       zerolog.Nop(),
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/shipping/refresh", nil)
	rr := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rr, req)

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.False(t, refresher.invalidated)
}
