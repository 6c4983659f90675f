package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"genfity-report-service/internal/auth"
	"genfity-report-service/internal/cache"
	"genfity-report-service/internal/config"
	"genfity-report-service/internal/http/handlers"
	"genfity-report-service/internal/report"
	"genfity-report-service/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const secret = "router-secret"

type allowAll struct{}

func (allowAll) MerchantAccess(context.Context, int64, int64, int64) (auth.MerchantAccess, error) {
	return auth.MerchantAccess{Role: auth.RoleMerchantOwner, LinkActive: true, MerchantActive: true}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	source := store.NewMemory()
	source.PutMerchant(report.Merchant{ID: 3, Currency: "AUD", Timezone: "UTC"})
	h := &handlers.Handler{
		Engine: report.NewEngine(source),
		Cache:  cache.NewMemory(0),
		Logger: zap.NewNop(),
		Config: config.Config{Env: "production", JWTSecret: secret},
	}
	return NewRouter(h, allowAll{})
}

func ownerToken(t *testing.T) string {
	t.Helper()
	merchantID := "3"
	token, err := auth.SignAccessToken(&auth.Claims{
		UserID:     "1",
		SessionID:  "1",
		Role:       auth.RoleMerchantOwner,
		MerchantID: &merchantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter(t)
	token := ownerToken(t)

	cases := []struct {
		method   string
		path     string
		token    string
		expected int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/ready", "", http.StatusOK},
		{http.MethodGet, "/api/merchant/reports", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/merchant/reports", token, http.StatusOK},
		{http.MethodGet, "/api/merchant/reports/sales-dashboard?period=today", token, http.StatusOK},
		{http.MethodGet, "/api/merchant/revenue?startDate=2025-01-01&endDate=2025-01-14", token, http.StatusOK},
		{http.MethodGet, "/api/merchant/reports/snapshots", token, http.StatusServiceUnavailable},
		{http.MethodDelete, "/api/merchant/reports", token, http.StatusMethodNotAllowed},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if tc.token != "" {
			req.Header.Set("Authorization", "Bearer "+tc.token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tc.expected {
			t.Fatalf("%s %s: expected %d, got %d (%s)", tc.method, tc.path, tc.expected, rec.Code, rec.Body.String())
		}
		if rec.Header().Get("X-Request-Id") == "" {
			t.Fatalf("%s %s: expected request id header", tc.method, tc.path)
		}
	}
}
