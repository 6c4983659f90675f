package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func strPtr(v string) *string { return &v }

func TestParseBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"abc":          "",
		"":             "",
	}
	for header, expected := range cases {
		if got := ParseBearerToken(header); got != expected {
			t.Fatalf("%q: expected %q, got %q", header, expected, got)
		}
	}
}

func TestVerifyAccessToken(t *testing.T) {
	secret := "test-secret"
	claims := &Claims{
		UserID:     "7",
		SessionID:  "70",
		Role:       RoleMerchantStaff,
		MerchantID: strPtr("3"),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := SignAccessToken(claims, secret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parsed, err := VerifyAccessToken(token, secret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	subject, err := parsed.MerchantSubject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject != (Subject{UserID: 7, SessionID: 70, MerchantID: 3}) {
		t.Fatalf("unexpected subject %+v", subject)
	}
	if !parsed.IsMerchantRole() {
		t.Fatalf("expected merchant role")
	}

	if _, err := VerifyAccessToken(token, "other"); err == nil {
		t.Fatalf("expected signature error")
	}
	if _, err := VerifyAccessToken("", secret); !errors.Is(err, ErrTokenRequired) {
		t.Fatalf("expected ErrTokenRequired, got %v", err)
	}

	noExpiry, _ := SignAccessToken(&Claims{UserID: "1", SessionID: "1", Role: RoleMerchantOwner}, secret)
	if _, err := VerifyAccessToken(noExpiry, secret); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestMerchantSubjectErrors(t *testing.T) {
	if _, err := (&Claims{UserID: "1", SessionID: "1"}).MerchantSubject(); !errors.Is(err, ErrMerchantMissing) {
		t.Fatalf("expected ErrMerchantMissing, got %v", err)
	}
	if _, err := (&Claims{UserID: "1", SessionID: "1", MerchantID: strPtr("x")}).MerchantSubject(); !errors.Is(err, ErrMerchantMissing) {
		t.Fatalf("expected ErrMerchantMissing, got %v", err)
	}
	if _, err := (&Claims{UserID: "u", SessionID: "1", MerchantID: strPtr("3")}).MerchantSubject(); !errors.Is(err, ErrInvalidSubject) {
		t.Fatalf("expected ErrInvalidSubject, got %v", err)
	}
}

func TestGetPermissionForAPI(t *testing.T) {
	cases := []struct {
		path     string
		expected StaffPermission
	}{
		{"/api/merchant/reports", PermReports},
		{"/api/merchant/reports/snapshots", PermReports},
		{"/api/merchant/reports/sales-dashboard", PermRevenue},
		{"/api/merchant/revenue", PermRevenue},
	}
	for _, tc := range cases {
		perm := GetPermissionForAPI(tc.path, "GET")
		if perm == nil || *perm != tc.expected {
			t.Fatalf("%s: expected %s, got %v", tc.path, tc.expected, perm)
		}
	}
	if perm := GetPermissionForAPI("/health", "GET"); perm != nil {
		t.Fatalf("expected no permission for /health, got %s", *perm)
	}
}

func TestMerchantAccessHasPermission(t *testing.T) {
	access := MerchantAccess{Permissions: []string{"reports"}}
	if !access.HasPermission(PermReports) || access.HasPermission(PermRevenue) {
		t.Fatalf("unexpected permission result for %+v", access)
	}
}
