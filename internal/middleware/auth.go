package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"

	"genfity-report-service/internal/auth"
)

type contextKey string

const authContextKey contextKey = "authContext"

type AuthContext struct {
	UserID      int64
	SessionID   int64
	Role        auth.UserRole
	Email       string
	MerchantID  *int64
	IsOwner     bool
	Permissions []string
}

func WithAuthContext(ctx context.Context, authCtx *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

func GetAuthContext(ctx context.Context) (*AuthContext, bool) {
	value := ctx.Value(authContextKey)
	if value == nil {
		return nil, false
	}
	ac, ok := value.(*AuthContext)
	return ac, ok
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	writeAuthErrorDebug(w, status, message, "")
}

func writeAuthErrorDebug(w http.ResponseWriter, status int, message string, debug string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload := map[string]any{
		"success": false,
		"error":   "UNAUTHORIZED",
		"message": message,
	}

	if os.Getenv("APP_ENV") == "development" && strings.TrimSpace(debug) != "" {
		payload["debug"] = debug
	}

	_ = json.NewEncoder(w).Encode(payload)
}

// MerchantAuth admits merchant owners and staff whose session, merchant link
// and merchant are active. Staff additionally need the permission mapped to
// the route.
func MerchantAuth(verifier auth.SessionVerifier, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ParseBearerToken(r.Header.Get("Authorization"))
			claims, err := auth.VerifyAccessToken(token, jwtSecret)
			if err != nil {
				writeAuthErrorDebug(w, http.StatusUnauthorized, "Authorization token required", err.Error())
				return
			}

			if !claims.IsMerchantRole() {
				writeAuthError(w, http.StatusForbidden, "Merchant access required")
				return
			}

			subject, err := claims.MerchantSubject()
			if errors.Is(err, auth.ErrMerchantMissing) {
				writeAuthError(w, http.StatusUnauthorized, "Merchant not found")
				return
			}
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			access, err := verifier.MerchantAccess(r.Context(), subject.UserID, subject.MerchantID, subject.SessionID)
			if err != nil {
				writeAuthErrorDebug(w, http.StatusUnauthorized, "Merchant access required", err.Error())
				return
			}

			if !access.LinkActive {
				writeAuthError(w, http.StatusForbidden, "Merchant access is disabled")
				return
			}

			if !access.MerchantActive {
				writeAuthError(w, http.StatusForbidden, "Merchant is currently disabled")
				return
			}

			if strings.EqualFold(access.SubscriptionStatus, "SUSPENDED") {
				writeAuthError(w, http.StatusForbidden, "Subscription is suspended. Please renew to continue.")
				return
			}

			if claims.Role == auth.RoleMerchantStaff {
				if perm := auth.GetPermissionForAPI(r.URL.Path, r.Method); perm != nil && !access.HasPermission(*perm) {
					writeAuthError(w, http.StatusForbidden, "You do not have permission to access this resource")
					return
				}
			}

			merchantID := subject.MerchantID
			authCtx := &AuthContext{
				UserID:      subject.UserID,
				SessionID:   subject.SessionID,
				Role:        claims.Role,
				Email:       claims.Email,
				MerchantID:  &merchantID,
				IsOwner:     claims.Role == auth.RoleMerchantOwner,
				Permissions: access.Permissions,
			}

			ctx := WithAuthContext(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
