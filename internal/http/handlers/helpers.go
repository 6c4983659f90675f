package handlers

import (
	"context"
	"net/http"
	"time"

	"genfity-report-service/internal/middleware"
	"genfity-report-service/pkg/response"

	"go.uber.org/zap"
)

func zapError(err error) zap.Field {
	return zap.Error(err)
}

// merchantFromContext writes MERCHANT_NOT_FOUND and returns false when the
// request carries no merchant scope.
func merchantFromContext(w http.ResponseWriter, r *http.Request) (int64, bool) {
	authCtx, ok := middleware.GetAuthContext(r.Context())
	if !ok || authCtx.MerchantID == nil {
		response.Error(w, http.StatusNotFound, "MERCHANT_NOT_FOUND", "Merchant context not found")
		return 0, false
	}
	return *authCtx.MerchantID, true
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.Readiness != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.Readiness.Ping(ctx); err != nil {
			h.Logger.Warn("readiness check failed", zapError(err))
			response.Error(w, http.StatusServiceUnavailable, "NOT_READY", "Database unavailable")
			return
		}
	}
	response.Success(w, map[string]any{"status": "ready"})
}
