package handlers

import (
	"errors"
	"net/http"
	"strings"

	"genfity-report-service/internal/store"
	"genfity-report-service/pkg/response"

	"go.uber.org/zap"
)

const revenueCachePrefix = "revenue"

func (h *Handler) MerchantRevenue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	merchantID, ok := merchantFromContext(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	startDate := strings.TrimSpace(query.Get("startDate"))
	endDate := strings.TrimSpace(query.Get("endDate"))

	cacheKey := h.analyticsCacheKey(revenueCachePrefix, merchantID, startDate, endDate)
	if cached, ok := h.getAnalyticsCache(ctx, cacheKey); ok {
		response.Raw(w, http.StatusOK, cached)
		return
	}

	out, err := h.Engine.BuildRevenue(ctx, merchantID, startDate, endDate)
	if errors.Is(err, store.ErrMerchantNotFound) {
		response.Error(w, http.StatusNotFound, "MERCHANT_NOT_FOUND", "Merchant not found")
		return
	}
	if err != nil {
		h.Logger.Error("revenue report build failed", zap.Int64("merchantId", merchantID), zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve revenue data")
		return
	}

	body, err := h.setAnalyticsCache(ctx, cacheKey, response.Envelope(out))
	if err != nil {
		h.Logger.Error("revenue report encode failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve revenue data")
		return
	}
	response.Raw(w, http.StatusOK, body)
}
