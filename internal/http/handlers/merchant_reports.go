package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"genfity-report-service/internal/queue"
	"genfity-report-service/internal/report"
	"genfity-report-service/internal/store"
	"genfity-report-service/pkg/response"

	"go.uber.org/zap"
)

const (
	reportsCachePrefix   = "merchant_reports"
	dashboardCachePrefix = "sales_dashboard"
)

func (h *Handler) MerchantReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	merchantID, ok := merchantFromContext(w, r)
	if !ok {
		return
	}

	params := report.ParseParams(r.URL.Query())
	cacheKey := h.analyticsCacheKey(reportsCachePrefix, merchantID, params.CacheParts()...)
	if cached, ok := h.getAnalyticsCache(ctx, cacheKey); ok {
		response.Raw(w, http.StatusOK, cached)
		return
	}

	out, err := h.Engine.Build(ctx, merchantID, params)
	if errors.Is(err, store.ErrMerchantNotFound) {
		response.Error(w, http.StatusNotFound, "MERCHANT_NOT_FOUND", "Merchant not found")
		return
	}
	if err != nil {
		h.Logger.Error("merchant report build failed", zap.Int64("merchantId", merchantID), zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch reports data")
		return
	}

	body, err := h.setAnalyticsCache(ctx, cacheKey, response.Envelope(out))
	if err != nil {
		h.Logger.Error("merchant report encode failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch reports data")
		return
	}
	response.Raw(w, http.StatusOK, body)
}

func (h *Handler) MerchantReportsSalesDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	merchantID, ok := merchantFromContext(w, r)
	if !ok {
		return
	}

	period := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("period")))
	if period == "" {
		period = report.PeriodMonth
	}

	cacheKey := h.analyticsCacheKey(dashboardCachePrefix, merchantID, period)
	if cached, ok := h.getAnalyticsCache(ctx, cacheKey); ok {
		response.Raw(w, http.StatusOK, cached)
		return
	}

	dashboard, err := h.Engine.BuildDashboard(ctx, merchantID, period)
	if errors.Is(err, store.ErrMerchantNotFound) {
		response.Error(w, http.StatusNotFound, "MERCHANT_NOT_FOUND", "Merchant not found")
		return
	}
	if err != nil {
		h.Logger.Error("sales dashboard build failed", zap.Int64("merchantId", merchantID), zapError(err))
		response.Error(w, http.StatusInternalServerError, "SERVER_ERROR", "Failed to fetch sales dashboard")
		return
	}

	body, err := h.setAnalyticsCache(ctx, cacheKey, response.Envelope(dashboard))
	if err != nil {
		h.Logger.Error("sales dashboard encode failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "SERVER_ERROR", "Failed to fetch sales dashboard")
		return
	}
	response.Raw(w, http.StatusOK, body)
}

// MerchantReportSnapshotCreate renders the report for the request's
// parameters, archives it to the object store and announces it on the
// reports exchange.
func (h *Handler) MerchantReportSnapshotCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	merchantID, ok := merchantFromContext(w, r)
	if !ok {
		return
	}
	if h.Snapshots == nil {
		response.Error(w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Report archive is not configured")
		return
	}

	params := report.ParseParams(r.URL.Query())
	out, err := h.Engine.Build(ctx, merchantID, params)
	if errors.Is(err, store.ErrMerchantNotFound) {
		response.Error(w, http.StatusNotFound, "MERCHANT_NOT_FOUND", "Merchant not found")
		return
	}
	if err != nil {
		h.Logger.Error("report snapshot build failed", zap.Int64("merchantId", merchantID), zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build report snapshot")
		return
	}

	body, err := json.Marshal(out)
	if err != nil {
		h.Logger.Error("report snapshot encode failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build report snapshot")
		return
	}

	snapshot, err := h.Snapshots.Archive(ctx, merchantID, body)
	if err != nil {
		h.Logger.Error("report snapshot archive failed", zap.Int64("merchantId", merchantID), zapError(err))
		response.Error(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to store report snapshot")
		return
	}

	if h.Events != nil {
		event := queue.SnapshotCreatedEvent{
			Type:        queue.SnapshotCreatedRK,
			MerchantID:  merchantID,
			Key:         snapshot.Key,
			Period:      out.Period,
			GeneratedAt: *snapshot.GeneratedAt,
		}
		if err := h.Events.PublishJSON(ctx, queue.ReportsExchange, queue.SnapshotCreatedRK, event); err != nil {
			h.Logger.Warn("report snapshot event publish failed", zap.String("key", snapshot.Key), zapError(err))
		}
	}

	response.Created(w, snapshot)
}

func (h *Handler) MerchantReportSnapshotList(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := merchantFromContext(w, r)
	if !ok {
		return
	}
	if h.Snapshots == nil {
		response.Error(w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Report archive is not configured")
		return
	}

	snapshots, err := h.Snapshots.List(r.Context(), merchantID)
	if err != nil {
		h.Logger.Error("report snapshot list failed", zap.Int64("merchantId", merchantID), zapError(err))
		response.Error(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to list report snapshots")
		return
	}
	response.Success(w, snapshots)
}
