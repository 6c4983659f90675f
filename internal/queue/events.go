package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"genfity-report-service/internal/cache"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	EventsExchange = "genfity.events"
	OrderEventsRK  = "order.#"

	ReportsExchange  = "genfity.reports"
	ReportCacheQueue = "genfity.reports.cache"
	ReportCacheDLQ   = "genfity.reports.cache.dlq"
	ReportDeadRK     = "dead"

	SnapshotCreatedRK = "report.snapshot.created"
)

var ErrMalformedEvent = errors.New("malformed order event")

// OrderEvent is the envelope the order service publishes on genfity.events.
type OrderEvent struct {
	Type       string     `json:"type"`
	OrderID    int64      `json:"orderId"`
	MerchantID int64      `json:"merchantId"`
	Status     string     `json:"status"`
	UpdatedAt  *time.Time `json:"updatedAt"`
}

type SnapshotCreatedEvent struct {
	Type        string    `json:"type"`
	MerchantID  int64     `json:"merchantId"`
	Key         string    `json:"key"`
	Period      string    `json:"period"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// EnsureReportTopology declares the cache invalidation queue bound to every
// order event, with a dead letter queue for events that exhaust retries.
func EnsureReportTopology(ctx context.Context, qc *Client) error {
	if qc == nil {
		return nil
	}

	if err := qc.EnsureExchange(EventsExchange); err != nil {
		return err
	}
	if err := qc.EnsureExchangeKind(ReportsExchange, "direct"); err != nil {
		return err
	}

	if _, err := qc.EnsureQueue(ReportCacheDLQ); err != nil {
		return err
	}
	if err := qc.BindQueue(ReportCacheDLQ, ReportsExchange, ReportDeadRK); err != nil {
		return err
	}

	_, err := qc.EnsureQueueWithArgs(ReportCacheQueue, amqp.Table{
		"x-dead-letter-exchange":    ReportsExchange,
		"x-dead-letter-routing-key": ReportDeadRK,
	})
	if err != nil {
		return err
	}
	// '#' also matches multi-segment keys such as order.status.updated.
	return qc.BindQueue(ReportCacheQueue, EventsExchange, OrderEventsRK)
}

func DecodeOrderEvent(body []byte) (OrderEvent, error) {
	var evt OrderEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return OrderEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	evt.Type = strings.TrimSpace(evt.Type)
	if evt.Type == "" || evt.MerchantID <= 0 {
		return OrderEvent{}, ErrMalformedEvent
	}
	return evt, nil
}

// AffectsReports reports whether the event can change any report figure.
func (e OrderEvent) AffectsReports() bool {
	return strings.HasPrefix(e.Type, "order.")
}

// CacheInvalidator drops a merchant's cached reports whenever one of its
// orders changes. Malformed events are acknowledged and skipped.
func CacheInvalidator(store cache.Store, log *zap.Logger) HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		evt, err := DecodeOrderEvent(body)
		if err != nil {
			log.Warn("order event skipped", zap.Error(err))
			return nil
		}
		if !evt.AffectsReports() {
			return nil
		}
		if err := store.InvalidateMerchant(ctx, evt.MerchantID); err != nil {
			return fmt.Errorf("invalidate merchant %d: %w", evt.MerchantID, err)
		}
		log.Debug("report cache invalidated",
			zap.Int64("merchantId", evt.MerchantID),
			zap.Int64("orderId", evt.OrderID),
			zap.String("type", evt.Type),
		)
		return nil
	}
}
