package handlers

import (
	"context"

	"genfity-report-service/internal/cache"
	"genfity-report-service/internal/config"
	"genfity-report-service/internal/report"
	"genfity-report-service/internal/storage"

	"go.uber.org/zap"
)

// EventPublisher is satisfied by *queue.Client.
type EventPublisher interface {
	PublishJSON(ctx context.Context, exchange, routingKey string, payload any) error
}

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Engine    *report.Engine
	Cache     cache.Store
	Snapshots *storage.Snapshots
	Events    EventPublisher
	Readiness Pinger
	Logger    *zap.Logger
	Config    config.Config
}
