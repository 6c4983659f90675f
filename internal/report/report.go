package report

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

type DateRanges struct {
	Current  DateRange `json:"current"`
	Previous DateRange `json:"previous"`
}

type MerchantInfo struct {
	Currency string `json:"currency"`
	Timezone string `json:"timezone"`
}

// Report is the assembled merchant report. Every facet is always present;
// empty collections encode as [].
type Report struct {
	Period               string                   `json:"period"`
	DateRange            DateRanges               `json:"dateRange"`
	Merchant             MerchantInfo             `json:"merchant"`
	Summary              Summary                  `json:"summary"`
	PeriodComparison     PeriodComparison         `json:"periodComparison"`
	VoucherSummary       VoucherSummary           `json:"voucherSummary"`
	FeesBreakdown        FeesBreakdown            `json:"feesBreakdown"`
	OrderTypeBreakdown   []OrderTypeEntry         `json:"orderTypeBreakdown"`
	OrderStatusBreakdown []OrderStatusEntry       `json:"orderStatusBreakdown"`
	PaymentBreakdown     []PaymentEntry           `json:"paymentBreakdown"`
	ScheduledSummary     ScheduledSummary         `json:"scheduledSummary"`
	DailyRevenue         []DailyRevenuePoint      `json:"dailyRevenue"`
	Anomalies            []AnomalyPoint           `json:"anomalies"`
	AnomalySettings      AnomalySettings          `json:"anomalySettings"`
	TopMenuItems         []MenuItemEntry          `json:"topMenuItems"`
	HourlyPerformance    []HourlyPerformanceEntry `json:"hourlyPerformance"`
}

// Assemble computes every facet for the current window and compares it with
// the previous one. It performs no I/O.
func Assemble(merchant Merchant, period Period, current []Order, previous []Order, settings AnomalySettings) Report {
	location := ResolveLocation(merchant.Timezone)
	settings = settings.Normalize()

	currentSummary := Summarize(current)
	previousSummary := Summarize(previous)
	dailyRevenue := DailyRevenue(current, location)

	return Report{
		Period:               period.Keyword,
		DateRange:            DateRanges{Current: period.Current, Previous: period.Previous},
		Merchant:             MerchantInfo{Currency: merchant.Currency, Timezone: location.String()},
		Summary:              currentSummary,
		PeriodComparison:     ComparePeriods(currentSummary, previousSummary),
		VoucherSummary:       SummarizeVouchers(current),
		FeesBreakdown:        Fees(currentSummary),
		OrderTypeBreakdown:   OrderTypeBreakdown(current),
		OrderStatusBreakdown: OrderStatusBreakdown(current),
		PaymentBreakdown:     PaymentBreakdown(current),
		ScheduledSummary:     BuildScheduledSummary(current),
		DailyRevenue:         dailyRevenue,
		Anomalies:            DetectAnomalies(dailyRevenue, settings),
		AnomalySettings:      settings,
		TopMenuItems:         TopMenuItems(current, topMenuItemsLimit),
		HourlyPerformance:    HourlyPerformance(current, location),
	}
}

// Engine reads orders for a merchant and assembles reports from them.
type Engine struct {
	source OrderSource
	now    func() time.Time
}

type Option func(*Engine)

// WithClock overrides the clock periods are resolved against.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEngine(source OrderSource, opts ...Option) *Engine {
	e := &Engine{source: source, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Merchant returns the metadata the engine renders reports with.
func (e *Engine) Merchant(ctx context.Context, merchantID int64) (Merchant, error) {
	merchant, err := e.source.MerchantSettings(ctx, merchantID)
	if err != nil {
		return Merchant{}, fmt.Errorf("merchant lookup: %w", err)
	}
	return merchant, nil
}

// Build resolves the period in the merchant timezone, reads both windows
// concurrently and assembles the report.
func (e *Engine) Build(ctx context.Context, merchantID int64, params Params) (*Report, error) {
	merchant, err := e.Merchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	location := ResolveLocation(merchant.Timezone)
	period := ResolvePeriod(params.Period, params.StartDate, params.EndDate, e.now(), location)

	current, previous, err := e.fetchWindows(ctx, merchantID, period, params.Filters, params.Filters)
	if err != nil {
		return nil, err
	}

	out := Assemble(merchant, period, current, previous, params.Anomaly)
	return &out, nil
}

func (e *Engine) fetchWindows(ctx context.Context, merchantID int64, period Period, currentFilters Filters, previousFilters Filters) ([]Order, []Order, error) {
	var current, previous []Order
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		orders, err := e.source.FetchOrders(gctx, Query{MerchantID: merchantID, Window: period.Current, Filters: currentFilters})
		if err != nil {
			return fmt.Errorf("fetch current window: %w", err)
		}
		current = orders
		return nil
	})
	g.Go(func() error {
		orders, err := e.source.FetchOrders(gctx, Query{MerchantID: merchantID, Window: period.Previous, Filters: previousFilters})
		if err != nil {
			return fmt.Errorf("fetch previous window: %w", err)
		}
		previous = orders
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return current, previous, nil
}
