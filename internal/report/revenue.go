package report

import (
	"context"
	"fmt"
	"time"
)

const defaultRevenueDays = 30

type RevenueSummary struct {
	TotalOrders        int64   `json:"totalOrders"`
	TotalRevenue       float64 `json:"totalRevenue"`
	TotalTax           float64 `json:"totalTax"`
	TotalServiceCharge float64 `json:"totalServiceCharge"`
	TotalPackagingFee  float64 `json:"totalPackagingFee"`
	GrandTotal         float64 `json:"grandTotal"`
	AverageOrderValue  float64 `json:"averageOrderValue"`
}

// Revenue is the revenue analytics view over one explicit date window.
// Status counts cover every order; all other facets cover completed orders.
type Revenue struct {
	DateRange            DateRange           `json:"dateRange"`
	Merchant             MerchantInfo        `json:"merchant"`
	Summary              RevenueSummary      `json:"summary"`
	DailyRevenue         []DailyRevenuePoint `json:"dailyRevenue"`
	OrderStatusBreakdown []OrderStatusEntry  `json:"orderStatusBreakdown"`
	OrderTypeBreakdown   []OrderTypeEntry    `json:"orderTypeBreakdown"`
	TopMenuItems         []MenuItemEntry     `json:"topMenuItems"`
	HourlyDistribution   []PeakHour          `json:"hourlyDistribution"`
}

// ResolveRevenueRange returns whole merchant-local days: the end date's day
// (today by default) back to the start date's day (30 days earlier by
// default). A start after the end reverts to the default start.
func ResolveRevenueRange(startDateRaw string, endDateRaw string, now time.Time, location *time.Location) DateRange {
	if location == nil {
		location = time.UTC
	}

	end := parseDateValue(endDateRaw, location, false)
	if end.IsZero() {
		end = now
	}
	end = end.In(location)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, location)

	defaultStart := endDay.AddDate(0, 0, -defaultRevenueDays)
	start := parseDateValue(startDateRaw, location, false)
	if start.IsZero() {
		start = defaultStart
	}
	start = start.In(location)
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, location)
	if start.After(endDay) {
		start = defaultStart
	}

	return DateRange{Start: start, End: endDay.AddDate(0, 0, 1).Add(-time.Nanosecond)}
}

func AssembleRevenue(merchant Merchant, window DateRange, orders []Order) Revenue {
	location := ResolveLocation(merchant.Timezone)
	completed := completedOnly(orders)
	summary := Summarize(completed)

	return Revenue{
		DateRange: window,
		Merchant:  MerchantInfo{Currency: merchant.Currency, Timezone: location.String()},
		Summary: RevenueSummary{
			TotalOrders:        summary.CompletedOrders,
			TotalRevenue:       summary.Subtotal,
			TotalTax:           summary.TotalTax,
			TotalServiceCharge: summary.TotalServiceCharge,
			TotalPackagingFee:  summary.TotalPackagingFee,
			GrandTotal:         summary.TotalRevenue,
			AverageOrderValue:  summary.AverageOrderValue,
		},
		DailyRevenue:         DailyRevenue(completed, location),
		OrderStatusBreakdown: OrderStatusBreakdown(orders),
		OrderTypeBreakdown:   OrderTypeBreakdown(completed),
		TopMenuItems:         TopMenuItems(completed, topMenuItemsLimit),
		HourlyDistribution:   peakHours(completed, location),
	}
}

// BuildRevenue reads a single window; revenue analytics has no comparison
// period.
func (e *Engine) BuildRevenue(ctx context.Context, merchantID int64, startDateRaw string, endDateRaw string) (*Revenue, error) {
	merchant, err := e.Merchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	location := ResolveLocation(merchant.Timezone)
	window := ResolveRevenueRange(startDateRaw, endDateRaw, e.now(), location)

	orders, err := e.source.FetchOrders(ctx, Query{MerchantID: merchantID, Window: window})
	if err != nil {
		return nil, fmt.Errorf("fetch revenue window: %w", err)
	}

	out := AssembleRevenue(merchant, window, orders)
	return &out, nil
}
