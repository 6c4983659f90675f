package report

import (
	"context"
	"sort"
	"strings"
	"time"
)

const PeriodToday = "today"

type DashboardSummary struct {
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalOrders       int64   `json:"totalOrders"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	CompletedOrders   int64   `json:"completedOrders"`
	CancelledOrders   int64   `json:"cancelledOrders"`
	PendingOrders     int64   `json:"pendingOrders"`
}

type RevenueTrendPoint struct {
	Date       string  `json:"date"`
	Revenue    float64 `json:"revenue"`
	OrderCount int64   `json:"orderCount"`
}

type TopSellingItem struct {
	MenuID     string  `json:"menuId"`
	MenuName   string  `json:"menuName"`
	Quantity   int64   `json:"quantity"`
	Revenue    float64 `json:"revenue"`
	Percentage float64 `json:"percentage"`
}

type PeakHour struct {
	Hour       int     `json:"hour"`
	OrderCount int64   `json:"orderCount"`
	Revenue    float64 `json:"revenue"`
}

type ShareEntry struct {
	Key        string  `json:"key"`
	Count      int64   `json:"count"`
	Revenue    float64 `json:"revenue"`
	Percentage float64 `json:"percentage"`
}

type RevenueComparison struct {
	Current          float64 `json:"current"`
	Previous         float64 `json:"previous"`
	PercentageChange float64 `json:"percentageChange"`
}

type DashboardMeta struct {
	Period    string    `json:"period"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Currency  string    `json:"currency"`
	Timezone  string    `json:"timezone"`
}

// Dashboard is the compact sales view of the current period.
type Dashboard struct {
	Summary                DashboardSummary    `json:"summary"`
	RevenueTrend           []RevenueTrendPoint `json:"revenueTrend"`
	TopSellingItems        []TopSellingItem    `json:"topSellingItems"`
	PeakHours              []PeakHour          `json:"peakHours"`
	OrderTypeBreakdown     []ShareEntry        `json:"orderTypeBreakdown"`
	PaymentMethodBreakdown []ShareEntry        `json:"paymentMethodBreakdown"`
	RevenueComparison      RevenueComparison   `json:"revenueComparison"`
	Meta                   DashboardMeta       `json:"meta"`
}

// ResolveDashboardPeriod returns calendar-aligned windows: today against
// yesterday, month-to-date against the prior month, year-to-date against the
// prior year, and a rolling week against the week before it.
func ResolveDashboardPeriod(period string, now time.Time, location *time.Location) Period {
	if location == nil {
		location = time.UTC
	}
	now = now.In(location)
	keyword := strings.ToLower(strings.TrimSpace(period))

	switch keyword {
	case PeriodToday:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, location)
		return Period{
			Keyword:  keyword,
			Current:  DateRange{Start: start, End: now},
			Previous: DateRange{Start: start.AddDate(0, 0, -1), End: start.Add(-time.Nanosecond)},
		}
	case PeriodWeek:
		current := DateRange{Start: now.AddDate(0, 0, -7), End: now}
		return Period{Keyword: keyword, Current: current, Previous: previousRange(current)}
	case PeriodYear:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, location)
		return Period{
			Keyword:  keyword,
			Current:  DateRange{Start: start, End: now},
			Previous: DateRange{Start: start.AddDate(-1, 0, 0), End: start.Add(-time.Nanosecond)},
		}
	default:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, location)
		return Period{
			Keyword:  PeriodMonth,
			Current:  DateRange{Start: start, End: now},
			Previous: DateRange{Start: start.AddDate(0, -1, 0), End: start.Add(-time.Nanosecond)},
		}
	}
}

// BuildDashboard reads all current orders and the completed orders of the
// previous window.
func (e *Engine) BuildDashboard(ctx context.Context, merchantID int64, period string) (*Dashboard, error) {
	merchant, err := e.Merchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	location := ResolveLocation(merchant.Timezone)
	resolved := ResolveDashboardPeriod(period, e.now(), location)

	current, previous, err := e.fetchWindows(ctx, merchantID, resolved, Filters{}, Filters{Statuses: []string{StatusCompleted}})
	if err != nil {
		return nil, err
	}

	out := AssembleDashboard(merchant, resolved, current, previous)
	return &out, nil
}

func AssembleDashboard(merchant Merchant, period Period, current []Order, previous []Order) Dashboard {
	location := ResolveLocation(merchant.Timezone)
	completed := completedOnly(current)
	summary := Summarize(current)
	previousRevenue := Summarize(previous).TotalRevenue

	pending := int64(0)
	for _, order := range current {
		switch order.Status {
		case StatusPending, StatusAccepted, StatusInProgress, StatusReady:
			pending++
		}
	}

	return Dashboard{
		Summary: DashboardSummary{
			TotalRevenue:      summary.TotalRevenue,
			TotalOrders:       summary.TotalOrders,
			AverageOrderValue: summary.AverageOrderValue,
			CompletedOrders:   summary.CompletedOrders,
			CancelledOrders:   summary.CancelledOrders,
			PendingOrders:     pending,
		},
		RevenueTrend:           revenueTrend(completed, location),
		TopSellingItems:        topSellingItems(completed),
		PeakHours:              peakHours(completed, location),
		OrderTypeBreakdown:     orderTypeShares(completed),
		PaymentMethodBreakdown: paymentShares(completed),
		RevenueComparison: RevenueComparison{
			Current:          summary.TotalRevenue,
			Previous:         previousRevenue,
			PercentageChange: percentageChange(summary.TotalRevenue, previousRevenue),
		},
		Meta: DashboardMeta{
			Period:    period.Keyword,
			StartDate: period.Current.Start,
			EndDate:   period.Current.End,
			Currency:  merchant.Currency,
			Timezone:  location.String(),
		},
	}
}

func percentageChange(current float64, previous float64) float64 {
	if previous > 0 {
		return ((current - previous) / previous) * 100
	}
	if current > 0 {
		return 100
	}
	return 0
}

func revenueTrend(completed []Order, location *time.Location) []RevenueTrendPoint {
	daily := DailyRevenue(completed, location)
	out := make([]RevenueTrendPoint, 0, len(daily))
	for _, day := range daily {
		out = append(out, RevenueTrendPoint{Date: day.Date, Revenue: day.TotalRevenue, OrderCount: day.TotalOrders})
	}
	return out
}

func topSellingItems(completed []Order) []TopSellingItem {
	ranked := TopMenuItems(completed, topMenuItemsLimit)
	total := 0.0
	for _, order := range completed {
		for _, item := range order.Items {
			total += ToFloat(item.Subtotal)
		}
	}
	out := make([]TopSellingItem, 0, len(ranked))
	for _, item := range ranked {
		out = append(out, TopSellingItem{
			MenuID:     item.Key,
			MenuName:   item.Name,
			Quantity:   item.Quantity,
			Revenue:    item.Revenue,
			Percentage: ratio(item.Revenue, total) * 100,
		})
	}
	return out
}

func peakHours(completed []Order, location *time.Location) []PeakHour {
	hours := make([]PeakHour, 24)
	for hour := range hours {
		hours[hour].Hour = hour
	}
	for _, order := range completed {
		hour := order.PlacedAt.In(location).Hour()
		hours[hour].OrderCount++
		hours[hour].Revenue += ToFloat(order.TotalAmount)
	}
	return hours
}

func orderTypeShares(completed []Order) []ShareEntry {
	entries := OrderTypeBreakdown(completed)
	out := make([]ShareEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, ShareEntry{Key: entry.Type, Count: entry.Count, Revenue: entry.Revenue})
	}
	return withShares(out, len(completed))
}

func paymentShares(completed []Order) []ShareEntry {
	entries := PaymentBreakdown(completed)
	out := make([]ShareEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, ShareEntry{Key: entry.Method, Count: entry.Count, Revenue: entry.Revenue})
	}
	return withShares(out, len(completed))
}

func withShares(entries []ShareEntry, total int) []ShareEntry {
	for i := range entries {
		entries[i].Percentage = ratio(float64(entries[i].Count), float64(total)) * 100
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })
	return entries
}
