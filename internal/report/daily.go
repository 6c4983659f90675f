package report

import (
	"sort"
	"time"
)

const dayLayout = "2006-01-02"

type DailyRevenuePoint struct {
	Date         string  `json:"date"`
	TotalRevenue float64 `json:"totalRevenue"`
	TotalOrders  int64   `json:"totalOrders"`
}

// DailyRevenue buckets completed orders by calendar day in the merchant
// location and returns the days in ascending order.
func DailyRevenue(orders []Order, location *time.Location) []DailyRevenuePoint {
	if location == nil {
		location = time.Local
	}
	byDate := make(map[string]*DailyRevenuePoint)
	for _, order := range orders {
		if !order.completed() {
			continue
		}
		dateKey := order.PlacedAt.In(location).Format(dayLayout)
		entry := byDate[dateKey]
		if entry == nil {
			entry = &DailyRevenuePoint{Date: dateKey}
			byDate[dateKey] = entry
		}
		entry.TotalOrders++
		entry.TotalRevenue += ToFloat(order.TotalAmount)
	}

	entries := make([]DailyRevenuePoint, 0, len(byDate))
	for _, entry := range byDate {
		entries = append(entries, *entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	return entries
}
