package report

import (
	"math"
	"time"
)

const targetPrepTimeMinutes = 15.0

type HourlyPerformanceEntry struct {
	Hour        int      `json:"hour"`
	OrderCount  int64    `json:"orderCount"`
	Efficiency  float64  `json:"efficiency"`
	AvgPrepTime *float64 `json:"avgPrepTime"`
}

// HourlyPerformance reports all 24 hours of the merchant day. Cancelled
// orders are ignored; prep time is averaged over orders that carry a
// completion time.
func HourlyPerformance(orders []Order, location *time.Location) []HourlyPerformanceEntry {
	if location == nil {
		location = time.Local
	}
	buckets := make([]HourlyPerformanceEntry, 24)
	prepSums := make([]float64, 24)
	prepCounts := make([]int64, 24)
	for hour := range buckets {
		buckets[hour] = HourlyPerformanceEntry{Hour: hour}
	}

	for _, order := range orders {
		if order.cancelled() {
			continue
		}
		hour := order.PlacedAt.In(location).Hour()
		buckets[hour].OrderCount++
		if order.CompletedAt != nil {
			prepSums[hour] += order.CompletedAt.Sub(order.PlacedAt).Minutes()
			prepCounts[hour]++
		}
	}

	for hour := range buckets {
		// Hours without prep data score as a zero-minute prep time.
		avgValue := 0.0
		if prepCounts[hour] > 0 {
			avg := prepSums[hour] / float64(prepCounts[hour])
			buckets[hour].AvgPrepTime = &avg
			avgValue = avg
		}
		prepTimeScore := math.Max(0, 100-(avgValue/targetPrepTimeMinutes)*100)
		volumeScore := math.Min(100, float64(buckets[hour].OrderCount)*10)
		efficiency := (prepTimeScore + volumeScore) / 2
		buckets[hour].Efficiency = math.Min(100, math.Max(0, efficiency))
	}
	return buckets
}
