package report

import (
	"sort"
)

type OrderTypeEntry struct {
	Type    string  `json:"type"`
	Count   int64   `json:"count"`
	Revenue float64 `json:"revenue"`
}

type OrderStatusEntry struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type PaymentEntry struct {
	Method  string  `json:"method"`
	Count   int64   `json:"count"`
	Revenue float64 `json:"revenue"`
}

type ScheduledSummary struct {
	ScheduledCount   int64   `json:"scheduledCount"`
	ScheduledRevenue float64 `json:"scheduledRevenue"`
}

// OrderTypeBreakdown groups completed orders by order type.
func OrderTypeBreakdown(orders []Order) []OrderTypeEntry {
	agg := make(map[string]*OrderTypeEntry)
	for _, order := range orders {
		if !order.completed() {
			continue
		}
		entry := agg[order.OrderType]
		if entry == nil {
			entry = &OrderTypeEntry{Type: order.OrderType}
			agg[order.OrderType] = entry
		}
		entry.Count++
		entry.Revenue += ToFloat(order.TotalAmount)
	}

	out := make([]OrderTypeEntry, 0, len(agg))
	for _, entry := range agg {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// OrderStatusBreakdown counts every order in the window, cancelled and
// pending included.
func OrderStatusBreakdown(orders []Order) []OrderStatusEntry {
	agg := make(map[string]int64)
	for _, order := range orders {
		agg[order.Status]++
	}
	out := make([]OrderStatusEntry, 0, len(agg))
	for status, count := range agg {
		out = append(out, OrderStatusEntry{Status: status, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Status < out[j].Status
	})
	return out
}

// PaymentBreakdown groups completed orders by payment method.
func PaymentBreakdown(orders []Order) []PaymentEntry {
	agg := make(map[string]*PaymentEntry)
	for _, order := range orders {
		if !order.completed() {
			continue
		}
		method := PaymentMethodUnknown
		if order.Payment != nil && order.Payment.Method != "" {
			method = order.Payment.Method
		}
		entry := agg[method]
		if entry == nil {
			entry = &PaymentEntry{Method: method}
			agg[method] = entry
		}
		entry.Count++
		entry.Revenue += ToFloat(order.TotalAmount)
	}

	out := make([]PaymentEntry, 0, len(agg))
	for _, entry := range agg {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Method < out[j].Method
	})
	return out
}

func BuildScheduledSummary(orders []Order) ScheduledSummary {
	summary := ScheduledSummary{}
	for _, order := range orders {
		if !order.IsScheduled || order.cancelled() {
			continue
		}
		summary.ScheduledCount++
		if order.completed() {
			summary.ScheduledRevenue += ToFloat(order.TotalAmount)
		}
	}
	return summary
}
