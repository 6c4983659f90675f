package report

import (
	"strings"
)

// Filters narrows the orders a report reads. A nil list leaves that
// dimension unconstrained.
type Filters struct {
	OrderTypes     []string
	Statuses       []string
	PaymentMethods []string
	VoucherSources []string
	ScheduledOnly  bool
}

// Query is what the engine asks an OrderSource for. MerchantID is always
// supplied by the caller, never parsed from request input.
type Query struct {
	MerchantID int64
	Window     DateRange
	Filters    Filters
}

// Matches evaluates the query as a predicate: AND across dimensions, set
// membership within one.
func (q Query) Matches(merchantID int64, order Order) bool {
	if merchantID != q.MerchantID {
		return false
	}
	if !q.Window.Contains(order.PlacedAt) {
		return false
	}
	f := q.Filters
	if len(f.OrderTypes) > 0 && !contains(f.OrderTypes, order.OrderType) {
		return false
	}
	if len(f.Statuses) > 0 && !contains(f.Statuses, order.Status) {
		return false
	}
	if f.ScheduledOnly && !order.IsScheduled {
		return false
	}
	if len(f.PaymentMethods) > 0 {
		if order.Payment == nil || !contains(f.PaymentMethods, order.Payment.Method) {
			return false
		}
	}
	if len(f.VoucherSources) > 0 {
		found := false
		for _, discount := range order.Discounts {
			if contains(f.VoucherSources, discount.Source) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ParseList splits a comma separated enum list. Blank input yields nil so a
// provided-but-empty parameter behaves as absent.
func ParseList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	seen := make(map[string]struct{})
	for _, part := range parts {
		item := strings.ToUpper(strings.TrimSpace(part))
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
