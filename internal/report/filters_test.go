package report

import (
	"net/url"
	"reflect"
	"testing"
	"time"
)

func TestParseList(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{name: "blank", input: "  ", expected: nil},
		{name: "only separators", input: " , ,", expected: nil},
		{name: "single", input: "dine_in", expected: []string{"DINE_IN"}},
		{name: "trim and dedupe", input: " TAKEAWAY , DELIVERY,takeaway ", expected: []string{"TAKEAWAY", "DELIVERY"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseList(tc.input); !reflect.DeepEqual(got, tc.expected) {
				t.Fatalf("expected %#v, got %#v", tc.expected, got)
			}
		})
	}
}

func TestQueryMatches(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	window := DateRange{Start: start, End: start.Add(24*time.Hour - time.Nanosecond)}
	order := Order{
		ID:          1,
		Status:      StatusCompleted,
		OrderType:   OrderTypeDelivery,
		PlacedAt:    start.Add(time.Hour),
		IsScheduled: true,
		Payment:     &Payment{Method: "CASH_ON_DELIVERY"},
		Discounts:   []OrderDiscount{{Source: DiscountSourcePOSVoucher, Amount: Number(1)}},
	}

	cases := []struct {
		name       string
		merchantID int64
		filters    Filters
		placedAt   time.Time
		expected   bool
	}{
		{name: "no filters", merchantID: 7, expected: true},
		{name: "other merchant", merchantID: 8, expected: false},
		{name: "window start inclusive", merchantID: 7, placedAt: window.Start, expected: true},
		{name: "window end inclusive", merchantID: 7, placedAt: window.End, expected: true},
		{name: "outside window", merchantID: 7, placedAt: window.End.Add(time.Nanosecond), expected: false},
		{name: "order type in set", merchantID: 7, filters: Filters{OrderTypes: []string{OrderTypeDineIn, OrderTypeDelivery}}, expected: true},
		{name: "order type not in set", merchantID: 7, filters: Filters{OrderTypes: []string{OrderTypeDineIn}}, expected: false},
		{name: "status mismatch", merchantID: 7, filters: Filters{Statuses: []string{StatusPending}}, expected: false},
		{name: "scheduled only", merchantID: 7, filters: Filters{ScheduledOnly: true}, expected: true},
		{name: "payment method", merchantID: 7, filters: Filters{PaymentMethods: []string{"CASH_ON_DELIVERY"}}, expected: true},
		{name: "payment method mismatch", merchantID: 7, filters: Filters{PaymentMethods: []string{"CASH_ON_COUNTER"}}, expected: false},
		{name: "voucher source", merchantID: 7, filters: Filters{VoucherSources: []string{DiscountSourceManual, DiscountSourcePOSVoucher}}, expected: true},
		{name: "voucher source mismatch", merchantID: 7, filters: Filters{VoucherSources: []string{DiscountSourceManual}}, expected: false},
		{
			name:       "all dimensions",
			merchantID: 7,
			filters: Filters{
				OrderTypes:     []string{OrderTypeDelivery},
				Statuses:       []string{StatusCompleted},
				PaymentMethods: []string{"CASH_ON_DELIVERY"},
				VoucherSources: []string{DiscountSourcePOSVoucher},
				ScheduledOnly:  true,
			},
			expected: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			candidate := order
			if !tc.placedAt.IsZero() {
				candidate.PlacedAt = tc.placedAt
			}
			query := Query{MerchantID: 7, Window: window, Filters: tc.filters}
			if got := query.Matches(tc.merchantID, candidate); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}

	unscheduled := order
	unscheduled.IsScheduled = false
	if (Query{MerchantID: 7, Window: window, Filters: Filters{ScheduledOnly: true}}).Matches(7, unscheduled) {
		t.Fatalf("expected unscheduled order to be excluded")
	}

	unpaid := order
	unpaid.Payment = nil
	if (Query{MerchantID: 7, Window: window, Filters: Filters{PaymentMethods: []string{"CASH_ON_DELIVERY"}}}).Matches(7, unpaid) {
		t.Fatalf("expected order without payment to be excluded by a payment filter")
	}
}

func TestParseParams(t *testing.T) {
	values := url.Values{}
	values.Set("period", "custom")
	values.Set("startDate", "2025-01-01")
	values.Set("endDate", "2025-01-14")
	values.Set("orderType", "dine_in,TAKEAWAY")
	values.Set("status", "")
	values.Set("scheduledOnly", "TRUE")
	values.Set("anomalyWindow", "1")
	values.Set("anomalyStdDev", "abc")
	values.Set("anomalyMinDropPct", "25")

	params := ParseParams(values)
	if params.Period != "custom" || params.StartDate != "2025-01-01" || params.EndDate != "2025-01-14" {
		t.Fatalf("unexpected period params %+v", params)
	}
	if !reflect.DeepEqual(params.Filters.OrderTypes, []string{"DINE_IN", "TAKEAWAY"}) {
		t.Fatalf("unexpected order types %#v", params.Filters.OrderTypes)
	}
	if params.Filters.Statuses != nil {
		t.Fatalf("expected empty status list to be absent, got %#v", params.Filters.Statuses)
	}
	if !params.Filters.ScheduledOnly {
		t.Fatalf("expected scheduledOnly")
	}
	if params.Anomaly.WindowSize != 3 || params.Anomaly.StdDevMultiplier != DefaultAnomalyStdDev || params.Anomaly.MinDropPct != 25 {
		t.Fatalf("unexpected anomaly settings %+v", params.Anomaly)
	}

	defaults := ParseParams(url.Values{})
	if defaults.Period != PeriodMonth || defaults.Anomaly != DefaultAnomalySettings() {
		t.Fatalf("unexpected defaults %+v", defaults)
	}
}

func TestCachePartsDistinguishFilters(t *testing.T) {
	a := ParseParams(url.Values{"orderType": {"DINE_IN"}})
	b := ParseParams(url.Values{"orderType": {"TAKEAWAY"}})
	c := ParseParams(url.Values{"orderType": {" dine_in "}})

	if reflect.DeepEqual(a.CacheParts(), b.CacheParts()) {
		t.Fatalf("expected different filters to yield different cache parts")
	}
	if !reflect.DeepEqual(a.CacheParts(), c.CacheParts()) {
		t.Fatalf("expected equivalent filters to yield identical cache parts")
	}
}
