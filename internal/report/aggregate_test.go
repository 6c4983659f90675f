package report

import (
	"math"
	"testing"
	"time"
)

func int64Ptr(v int64) *int64 { return &v }

func stringPtr(v string) *string { return &v }

func TestDailyRevenueUsesMerchantTimezone(t *testing.T) {
	sydney, err := time.LoadLocation("Australia/Sydney")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	orders := []Order{
		completedOrder(1, time.Date(2025, 1, 1, 23, 30, 0, 0, time.UTC), 40),
		completedOrder(2, time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC), 10),
		{ID: 3, Status: StatusCancelled, PlacedAt: time.Date(2025, 1, 1, 2, 0, 0, 0, time.UTC), TotalAmount: Number(99)},
	}

	daily := DailyRevenue(orders, sydney)
	if len(daily) != 2 {
		t.Fatalf("expected 2 days, got %d", len(daily))
	}
	if daily[0].Date != "2025-01-01" || daily[0].TotalRevenue != 10 {
		t.Fatalf("unexpected first day %+v", daily[0])
	}
	if daily[1].Date != "2025-01-02" || daily[1].TotalRevenue != 40 || daily[1].TotalOrders != 1 {
		t.Fatalf("expected the late UTC order on 2025-01-02, got %+v", daily[1])
	}
}

func TestDailyRevenueEmpty(t *testing.T) {
	daily := DailyRevenue(nil, time.UTC)
	if daily == nil || len(daily) != 0 {
		t.Fatalf("expected empty non-nil series, got %#v", daily)
	}
}

func TestTopMenuItemsRanking(t *testing.T) {
	placed := time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)
	order := completedOrder(1, placed, 100)
	order.Items = []OrderItem{
		{MenuID: int64Ptr(1), MenuName: "A", Quantity: 5, Subtotal: Number(50)},
		{MenuID: int64Ptr(2), MenuName: "B", Quantity: 5, Subtotal: Number(80)},
		{MenuID: int64Ptr(3), MenuName: "C", Quantity: 3, Subtotal: Number(200)},
	}
	cancelled := Order{Status: StatusCancelled, PlacedAt: placed, Items: []OrderItem{
		{MenuID: int64Ptr(3), MenuName: "C", Quantity: 50, Subtotal: Number(500)},
	}}

	items := TopMenuItems([]Order{order, cancelled}, 10)
	expected := []string{"B", "A", "C"}
	if len(items) != len(expected) {
		t.Fatalf("expected %d items, got %d", len(expected), len(items))
	}
	for i, name := range expected {
		if items[i].Name != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, items[i].Name)
		}
	}
	if items[2].Quantity != 3 {
		t.Fatalf("expected cancelled order items to be ignored, got quantity %d", items[2].Quantity)
	}
}

func TestTopMenuItemsTruncatesAndKeysCustomItems(t *testing.T) {
	placed := time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)
	order := completedOrder(1, placed, 100)
	for i := int64(1); i <= 12; i++ {
		order.Items = append(order.Items, OrderItem{MenuID: int64Ptr(i), MenuName: "Dish", Quantity: int32(i), Subtotal: Number(1)})
	}
	order.Items = append(order.Items,
		OrderItem{MenuID: int64Ptr(99), MenuName: "Birthday cake", IsCustom: true, Quantity: 20, Subtotal: Number(30)},
		OrderItem{MenuName: "Birthday cake", Quantity: 5, Subtotal: Number(10)},
	)

	items := TopMenuItems([]Order{order}, 0)
	if len(items) != 10 {
		t.Fatalf("expected default limit of 10, got %d", len(items))
	}
	if items[0].Key != "CUSTOM::Birthday cake" || items[0].Quantity != 25 || items[0].Revenue != 40 {
		t.Fatalf("expected merged custom item first, got %+v", items[0])
	}
	if items[1].Key != "12" {
		t.Fatalf("expected menu 12 second, got %+v", items[1])
	}
}

func TestSummarizeVouchers(t *testing.T) {
	placed := time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)
	first := completedOrder(1, placed, 100)
	first.Discounts = []OrderDiscount{
		{Source: DiscountSourcePOSVoucher, Amount: Number(10), VoucherTemplateID: int64Ptr(7), VoucherTemplateName: stringPtr("Happy Hour")},
		{Source: DiscountSourceManual, Amount: Number(5), Label: stringPtr("Staff meal")},
	}
	second := completedOrder(2, placed, 100)
	second.Discounts = []OrderDiscount{
		{Source: DiscountSourceCustomerVoucher, Amount: Number(12), VoucherTemplateID: int64Ptr(7), Label: stringPtr("HH")},
		{Source: DiscountSourceManual, Amount: Number(1)},
	}
	cancelled := Order{Status: StatusCancelled, PlacedAt: placed, Discounts: []OrderDiscount{
		{Source: DiscountSourceManual, Amount: Number(500)},
	}}

	summary := SummarizeVouchers([]Order{first, second, cancelled})

	if len(summary.BySource) != 3 {
		t.Fatalf("expected 3 sources, got %+v", summary.BySource)
	}
	if summary.BySource[0].Source != DiscountSourceCustomerVoucher || summary.BySource[0].Amount != 12 {
		t.Fatalf("unexpected top source %+v", summary.BySource[0])
	}
	manual := summary.BySource[2]
	if manual.Source != DiscountSourceManual || manual.Count != 2 || manual.Amount != 6 {
		t.Fatalf("unexpected manual source %+v", manual)
	}

	if len(summary.TopTemplates) != 3 {
		t.Fatalf("expected 3 template groups, got %+v", summary.TopTemplates)
	}
	top := summary.TopTemplates[0]
	if top.Label != "Happy Hour" || top.Count != 2 || top.Amount != 22 {
		t.Fatalf("expected discounts of one template grouped together, got %+v", top)
	}
	if summary.TopTemplates[1].Label != "Staff meal" || summary.TopTemplates[2].Label != "Voucher" {
		t.Fatalf("unexpected label groups %+v", summary.TopTemplates)
	}
}

func TestSummarizeVouchersLimit(t *testing.T) {
	order := completedOrder(1, time.Now(), 100)
	for i := int64(1); i <= 8; i++ {
		order.Discounts = append(order.Discounts, OrderDiscount{Source: DiscountSourcePOSVoucher, Amount: Number(float64(i)), VoucherTemplateID: int64Ptr(i)})
	}
	summary := SummarizeVouchers([]Order{order})
	if len(summary.TopTemplates) != 5 {
		t.Fatalf("expected top 5 templates, got %d", len(summary.TopTemplates))
	}
	if summary.TopTemplates[0].Label != "8" {
		t.Fatalf("expected template id as label fallback, got %s", summary.TopTemplates[0].Label)
	}
}

func TestBreakdowns(t *testing.T) {
	placed := time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)
	dineIn := completedOrder(1, placed, 50)
	dineIn.Payment = &Payment{Method: "CASH_ON_COUNTER", Status: "COMPLETED"}
	delivery := completedOrder(2, placed, 80)
	delivery.OrderType = OrderTypeDelivery
	delivery.IsScheduled = true
	takeaway := completedOrder(3, placed, 20)
	takeaway.OrderType = OrderTypeTakeaway
	takeaway.Payment = &Payment{Method: "CASH_ON_COUNTER"}
	pendingScheduled := Order{ID: 4, Status: StatusPending, OrderType: OrderTypeDelivery, PlacedAt: placed, IsScheduled: true, TotalAmount: Number(70)}
	cancelledScheduled := Order{ID: 5, Status: StatusCancelled, OrderType: OrderTypeDineIn, PlacedAt: placed, IsScheduled: true, TotalAmount: Number(90)}

	orders := []Order{dineIn, delivery, takeaway, pendingScheduled, cancelledScheduled}

	types := OrderTypeBreakdown(orders)
	if len(types) != 3 || types[0].Type != OrderTypeDelivery || types[0].Revenue != 80 {
		t.Fatalf("unexpected order type breakdown %+v", types)
	}
	if types[1].Type != OrderTypeDineIn || types[1].Count != 1 {
		t.Fatalf("expected cancelled dine-in excluded, got %+v", types[1])
	}

	statuses := OrderStatusBreakdown(orders)
	if len(statuses) != 3 || statuses[0].Status != StatusCompleted || statuses[0].Count != 3 {
		t.Fatalf("unexpected status breakdown %+v", statuses)
	}

	payments := PaymentBreakdown(orders)
	if len(payments) != 2 {
		t.Fatalf("expected 2 payment methods, got %+v", payments)
	}
	if payments[0].Method != PaymentMethodUnknown || payments[0].Revenue != 80 {
		t.Fatalf("expected missing payment grouped as UNKNOWN, got %+v", payments[0])
	}
	if payments[1].Method != "CASH_ON_COUNTER" || payments[1].Count != 2 || payments[1].Revenue != 70 {
		t.Fatalf("unexpected cash entry %+v", payments[1])
	}

	scheduled := BuildScheduledSummary(orders)
	if scheduled.ScheduledCount != 2 || scheduled.ScheduledRevenue != 80 {
		t.Fatalf("unexpected scheduled summary %+v", scheduled)
	}
}

func TestHourlyPerformance(t *testing.T) {
	placed := time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC)
	completedAt := placed.Add(30 * time.Minute)
	slow := completedOrder(1, placed, 10)
	slow.CompletedAt = &completedAt
	open := Order{ID: 2, Status: StatusPending, PlacedAt: placed.Add(10 * time.Minute)}
	cancelled := Order{ID: 3, Status: StatusCancelled, PlacedAt: placed}

	hours := HourlyPerformance([]Order{slow, open, cancelled}, time.UTC)
	if len(hours) != 24 {
		t.Fatalf("expected 24 buckets, got %d", len(hours))
	}
	for hour, entry := range hours {
		if entry.Hour != hour {
			t.Fatalf("expected bucket %d, got %d", hour, entry.Hour)
		}
		if entry.Efficiency < 0 || entry.Efficiency > 100 {
			t.Fatalf("efficiency out of range at hour %d: %v", hour, entry.Efficiency)
		}
	}

	nine := hours[9]
	if nine.OrderCount != 2 {
		t.Fatalf("expected cancelled order excluded, got %d", nine.OrderCount)
	}
	if nine.AvgPrepTime == nil || math.Abs(*nine.AvgPrepTime-30) > 1e-9 {
		t.Fatalf("expected avg prep time 30, got %v", nine.AvgPrepTime)
	}
	// prep score clamps at 0, volume score is 20.
	if nine.Efficiency != 10 {
		t.Fatalf("expected efficiency 10, got %v", nine.Efficiency)
	}

	idle := hours[3]
	if idle.OrderCount != 0 || idle.AvgPrepTime != nil || idle.Efficiency != 50 {
		t.Fatalf("unexpected idle hour %+v", idle)
	}
}

func TestDetectAnomalies(t *testing.T) {
	settings := AnomalySettings{WindowSize: 4, StdDevMultiplier: 2, MinDropPct: 15}
	window := []DailyRevenuePoint{
		{Date: "2025-01-01", TotalRevenue: 950},
		{Date: "2025-01-02", TotalRevenue: 1050},
		{Date: "2025-01-03", TotalRevenue: 950},
		{Date: "2025-01-04", TotalRevenue: 1050},
	}

	cases := []struct {
		name    string
		revenue float64
		flagged bool
	}{
		{name: "below band but small drop", revenue: 895, flagged: false},
		{name: "large drop", revenue: 700, flagged: true},
		{name: "within band", revenue: 960, flagged: false},
		{name: "spike", revenue: 5000, flagged: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			series := append(append([]DailyRevenuePoint{}, window...), DailyRevenuePoint{Date: "2025-01-05", TotalRevenue: tc.revenue})
			anomalies := DetectAnomalies(series, settings)
			if tc.flagged != (len(anomalies) == 1) {
				t.Fatalf("expected flagged=%v, got %+v", tc.flagged, anomalies)
			}
			if tc.flagged {
				got := anomalies[0]
				if got.Date != "2025-01-05" || got.Expected != 1000 || math.Abs(got.DeltaPct+30) > 1e-9 {
					t.Fatalf("unexpected anomaly %+v", got)
				}
			}
		})
	}
}

func TestDetectAnomaliesSkipsWarmupAndZeroMean(t *testing.T) {
	series := []DailyRevenuePoint{
		{Date: "2025-01-01", TotalRevenue: 0},
		{Date: "2025-01-02", TotalRevenue: 0},
		{Date: "2025-01-03", TotalRevenue: 0},
		{Date: "2025-01-04", TotalRevenue: 0},
	}
	if anomalies := DetectAnomalies(series, AnomalySettings{WindowSize: 3, StdDevMultiplier: 1, MinDropPct: 0}); len(anomalies) != 0 {
		t.Fatalf("expected no anomalies over a zero mean, got %+v", anomalies)
	}

	short := []DailyRevenuePoint{{Date: "2025-01-01", TotalRevenue: 100}, {Date: "2025-01-02", TotalRevenue: 1}}
	anomalies := DetectAnomalies(short, DefaultAnomalySettings())
	if anomalies == nil || len(anomalies) != 0 {
		t.Fatalf("expected empty non-nil result for short series, got %#v", anomalies)
	}
}

func TestAnomalySettingsNormalize(t *testing.T) {
	got := AnomalySettings{WindowSize: 1, StdDevMultiplier: 0.1, MinDropPct: -5}.Normalize()
	if got.WindowSize != 3 || got.StdDevMultiplier != 0.5 || got.MinDropPct != 0 {
		t.Fatalf("unexpected clamped settings %+v", got)
	}

	got = AnomalySettings{WindowSize: 10, StdDevMultiplier: math.NaN(), MinDropPct: math.Inf(1)}.Normalize()
	if got.WindowSize != 10 || got.StdDevMultiplier != DefaultAnomalyStdDev || got.MinDropPct != DefaultAnomalyMinDropPct {
		t.Fatalf("unexpected normalized settings %+v", got)
	}
}
