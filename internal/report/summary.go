package report

const (
	FormatCurrency = "currency"
	FormatNumber   = "number"
	FormatDecimal  = "decimal"
)

type Summary struct {
	TotalOrders        int64   `json:"totalOrders"`
	CompletedOrders    int64   `json:"completedOrders"`
	CancelledOrders    int64   `json:"cancelledOrders"`
	TotalRevenue       float64 `json:"totalRevenue"`
	Subtotal           float64 `json:"subtotal"`
	TotalTax           float64 `json:"totalTax"`
	TotalServiceCharge float64 `json:"totalServiceCharge"`
	TotalPackagingFee  float64 `json:"totalPackagingFee"`
	TotalDeliveryFee   float64 `json:"totalDeliveryFee"`
	TotalDiscount      float64 `json:"totalDiscount"`
	NetRevenue         float64 `json:"netRevenue"`
	AverageOrderValue  float64 `json:"averageOrderValue"`
	CompletionRate     float64 `json:"completionRate"`
}

type FeesBreakdown struct {
	Tax           float64 `json:"tax"`
	ServiceCharge float64 `json:"serviceCharge"`
	PackagingFee  float64 `json:"packagingFee"`
	DeliveryFee   float64 `json:"deliveryFee"`
	Discount      float64 `json:"discount"`
}

type ComparisonMetric struct {
	Label    string  `json:"label"`
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Format   string  `json:"format"`
}

type PeriodComparison struct {
	Metrics []ComparisonMetric `json:"metrics"`
}

// Summarize counts every order but sums money over COMPLETED orders only.
func Summarize(orders []Order) Summary {
	summary := Summary{}
	for _, order := range orders {
		summary.TotalOrders++
		switch order.Status {
		case StatusCompleted:
			summary.CompletedOrders++
			summary.Subtotal += ToFloat(order.Subtotal)
			summary.TotalRevenue += ToFloat(order.TotalAmount)
			summary.TotalTax += ToFloat(order.TaxAmount)
			summary.TotalServiceCharge += ToFloat(order.ServiceChargeAmount)
			summary.TotalPackagingFee += ToFloat(order.PackagingFeeAmount)
			summary.TotalDeliveryFee += ToFloat(order.DeliveryFeeAmount)
			summary.TotalDiscount += ToFloat(order.DiscountAmount)
		case StatusCancelled:
			summary.CancelledOrders++
		}
	}

	summary.AverageOrderValue = ratio(summary.TotalRevenue, float64(summary.CompletedOrders))
	summary.CompletionRate = ratio(float64(summary.CompletedOrders), float64(summary.TotalOrders)) * 100
	// Net revenue is product revenue after discounts, before fees.
	summary.NetRevenue = summary.Subtotal - summary.TotalDiscount
	return summary
}

func Fees(summary Summary) FeesBreakdown {
	return FeesBreakdown{
		Tax:           summary.TotalTax,
		ServiceCharge: summary.TotalServiceCharge,
		PackagingFee:  summary.TotalPackagingFee,
		DeliveryFee:   summary.TotalDeliveryFee,
		Discount:      summary.TotalDiscount,
	}
}

func ComparePeriods(current Summary, previous Summary) PeriodComparison {
	return PeriodComparison{Metrics: []ComparisonMetric{
		{Label: "Total Revenue", Current: current.TotalRevenue, Previous: previous.TotalRevenue, Format: FormatCurrency},
		{Label: "Net Revenue", Current: current.NetRevenue, Previous: previous.NetRevenue, Format: FormatCurrency},
		{Label: "Total Orders", Current: float64(current.TotalOrders), Previous: float64(previous.TotalOrders), Format: FormatNumber},
		{Label: "Avg. Order Value", Current: current.AverageOrderValue, Previous: previous.AverageOrderValue, Format: FormatCurrency},
		{Label: "Completion Rate", Current: current.CompletionRate, Previous: previous.CompletionRate, Format: FormatDecimal},
	}}
}

func ratio(numerator float64, denominator float64) float64 {
	if denominator <= 0 {
		return 0
	}
	return finite(numerator / denominator)
}

func completedOnly(orders []Order) []Order {
	filtered := make([]Order, 0, len(orders))
	for _, order := range orders {
		if order.completed() {
			filtered = append(filtered, order)
		}
	}
	return filtered
}
