package report

import (
	"net/url"
	"strconv"
	"strings"
)

// Params are the caller-controlled inputs of a report request.
type Params struct {
	Period    string
	StartDate string
	EndDate   string
	Filters   Filters
	Anomaly   AnomalySettings
}

// ParseParams reads report parameters from a query string. Malformed values
// fall back to defaults rather than failing the request.
func ParseParams(values url.Values) Params {
	period := strings.TrimSpace(values.Get("period"))
	if period == "" {
		period = PeriodMonth
	}

	return Params{
		Period:    period,
		StartDate: strings.TrimSpace(values.Get("startDate")),
		EndDate:   strings.TrimSpace(values.Get("endDate")),
		Filters: Filters{
			OrderTypes:     ParseList(values.Get("orderType")),
			Statuses:       ParseList(values.Get("status")),
			PaymentMethods: ParseList(values.Get("paymentMethod")),
			VoucherSources: ParseList(values.Get("voucherSource")),
			ScheduledOnly:  strings.EqualFold(strings.TrimSpace(values.Get("scheduledOnly")), "true"),
		},
		Anomaly: AnomalySettings{
			WindowSize:       parseIntWithDefault(values.Get("anomalyWindow"), DefaultAnomalyWindow),
			StdDevMultiplier: parseFloatWithDefault(values.Get("anomalyStdDev"), DefaultAnomalyStdDev),
			MinDropPct:       parseFloatWithDefault(values.Get("anomalyMinDropPct"), DefaultAnomalyMinDropPct),
		}.Normalize(),
	}
}

// CacheParts renders the parameters as stable cache key segments.
func (p Params) CacheParts() []string {
	return []string{
		strings.ToLower(p.Period),
		p.StartDate,
		p.EndDate,
		strings.Join(p.Filters.OrderTypes, ","),
		strings.Join(p.Filters.Statuses, ","),
		strings.Join(p.Filters.PaymentMethods, ","),
		strings.Join(p.Filters.VoucherSources, ","),
		strconv.FormatBool(p.Filters.ScheduledOnly),
		strconv.Itoa(p.Anomaly.WindowSize),
		strconv.FormatFloat(p.Anomaly.StdDevMultiplier, 'f', -1, 64),
		strconv.FormatFloat(p.Anomaly.MinDropPct, 'f', -1, 64),
	}
}

func parseIntWithDefault(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func parseFloatWithDefault(value string, fallback float64) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return parsed
}
