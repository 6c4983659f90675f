package report

import (
	"math"
)

const (
	DefaultAnomalyWindow     = 7
	DefaultAnomalyStdDev     = 2.0
	DefaultAnomalyMinDropPct = 15.0

	minAnomalyWindow = 3
	minAnomalyStdDev = 0.5
)

type AnomalySettings struct {
	WindowSize       int     `json:"windowSize"`
	StdDevMultiplier float64 `json:"stdDevMultiplier"`
	MinDropPct       float64 `json:"minDropPct"`
}

type AnomalyPoint struct {
	Date     string  `json:"date"`
	Revenue  float64 `json:"revenue"`
	Expected float64 `json:"expected"`
	DeltaPct float64 `json:"deltaPct"`
}

func DefaultAnomalySettings() AnomalySettings {
	return AnomalySettings{
		WindowSize:       DefaultAnomalyWindow,
		StdDevMultiplier: DefaultAnomalyStdDev,
		MinDropPct:       DefaultAnomalyMinDropPct,
	}
}

// Normalize clamps the settings to their minimums. Non-finite values revert
// to the defaults.
func (s AnomalySettings) Normalize() AnomalySettings {
	if s.WindowSize < minAnomalyWindow {
		s.WindowSize = minAnomalyWindow
	}
	if math.IsNaN(s.StdDevMultiplier) || math.IsInf(s.StdDevMultiplier, 0) {
		s.StdDevMultiplier = DefaultAnomalyStdDev
	}
	if s.StdDevMultiplier < minAnomalyStdDev {
		s.StdDevMultiplier = minAnomalyStdDev
	}
	if math.IsNaN(s.MinDropPct) || math.IsInf(s.MinDropPct, 0) {
		s.MinDropPct = DefaultAnomalyMinDropPct
	}
	if s.MinDropPct < 0 {
		s.MinDropPct = 0
	}
	return s
}

// DetectAnomalies flags days whose revenue falls below mean - k*std of the
// preceding window and also drops at least MinDropPct from that mean. The
// series must be sorted ascending by date.
func DetectAnomalies(series []DailyRevenuePoint, settings AnomalySettings) []AnomalyPoint {
	settings = settings.Normalize()
	windowSize := settings.WindowSize

	anomalies := make([]AnomalyPoint, 0)
	for i := windowSize; i < len(series); i++ {
		window := series[i-windowSize : i]
		mean, std := meanStdDev(window)
		if mean <= 0 {
			continue
		}
		current := series[i]
		threshold := mean - settings.StdDevMultiplier*std
		if current.TotalRevenue >= threshold {
			continue
		}
		deltaPct := ((current.TotalRevenue - mean) / mean) * 100
		if math.Abs(deltaPct) < settings.MinDropPct {
			continue
		}
		anomalies = append(anomalies, AnomalyPoint{
			Date:     current.Date,
			Revenue:  current.TotalRevenue,
			Expected: mean,
			DeltaPct: deltaPct,
		})
	}
	return anomalies
}

// meanStdDev returns the mean and population standard deviation.
func meanStdDev(window []DailyRevenuePoint) (float64, float64) {
	if len(window) == 0 {
		return 0, 0
	}
	mean := 0.0
	for _, entry := range window {
		mean += entry.TotalRevenue
	}
	mean = mean / float64(len(window))
	variance := 0.0
	for _, entry := range window {
		variance += math.Pow(entry.TotalRevenue-mean, 2)
	}
	variance = variance / float64(len(window))
	return mean, math.Sqrt(variance)
}
