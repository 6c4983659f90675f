package report

import (
	"strings"
	"time"
)

const (
	PeriodWeek   = "week"
	PeriodMonth  = "month"
	PeriodYear   = "year"
	PeriodCustom = "custom"
)

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r DateRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Contains reports whether t falls within the range, both bounds inclusive.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

type Period struct {
	Keyword  string
	Current  DateRange
	Previous DateRange
}

// ResolvePeriod turns a period keyword into the current window and an
// equal-length previous window ending one nanosecond before it. Anything it
// cannot honour falls back to month.
func ResolvePeriod(period string, startDateRaw string, endDateRaw string, now time.Time, location *time.Location) Period {
	if location == nil {
		location = time.UTC
	}
	now = now.In(location)
	keyword := strings.ToLower(strings.TrimSpace(period))

	var current DateRange
	switch keyword {
	case PeriodCustom:
		start := parseDateValue(startDateRaw, location, false)
		end := parseDateValue(endDateRaw, location, true)
		if start.IsZero() || end.IsZero() || end.Before(start) {
			keyword = PeriodMonth
			current = DateRange{Start: now.AddDate(0, 0, -30), End: now}
			break
		}
		current = DateRange{Start: start, End: end}
	case PeriodWeek:
		current = DateRange{Start: now.AddDate(0, 0, -7), End: now}
	case PeriodYear:
		current = DateRange{Start: time.Date(now.Year(), 1, 1, 0, 0, 0, 0, location), End: now}
	default:
		keyword = PeriodMonth
		current = DateRange{Start: now.AddDate(0, 0, -30), End: now}
	}

	return Period{Keyword: keyword, Current: current, Previous: previousRange(current)}
}

func previousRange(current DateRange) DateRange {
	end := current.Start.Add(-time.Nanosecond)
	return DateRange{Start: end.Add(-current.Duration()), End: end}
}

// parseDateValue accepts RFC3339 instants or plain dates in the merchant
// location. Plain end dates stretch to the last instant of that day.
func parseDateValue(value string, location *time.Location, endOfDay bool) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed.In(location)
	}
	parsed, err := time.ParseInLocation("2006-01-02", value, location)
	if err != nil {
		return time.Time{}
	}
	if endOfDay {
		return parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return parsed
}

// ResolveLocation loads an IANA zone, falling back to the process zone.
func ResolveLocation(timezone string) *time.Location {
	timezone = strings.TrimSpace(timezone)
	if timezone == "" {
		return time.Local
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Local
	}
	return location
}
