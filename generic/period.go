package generic

// =============================================================================
// PERIOD - Inclusive day range
// =============================================================================

// Period is the inclusive range [Start, End]. Holiday intervals and the
// week/month/year summaries are all Periods.
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the time point is within the period [Start, End].
// A period whose End is before its Start contains nothing.
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Valid reports whether Start <= End.
func (p Period) Valid() bool { return p.Start.BeforeOrEqual(p.End) }

// Days returns all days in the period as a slice of TimePoints.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// PeriodType names the summary rollups.
type PeriodType string

const (
	PeriodWeek  PeriodType = "week"
	PeriodMonth PeriodType = "month"
	PeriodYear  PeriodType = "year"
)

// WeekOf returns the Monday-to-Sunday week containing d.
func WeekOf(d TimePoint) Period {
	return Period{Start: StartOfWeek(d), End: EndOfWeek(d)}
}

// MonthOf returns the calendar month containing d.
func MonthOf(d TimePoint) Period {
	return Period{Start: StartOfMonth(d.Year(), d.Month()), End: EndOfMonth(d.Year(), d.Month())}
}

// YearOf returns Jan 1 to Dec 31 of year.
func YearOf(year int) Period {
	return Period{Start: StartOfYear(year), End: EndOfYear(year)}
}

// PeriodFor returns the period of the given type that contains date.
func PeriodFor(pt PeriodType, date TimePoint) Period {
	switch pt {
	case PeriodWeek:
		return WeekOf(date)
	case PeriodMonth:
		return MonthOf(date)
	default:
		return YearOf(date.Year())
	}
}
