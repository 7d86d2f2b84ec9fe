package workshop

import (
	"github.com/shopspring/decimal"
	"github.com/warp/workshop-planner/generic"
)

// =============================================================================
// DAY TOTALS
// =============================================================================

// DayTotal is the workshop-wide figure for one calendar day. Weekend days
// are present but always zero.
type DayTotal struct {
	Date           generic.TimePoint
	Weekend        bool
	ScheduledHours decimal.Decimal
	CapacityHours  decimal.Decimal
	Value          decimal.Decimal
	IdleWorkers    int
}

// DayTotals returns one entry per day of result.Year.
//
// On working days ScheduledHours sums every worker's booked hours,
// CapacityHours sums the capacity of workers not on holiday, and an idle
// worker is one with capacity that day and nothing booked.
func DayTotals(workers []Worker, holidays []HolidayInterval, result ScheduleResult) []DayTotal {
	index := IndexHolidays(holidays)
	var totals []DayTotal
	for d := range generic.YearDays(result.Year) {
		total := DayTotal{
			Date:           d,
			Weekend:        d.IsWeekend(),
			ScheduledHours: decimal.Zero,
			CapacityHours:  decimal.Zero,
			Value:          decimal.Zero,
		}
		if total.Weekend {
			totals = append(totals, total)
			continue
		}

		key := d.Key()
		for _, w := range workers {
			used := result.Used[w.ID][key]
			total.ScheduledHours = total.ScheduledHours.Add(used)
			for _, it := range result.Allocations[w.ID][key] {
				total.Value = total.Value.Add(it.Value)
			}

			if index[w.ID].IsHoliday(d) {
				continue
			}
			capacity := w.Capacity()
			total.CapacityHours = total.CapacityHours.Add(capacity)
			if capacity.IsPositive() && used.IsZero() {
				total.IdleWorkers++
			}
		}
		totals = append(totals, total)
	}
	return totals
}

// =============================================================================
// PERIOD SUMMARIES
// =============================================================================

// PeriodSummary sums day totals over a week, month or year.
type PeriodSummary struct {
	Type           generic.PeriodType
	Period         generic.Period
	ScheduledHours decimal.Decimal
	CapacityHours  decimal.Decimal
	Value          decimal.Decimal
}

// Utilization is scheduled over capacity, or zero with no capacity.
func (s PeriodSummary) Utilization() decimal.Decimal {
	if !s.CapacityHours.IsPositive() {
		return decimal.Zero
	}
	return s.ScheduledHours.Div(s.CapacityHours)
}

// Summarize returns the week, month and year containing ref, in that order.
// The year summary always covers the whole year of ref.
func Summarize(days []DayTotal, ref generic.TimePoint) []PeriodSummary {
	periods := []PeriodSummary{
		{Type: generic.PeriodWeek, Period: generic.WeekOf(ref)},
		{Type: generic.PeriodMonth, Period: generic.MonthOf(ref)},
		{Type: generic.PeriodYear, Period: generic.YearOf(ref.Year())},
	}
	for i := range periods {
		s := &periods[i]
		s.ScheduledHours, s.CapacityHours, s.Value = decimal.Zero, decimal.Zero, decimal.Zero
		for _, d := range days {
			if !s.Period.Contains(d.Date) {
				continue
			}
			s.ScheduledHours = s.ScheduledHours.Add(d.ScheduledHours)
			s.CapacityHours = s.CapacityHours.Add(d.CapacityHours)
			s.Value = s.Value.Add(d.Value)
		}
	}
	return periods
}

// =============================================================================
// BACKLOG
// =============================================================================

// BacklogReport surfaces work the year cannot absorb and projects with no
// dates at all.
type BacklogReport struct {
	OverflowProjects int
	OverflowHours    decimal.Decimal
	UndatedProjects  []generic.ProjectID
}

// Backlog counts distinct overflowing projects and their hours, and lists
// undated projects in input order.
func Backlog(projects []Project, result ScheduleResult) BacklogReport {
	report := BacklogReport{OverflowHours: decimal.Zero}
	seen := make(map[generic.ProjectID]bool)
	for _, o := range result.Overflow {
		report.OverflowHours = report.OverflowHours.Add(o.RemainingHours)
		if !seen[o.ProjectID] {
			seen[o.ProjectID] = true
			report.OverflowProjects++
		}
	}
	for _, p := range projects {
		if p.Undated() {
			report.UndatedProjects = append(report.UndatedProjects, p.ID)
		}
	}
	return report
}
