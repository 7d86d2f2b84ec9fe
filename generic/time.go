package generic

import (
	"iter"
	"strings"
	"time"
)

// =============================================================================
// TIME POINT - A calendar day, always UTC midnight
// =============================================================================

// DayLayout is the ISO date layout used for day keys and wire dates.
const DayLayout = "2006-01-02"

// TimePoint is a calendar day. The planner never schedules below day
// granularity, so every TimePoint is normalized to UTC midnight.
type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates any instant to its UTC calendar day.
func DayOf(t time.Time) TimePoint {
	t = t.UTC()
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// ParseDay parses "2006-01-02" or an RFC3339 timestamp into a day.
// The second return value is false when s is empty or unparseable.
func ParseDay(s string) (TimePoint, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TimePoint{}, false
	}
	if t, err := time.Parse(DayLayout, s); err == nil {
		return DayOf(t), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DayOf(t), true
	}
	return TimePoint{}, false
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

// Compare returns -1, 0 or +1 for use with slices.SortFunc.
func (tp TimePoint) Compare(other TimePoint) int { return tp.Time.Compare(other.Time) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }
func (tp TimePoint) IsWeekend() bool {
	wd := tp.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Key is the ISO date used to index per-day maps.
func (tp TimePoint) Key() string { return tp.Time.Format(DayLayout) }

func (tp TimePoint) String() string { return tp.Key() }

// =============================================================================
// HOLIDAY CALENDAR - Per-worker absence lookup
// =============================================================================

// HolidayCalendar answers whether a day is a holiday for one worker.
type HolidayCalendar interface {
	IsHoliday(date TimePoint) bool
}

// NoHolidays is a calendar with no holidays.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(TimePoint) bool { return false }

// IsWorkingDay is false on Saturdays, Sundays and holidays.
func IsWorkingDay(date TimePoint, calendar HolidayCalendar) bool {
	if date.IsWeekend() {
		return false
	}
	if calendar != nil && calendar.IsHoliday(date) {
		return false
	}
	return true
}

// =============================================================================
// YEAR CALENDAR
// =============================================================================

// YearDays yields every day from Jan 1 to Dec 31 of year in ascending order.
// The sequence is restartable: each range over it starts again at Jan 1.
func YearDays(year int) iter.Seq[TimePoint] {
	return func(yield func(TimePoint) bool) {
		end := EndOfYear(year)
		for d := StartOfYear(year); d.BeforeOrEqual(end); d = d.AddDays(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// CursorStart is where allocation begins for year. For the year containing
// now it is today, unless today is still Jan 1; every other year starts on
// Jan 1.
func CursorStart(year int, now time.Time) TimePoint {
	today := DayOf(now)
	start := StartOfYear(year)
	if today.Year() == year && today.After(start) {
		return today
	}
	return start
}

// ReferenceDate anchors the week and month summaries: today for the current
// year, Jan 1 otherwise.
func ReferenceDate(year int, now time.Time) TimePoint {
	today := DayOf(now)
	if today.Year() == year {
		return today
	}
	return StartOfYear(year)
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

func StartOfYear(year int) TimePoint { return NewTimePoint(year, time.January, 1) }
func EndOfYear(year int) TimePoint   { return NewTimePoint(year, time.December, 31) }
func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }
func EndOfMonth(year int, month time.Month) TimePoint {
	return NewTimePoint(year, month+1, 1).AddDays(-1)
}

// StartOfWeek returns the Monday on or before d.
func StartOfWeek(d TimePoint) TimePoint {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// EndOfWeek returns the Sunday on or after d.
func EndOfWeek(d TimePoint) TimePoint { return StartOfWeek(d).AddDays(6) }
