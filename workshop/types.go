/*
Package workshop plans production work across a year.

PURPOSE:
  Takes a roster of workshop workers, their holidays and daily capacities,
  and a backlog of process assignments on projects, and produces a
  day-by-day, worker-by-worker allocation plan for one calendar year plus
  the financial and utilization aggregates shown on the production board.

PIPELINE:
  Snapshot (workers, holidays, projects, year, now)
    -> BuildQueue      (per worker, ordered by start/won/sort/project)
    -> AllocateWorker  (greedy day cursor, overflow past Dec 31)
    -> ValueIndex      (pro-rata project value per chunk)
    -> DayTotals       (scheduled vs capacity per day)
    -> Summarize       (week / month / year)
    -> Backlog         (overflow and undated projects)

PURITY:
  Nothing in this package performs I/O or reads the clock. "Now" is an
  input, so the same Snapshot always yields the same plan. The only
  side-effecting operation is ApplyDates, which writes through a caller
  supplied ProjectDateUpdater.

SEE ALSO:
  - queue.go: Work-queue ordering
  - allocator.go: Day-cursor allocation
  - aggregate.go: Day totals and period summaries
  - apply.go: Writing derived dates back to a project
*/
package workshop

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/workshop-planner/generic"
)

// DefaultDailyCapacity applies to workers without an explicit capacity.
var DefaultDailyCapacity = decimal.NewFromInt(8)

// =============================================================================
// INPUTS
// =============================================================================

// Worker is a member of the workshop roster.
type Worker struct {
	ID    generic.WorkerID
	Name  string
	Email string
	Role  string

	Installer bool

	// DailyCapacityHours is nil when the upstream record has no capacity.
	DailyCapacityHours *decimal.Decimal

	// HolidayColor is display-only.
	HolidayColor string

	// ProcessCodes lists the processes this worker may run. Informational;
	// the allocator trusts the assignment's worker.
	ProcessCodes []string
}

// Capacity returns the worker's daily hours, defaulting to 8.
func (w Worker) Capacity() decimal.Decimal {
	if w.DailyCapacityHours == nil {
		return DefaultDailyCapacity
	}
	return generic.NonNegative(*w.DailyCapacityHours)
}

// DisplayName prefers the name, falling back to the email.
func (w Worker) DisplayName() string {
	if w.Name != "" {
		return w.Name
	}
	return w.Email
}

// HolidayInterval is an inclusive absence for one worker.
type HolidayInterval struct {
	ID       string
	WorkerID generic.WorkerID
	Start    generic.TimePoint
	End      generic.TimePoint
	Note     string
}

// Period returns the interval as an inclusive day range. Intervals whose
// end precedes their start never contain any day.
func (h HolidayInterval) Period() generic.Period {
	return generic.Period{Start: h.Start, End: h.End}
}

// Project is a job on the production board.
type Project struct {
	ID     generic.ProjectID
	Name   string
	Number string

	// Value is the monetary value, already coerced with generic.ParseLenient.
	Value decimal.Decimal

	WonAt        *time.Time
	StartDate    *generic.TimePoint
	DeliveryDate *generic.TimePoint

	// MaterialsStatus is copied onto each allocation for display.
	MaterialsStatus string

	Assignments []ProcessAssignment
}

// DisplayName prefers the project number, then the name.
func (p Project) DisplayName() string {
	if p.Number != "" {
		return p.Number
	}
	return p.Name
}

// Undated reports whether the project has neither a start nor a delivery date.
func (p Project) Undated() bool {
	return p.StartDate == nil && p.DeliveryDate == nil
}

// ProcessAssignment is one production process on a project.
type ProcessAssignment struct {
	ID        generic.AssignmentID
	Code      string
	Name      string
	SortOrder int
	Required  bool

	// EstimatedHours is already coerced; negatives are treated as zero.
	EstimatedHours decimal.Decimal

	// AssignedWorkerID is empty for unassigned work.
	AssignedWorkerID generic.WorkerID

	CompletedAt *time.Time
}

// Eligible reports whether the assignment takes part in scheduling: it has
// a worker, is not completed, and has positive estimated hours.
func (a ProcessAssignment) Eligible() bool {
	return a.AssignedWorkerID != "" &&
		a.CompletedAt == nil &&
		a.EstimatedHours.IsPositive()
}

// Snapshot is the immutable input of one planning run.
type Snapshot struct {
	Workers  []Worker
	Holidays []HolidayInterval
	Projects []Project
}

// =============================================================================
// OUTPUTS
// =============================================================================

// AllocationItem is one chunk of an assignment placed on one day.
type AllocationItem struct {
	WorkerID        generic.WorkerID
	Date            generic.TimePoint
	ProjectID       generic.ProjectID
	ProjectName     string
	AssignmentID    generic.AssignmentID
	ProcessCode     string
	Hours           decimal.Decimal
	Value           decimal.Decimal
	MaterialsStatus string
}

// OverflowEntry records hours that did not fit before the end of the year.
type OverflowEntry struct {
	WorkerID       generic.WorkerID
	ProjectID      generic.ProjectID
	AssignmentID   generic.AssignmentID
	RemainingHours decimal.Decimal
}

// ScheduleResult is the allocation plan for one year.
type ScheduleResult struct {
	Year int

	// Workers preserves roster order for deterministic iteration.
	Workers []generic.WorkerID

	// Allocations[worker][dateKey] lists chunks in placement order.
	Allocations map[generic.WorkerID]map[string][]AllocationItem

	// Used[worker][dateKey] is the hours already booked that day.
	Used map[generic.WorkerID]map[string]decimal.Decimal

	Overflow []OverflowEntry
}

// UsedOn returns the hours booked for a worker on a day.
func (r ScheduleResult) UsedOn(worker generic.WorkerID, date generic.TimePoint) decimal.Decimal {
	return r.Used[worker][date.Key()]
}

// ItemsOn returns a worker's allocations on a day.
func (r ScheduleResult) ItemsOn(worker generic.WorkerID, date generic.TimePoint) []AllocationItem {
	return r.Allocations[worker][date.Key()]
}

// Items flattens the plan ordered by roster, then date, then placement.
func (r ScheduleResult) Items() []AllocationItem {
	var items []AllocationItem
	for _, w := range r.Workers {
		for d := range generic.YearDays(r.Year) {
			items = append(items, r.Allocations[w][d.Key()]...)
		}
	}
	return items
}
