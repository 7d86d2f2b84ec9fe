package workshop

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/workshop-planner/generic"
)

// =============================================================================
// CURSOR STATE - Per-worker accumulator threaded through the allocation fold
// =============================================================================

// cursorState is owned by a single AllocateWorker call and never shared.
type cursorState struct {
	cursor generic.TimePoint
	used   map[string]decimal.Decimal
}

func newCursorState(start generic.TimePoint) cursorState {
	return cursorState{cursor: start, used: make(map[string]decimal.Decimal)}
}

// WorkerPlan is the allocation outcome for one worker.
type WorkerPlan struct {
	WorkerID    generic.WorkerID
	Allocations map[string][]AllocationItem
	Used        map[string]decimal.Decimal
	Overflow    []OverflowEntry
}

// AllocateWorker walks the calendar from start, filling each working day up
// to the worker's capacity with chunks from queue in order. Hours that do
// not fit by Dec 31 of year become overflow. The cursor is never rewound:
// once it leaves the year every later queue item overflows in full.
func AllocateWorker(worker Worker, queue []QueueItem, holidays HolidaySet, year int, start generic.TimePoint) WorkerPlan {
	plan := WorkerPlan{
		WorkerID:    worker.ID,
		Allocations: make(map[string][]AllocationItem),
	}

	state := newCursorState(start)
	capacity := worker.Capacity()
	for _, item := range queue {
		var placed []AllocationItem
		var overflow *OverflowEntry
		state, placed, overflow = state.place(worker.ID, capacity, item, holidays, year)
		for _, it := range placed {
			key := it.Date.Key()
			plan.Allocations[key] = append(plan.Allocations[key], it)
		}
		if overflow != nil {
			plan.Overflow = append(plan.Overflow, *overflow)
		}
	}
	plan.Used = state.used
	return plan
}

// place allocates one queue item and returns the advanced state.
func (s cursorState) place(worker generic.WorkerID, capacity decimal.Decimal, item QueueItem, holidays HolidaySet, year int) (cursorState, []AllocationItem, *OverflowEntry) {
	var placed []AllocationItem
	remaining := item.Assignment.EstimatedHours

	for remaining.IsPositive() {
		for s.cursor.Year() <= year && !holidays.IsWorkingDay(s.cursor) {
			s.cursor = s.cursor.AddDays(1)
		}
		if s.cursor.Year() > year {
			return s, placed, &OverflowEntry{
				WorkerID:       worker,
				ProjectID:      item.Project.ID,
				AssignmentID:   item.Assignment.ID,
				RemainingHours: remaining,
			}
		}

		key := s.cursor.Key()
		free := capacity.Sub(s.used[key])
		if !free.IsPositive() {
			s.cursor = s.cursor.AddDays(1)
			continue
		}

		chunk := decimal.Min(remaining, free)
		placed = append(placed, AllocationItem{
			WorkerID:        worker,
			Date:            s.cursor,
			ProjectID:       item.Project.ID,
			ProjectName:     item.Project.DisplayName(),
			AssignmentID:    item.Assignment.ID,
			ProcessCode:     item.Assignment.Code,
			Hours:           chunk,
			MaterialsStatus: item.Project.MaterialsStatus,
		})
		s.used[key] = s.used[key].Add(chunk)
		remaining = remaining.Sub(chunk)
	}
	return s, placed, nil
}

// =============================================================================
// SCHEDULE - All workers, values attributed
// =============================================================================

// Schedule allocates every worker in roster order and attributes project
// value to each chunk. Workers share nothing, so the result does not depend
// on roster order except for the order of Workers and Overflow.
func Schedule(snap Snapshot, year int, now time.Time) ScheduleResult {
	result := ScheduleResult{
		Year:        year,
		Workers:     make([]generic.WorkerID, 0, len(snap.Workers)),
		Allocations: make(map[generic.WorkerID]map[string][]AllocationItem, len(snap.Workers)),
		Used:        make(map[generic.WorkerID]map[string]decimal.Decimal, len(snap.Workers)),
	}

	holidays := IndexHolidays(snap.Holidays)
	start := generic.CursorStart(year, now)
	for _, w := range snap.Workers {
		queue := BuildQueue(w.ID, snap.Projects)
		plan := AllocateWorker(w, queue, holidays[w.ID], year, start)

		result.Workers = append(result.Workers, w.ID)
		result.Allocations[w.ID] = plan.Allocations
		result.Used[w.ID] = plan.Used
		result.Overflow = append(result.Overflow, plan.Overflow...)
	}

	NewValueIndex(snap.Projects).Decorate(&result)
	return result
}
