package workshop

import (
	"context"

	"github.com/warp/workshop-planner/generic"
)

// ProjectDateUpdater persists a project's start and delivery dates.
type ProjectDateUpdater interface {
	UpdateProjectDates(ctx context.Context, id generic.ProjectID, start, delivery generic.TimePoint) error
}

// ProjectDateRange returns the earliest and latest day on which the project
// received any allocation, across all workers. ok is false when the project
// has no allocations.
func ProjectDateRange(result ScheduleResult, id generic.ProjectID) (generic.Period, bool) {
	var span generic.Period
	found := false
	for _, days := range result.Allocations {
		for _, items := range days {
			for _, it := range items {
				if it.ProjectID != id {
					continue
				}
				if !found || it.Date.Before(span.Start) {
					span.Start = it.Date
				}
				if !found || it.Date.After(span.End) {
					span.End = it.Date
				}
				found = true
			}
		}
	}
	return span, found
}

// ApplyDates writes the project's planned range back as its start and
// delivery dates. Failures are returned as-is; nothing is retried and the
// plan is not recomputed.
func ApplyDates(ctx context.Context, updater ProjectDateUpdater, result ScheduleResult, id generic.ProjectID) (generic.Period, error) {
	span, ok := ProjectDateRange(result, id)
	if !ok {
		return generic.Period{}, &generic.NoAllocationsError{ProjectID: id, Year: result.Year}
	}
	if err := updater.UpdateProjectDates(ctx, id, span.Start, span.End); err != nil {
		return generic.Period{}, &generic.WriteBackError{ProjectID: id, Err: err}
	}
	return span, nil
}
