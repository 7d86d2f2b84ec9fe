package workshop

import (
	"context"
	"time"

	"github.com/warp/workshop-planner/generic"
)

// Source supplies the planning snapshot, typically from the store.
type Source interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// PlanInput is everything a planning run depends on.
type PlanInput struct {
	Snapshot Snapshot
	Year     int
	Now      time.Time
}

// PlanResult bundles the schedule with its aggregates.
type PlanResult struct {
	Schedule  ScheduleResult
	Reference generic.TimePoint
	Days      []DayTotal
	Summaries []PeriodSummary
	Backlog   BacklogReport
}

// Plan runs the full pipeline. It is a pure function of in.
func Plan(in PlanInput) PlanResult {
	sched := Schedule(in.Snapshot, in.Year, in.Now)
	days := DayTotals(in.Snapshot.Workers, in.Snapshot.Holidays, sched)
	ref := generic.ReferenceDate(in.Year, in.Now)
	return PlanResult{
		Schedule:  sched,
		Reference: ref,
		Days:      days,
		Summaries: Summarize(days, ref),
		Backlog:   Backlog(in.Snapshot.Projects, sched),
	}
}

// PlanFrom loads a snapshot from src and plans it.
func PlanFrom(ctx context.Context, src Source, year int, now time.Time) (PlanResult, error) {
	if year <= 0 {
		return PlanResult{}, generic.ErrInvalidYear
	}
	snap, err := src.Snapshot(ctx)
	if err != nil {
		return PlanResult{}, err
	}
	return Plan(PlanInput{Snapshot: snap, Year: year, Now: now}), nil
}
