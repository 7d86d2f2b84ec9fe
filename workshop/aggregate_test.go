package workshop_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/workshop-planner/generic"
	"github.com/warp/workshop-planner/workshop"
)

// =============================================================================
// DAY TOTALS
// =============================================================================

func TestDayTotals_CapacityHolidayAndIdle(t *testing.T) {
	// GIVEN: Two 8h workers, Bob on holiday Tue Jan 2 2024,
	//        Alice booked 10h on a project worth 1000
	// WHEN: Aggregating
	// THEN: Jan 1: 8 scheduled / 16 capacity, Bob idle
	//       Jan 2: 2 scheduled / 8 capacity, nobody idle
	//       Jan 3: 0 scheduled / 16 capacity, both idle
	//       Weekends are zero

	snap := workshop.Snapshot{
		Workers: []workshop.Worker{worker("alice", 8), worker("bob", 8)},
		Holidays: []workshop.HolidayInterval{{
			WorkerID: "bob", Start: day(2024, time.January, 2), End: day(2024, time.January, 2),
		}},
		Projects: []workshop.Project{project("p", 1000, assignment("a", "alice", 10, 0))},
	}
	result := workshop.Schedule(snap, 2024, pastNow)

	days := workshop.DayTotals(snap.Workers, snap.Holidays, result)
	require.Len(t, days, 366)

	jan1, jan2, jan3, jan6 := days[0], days[1], days[2], days[5]

	assertHours(t, 8, jan1.ScheduledHours)
	assertHours(t, 16, jan1.CapacityHours)
	assertHours(t, 800, jan1.Value)
	assert.Equal(t, 1, jan1.IdleWorkers)

	assertHours(t, 2, jan2.ScheduledHours)
	assertHours(t, 8, jan2.CapacityHours)
	assertHours(t, 200, jan2.Value)
	assert.Equal(t, 0, jan2.IdleWorkers, "worker on holiday is not idle")

	assertHours(t, 0, jan3.ScheduledHours)
	assertHours(t, 16, jan3.CapacityHours)
	assert.Equal(t, 2, jan3.IdleWorkers)

	assert.True(t, jan6.Weekend)
	assertHours(t, 0, jan6.CapacityHours)
	assert.Equal(t, 0, jan6.IdleWorkers)
}

func TestDayTotals_ZeroCapacityWorkerNeverIdle(t *testing.T) {
	snap := workshop.Snapshot{Workers: []workshop.Worker{worker("w", 0)}}
	result := workshop.Schedule(snap, 2024, pastNow)

	days := workshop.DayTotals(snap.Workers, nil, result)

	assert.Equal(t, 0, days[0].IdleWorkers)
}

// =============================================================================
// PERIOD SUMMARIES
// =============================================================================

func TestSummarize_WeekMonthYear(t *testing.T) {
	// GIVEN: One 8h worker with 60h of work from Jan 1 2024
	// WHEN: Summarizing around Wed Jan 3
	// THEN: Week Jan 1-7 holds 40h of 40h capacity, month and year hold all 60h

	snap := workshop.Snapshot{
		Workers:  []workshop.Worker{worker("w", 8)},
		Projects: []workshop.Project{project("p", 600, assignment("a", "w", 60, 0))},
	}
	result := workshop.Schedule(snap, 2024, pastNow)
	days := workshop.DayTotals(snap.Workers, nil, result)

	summaries := workshop.Summarize(days, day(2024, time.January, 3))
	require.Len(t, summaries, 3)

	week, month, year := summaries[0], summaries[1], summaries[2]
	assert.Equal(t, generic.PeriodWeek, week.Type)
	assert.Equal(t, day(2024, time.January, 1), week.Period.Start)
	assert.Equal(t, day(2024, time.January, 7), week.Period.End)
	assertHours(t, 40, week.ScheduledHours)
	assertHours(t, 40, week.CapacityHours)
	assertHours(t, 400, week.Value)
	assertHours(t, 1, week.Utilization())

	assert.Equal(t, generic.PeriodMonth, month.Type)
	assertHours(t, 60, month.ScheduledHours)
	assertHours(t, 23*8, month.CapacityHours, "January 2024 has 23 weekdays")

	assert.Equal(t, generic.PeriodYear, year.Type)
	assertHours(t, 60, year.ScheduledHours)
	assertHours(t, 600, year.Value)
	assertHours(t, 262*8, year.CapacityHours, "2024 has 262 weekdays")
}

func TestPeriodSummary_UtilizationWithoutCapacity(t *testing.T) {
	assert.True(t, workshop.PeriodSummary{}.Utilization().IsZero())
}

// =============================================================================
// BACKLOG
// =============================================================================

func TestBacklog_OverflowAndUndated(t *testing.T) {
	dated := project("dated", 0, assignment("a", "w", 2, 0))
	dated.StartDate = dayPtr(2024, time.December, 31)
	delivered := project("delivered", 0)
	delivered.DeliveryDate = dayPtr(2025, time.January, 10)
	undated := project("undated", 0, assignment("b", "w", 8, 0), assignment("c", "w", 3, 1))

	now := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	snap := workshop.Snapshot{
		Workers:  []workshop.Worker{worker("w", 8)},
		Projects: []workshop.Project{dated, delivered, undated},
	}

	plan := workshop.Plan(workshop.PlanInput{Snapshot: snap, Year: 2024, Now: now})

	// Dec 31: 2h of "a", 6h of "b"; 2h of "b" and all 3h of "c" overflow.
	assert.Equal(t, 1, plan.Backlog.OverflowProjects)
	assertHours(t, 5, plan.Backlog.OverflowHours)
	assert.Equal(t, []generic.ProjectID{"undated"}, plan.Backlog.UndatedProjects)
	assert.Equal(t, day(2024, time.December, 31), plan.Reference)
}

// =============================================================================
// APPLY DATES
// =============================================================================

type recordingUpdater struct {
	id       generic.ProjectID
	start    generic.TimePoint
	delivery generic.TimePoint
	err      error
	calls    int
}

func (r *recordingUpdater) UpdateProjectDates(_ context.Context, id generic.ProjectID, start, delivery generic.TimePoint) error {
	r.calls++
	r.id, r.start, r.delivery = id, start, delivery
	return r.err
}

func TestApplyDates_SpansAllWorkers(t *testing.T) {
	// GIVEN: A project split across two workers, Alice busy on another job first
	// WHEN: Applying dates
	// THEN: Start is the earliest allocation, delivery the latest, across workers

	snap := workshop.Snapshot{
		Workers: []workshop.Worker{worker("alice", 8), worker("bob", 8)},
		Projects: []workshop.Project{
			project("first", 0, assignment("x", "alice", 16, 0)),
			project("target", 0, assignment("y", "alice", 4, 0), assignment("z", "bob", 12, 0)),
		},
	}
	result := workshop.Schedule(snap, 2024, pastNow)
	updater := &recordingUpdater{}

	span, err := workshop.ApplyDates(context.Background(), updater, result, "target")

	require.NoError(t, err)
	assert.Equal(t, 1, updater.calls)
	assert.Equal(t, generic.ProjectID("target"), updater.id)
	assert.Equal(t, day(2024, time.January, 1), updater.start, "bob starts on Jan 1")
	assert.Equal(t, day(2024, time.January, 3), updater.delivery, "alice finishes on Jan 3")
	assert.Equal(t, updater.start, span.Start)
	assert.Equal(t, updater.delivery, span.End)
}

func TestApplyDates_NoAllocations(t *testing.T) {
	snap := workshop.Snapshot{
		Workers:  []workshop.Worker{worker("w", 8)},
		Projects: []workshop.Project{project("idle", 0)},
	}
	result := workshop.Schedule(snap, 2024, pastNow)
	updater := &recordingUpdater{}

	_, err := workshop.ApplyDates(context.Background(), updater, result, "idle")

	require.Error(t, err)
	assert.ErrorIs(t, err, generic.ErrNoAllocations)
	assert.True(t, generic.IsConflict(err))
	assert.Equal(t, 0, updater.calls)
}

func TestApplyDates_WriteFailureSurfaced(t *testing.T) {
	snap := workshop.Snapshot{
		Workers:  []workshop.Worker{worker("w", 8)},
		Projects: []workshop.Project{project("p", 0, assignment("a", "w", 1, 0))},
	}
	result := workshop.Schedule(snap, 2024, pastNow)
	boom := errors.New("store unavailable")

	_, err := workshop.ApplyDates(context.Background(), &recordingUpdater{err: boom}, result, "p")

	var wbErr *generic.WriteBackError
	require.ErrorAs(t, err, &wbErr)
	assert.Equal(t, generic.ProjectID("p"), wbErr.ProjectID)
	assert.ErrorIs(t, err, boom)
}

// =============================================================================
// PLAN FROM SOURCE
// =============================================================================

type staticSource struct {
	snap workshop.Snapshot
	err  error
}

func (s staticSource) Snapshot(context.Context) (workshop.Snapshot, error) { return s.snap, s.err }

func TestPlanFrom(t *testing.T) {
	src := staticSource{snap: workshop.Snapshot{
		Workers:  []workshop.Worker{worker("w", 8)},
		Projects: []workshop.Project{project("p", 80, assignment("a", "w", 8, 0))},
	}}

	plan, err := workshop.PlanFrom(context.Background(), src, 2024, pastNow)
	require.NoError(t, err)
	assert.Len(t, plan.Schedule.Items(), 1)
	assert.Equal(t, day(2024, time.January, 1), plan.Reference)

	_, err = workshop.PlanFrom(context.Background(), src, 0, pastNow)
	assert.ErrorIs(t, err, generic.ErrInvalidYear)

	_, err = workshop.PlanFrom(context.Background(), staticSource{err: errors.New("down")}, 2024, pastNow)
	assert.Error(t, err)
}
