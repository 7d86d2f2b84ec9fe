package workshop_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/workshop-planner/generic"
	"github.com/warp/workshop-planner/workshop"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// pastNow is after every test year, so plans start on Jan 1.
var pastNow = time.Date(2030, time.June, 1, 9, 0, 0, 0, time.UTC)

func hrs(n float64) decimal.Decimal { return decimal.NewFromFloat(n) }

func day(y int, m time.Month, d int) generic.TimePoint { return generic.NewTimePoint(y, m, d) }

func dayPtr(y int, m time.Month, d int) *generic.TimePoint {
	tp := day(y, m, d)
	return &tp
}

func timePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	return &t
}

func worker(id string, capacity float64) workshop.Worker {
	c := hrs(capacity)
	return workshop.Worker{ID: generic.WorkerID(id), Name: id, DailyCapacityHours: &c}
}

func assignment(id, workerID string, hours float64, sortOrder int) workshop.ProcessAssignment {
	return workshop.ProcessAssignment{
		ID:               generic.AssignmentID(id),
		Code:             "PROC-" + id,
		SortOrder:        sortOrder,
		EstimatedHours:   hrs(hours),
		AssignedWorkerID: generic.WorkerID(workerID),
	}
}

func project(id string, value float64, as ...workshop.ProcessAssignment) workshop.Project {
	return workshop.Project{
		ID:          generic.ProjectID(id),
		Name:        "Project " + id,
		Value:       hrs(value),
		Assignments: as,
	}
}

func assertHours(t *testing.T, want float64, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, hrs(want).Equal(got), append([]any{fmt.Sprintf("want %v, got %v", want, got)}, msgAndArgs...)...)
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestSchedule_SingleAssignment_TwoFullDays(t *testing.T) {
	// GIVEN: One 8h worker, a 16h assignment on a project worth 800
	// WHEN: Planning 2024 (Jan 1 is a Monday)
	// THEN: 8h on Jan 1 and Jan 2, each worth 400

	snap := workshop.Snapshot{
		Workers:  []workshop.Worker{worker("w", 8)},
		Projects: []workshop.Project{project("p", 800, assignment("a", "w", 16, 0))},
	}

	result := workshop.Schedule(snap, 2024, pastNow)

	items := result.Items()
	require.Len(t, items, 2)
	assert.Equal(t, day(2024, time.January, 1), items[0].Date)
	assert.Equal(t, day(2024, time.January, 2), items[1].Date)
	for _, it := range items {
		assertHours(t, 8, it.Hours)
		assertHours(t, 400, it.Value)
		assert.Equal(t, generic.WorkerID("w"), it.WorkerID)
	}
	assert.Empty(t, result.Overflow)
}

func TestSchedule_WeekendSkip(t *testing.T) {
	// GIVEN: First assignment leaves 4h free on Friday Jan 5 2024
	// WHEN: A second 8h assignment follows
	// THEN: 4h on Friday, remaining 4h on Monday Jan 8

	snap := workshop.Snapshot{
		Workers: []workshop.Worker{worker("w", 8)},
		Projects: []workshop.Project{project("p", 0,
			assignment("first", "w", 36, 0),
			assignment("second", "w", 8, 1),
		)},
	}

	result := workshop.Schedule(snap, 2024, pastNow)

	friday := result.ItemsOn("w", day(2024, time.January, 5))
	require.Len(t, friday, 2)
	assert.Equal(t, generic.AssignmentID("second"), friday[1].AssignmentID)
	assertHours(t, 4, friday[1].Hours)

	assert.Empty(t, result.ItemsOn("w", day(2024, time.January, 6)))
	assert.Empty(t, result.ItemsOn("w", day(2024, time.January, 7)))

	monday := result.ItemsOn("w", day(2024, time.January, 8))
	require.Len(t, monday, 1)
	assert.Equal(t, generic.AssignmentID("second"), monday[0].AssignmentID)
	assertHours(t, 4, monday[0].Hours)
}

func TestSchedule_HolidaySkip(t *testing.T) {
	// GIVEN: Worker on holiday Jan 2-3 2025, 4h already used on Jan 1
	// WHEN: An 8h assignment follows
	// THEN: 4h on Jan 1, remaining 4h on Monday Jan 6

	snap := workshop.Snapshot{
		Workers: []workshop.Worker{worker("w", 8)},
		Holidays: []workshop.HolidayInterval{{
			ID: "h", WorkerID: "w",
			Start: day(2025, time.January, 2), End: day(2025, time.January, 3),
		}},
		Projects: []workshop.Project{project("p", 0,
			assignment("warmup", "w", 4, 0),
			assignment("main", "w", 8, 1),
		)},
	}

	result := workshop.Schedule(snap, 2025, pastNow)

	jan1 := result.ItemsOn("w", day(2025, time.January, 1))
	require.Len(t, jan1, 2)
	assertHours(t, 4, jan1[1].Hours)
	for d := 2; d <= 5; d++ {
		assert.Empty(t, result.ItemsOn("w", day(2025, time.January, d)), "Jan %d", d)
	}
	jan6 := result.ItemsOn("w", day(2025, time.January, 6))
	require.Len(t, jan6, 1)
	assertHours(t, 4, jan6[0].Hours)
}

func TestSchedule_OverflowAtYearEnd(t *testing.T) {
	// GIVEN: Plan for the current year with "now" on Tue Dec 31 2024,
	//        a 4h assignment queued before an 8h assignment
	// WHEN: Scheduling
	// THEN: 4h of the 8h lands on Dec 31 and 4h overflows

	now := time.Date(2024, time.December, 31, 8, 0, 0, 0, time.UTC)
	snap := workshop.Snapshot{
		Workers: []workshop.Worker{worker("w", 8)},
		Projects: []workshop.Project{project("p", 0,
			assignment("a", "w", 4, 0),
			assignment("b", "w", 8, 1),
		)},
	}

	result := workshop.Schedule(snap, 2024, now)

	dec31 := result.ItemsOn("w", day(2024, time.December, 31))
	require.Len(t, dec31, 2)
	assertHours(t, 4, dec31[1].Hours)

	require.Len(t, result.Overflow, 1)
	o := result.Overflow[0]
	assert.Equal(t, generic.AssignmentID("b"), o.AssignmentID)
	assert.Equal(t, generic.ProjectID("p"), o.ProjectID)
	assertHours(t, 4, o.RemainingHours)
}

func TestSchedule_ExhaustedCursor_LaterAssignmentsOverflowInFull(t *testing.T) {
	// GIVEN: Cursor starts Mon Dec 30 2024, 24h then 2h queued
	// WHEN: Scheduling
	// THEN: 16h placed, 8h of the first overflows, all 2h of the second overflows

	now := time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC)
	snap := workshop.Snapshot{
		Workers: []workshop.Worker{worker("w", 8)},
		Projects: []workshop.Project{
			project("p1", 0, assignment("big", "w", 24, 0)),
			project("p2", 0, assignment("small", "w", 2, 0)),
		},
	}

	result := workshop.Schedule(snap, 2024, now)

	require.Len(t, result.Overflow, 2)
	assert.Equal(t, generic.AssignmentID("big"), result.Overflow[0].AssignmentID)
	assertHours(t, 8, result.Overflow[0].RemainingHours)
	assert.Equal(t, generic.AssignmentID("small"), result.Overflow[1].AssignmentID)
	assertHours(t, 2, result.Overflow[1].RemainingHours)
	assert.Len(t, result.Items(), 2)
}

func TestSchedule_ZeroCapacityWorker_EverythingOverflows(t *testing.T) {
	snap := workshop.Snapshot{
		Workers: []workshop.Worker{worker("w", 0)},
		Projects: []workshop.Project{project("p", 0,
			assignment("a", "w", 3, 0),
			assignment("b", "w", 5, 1),
		)},
	}

	result := workshop.Schedule(snap, 2024, pastNow)

	assert.Empty(t, result.Items())
	require.Len(t, result.Overflow, 2)
	assertHours(t, 3, result.Overflow[0].RemainingHours)
	assertHours(t, 5, result.Overflow[1].RemainingHours)
}

func TestSchedule_DefaultCapacityIsEightHours(t *testing.T) {
	snap := workshop.Snapshot{
		Workers:  []workshop.Worker{{ID: "w"}},
		Projects: []workshop.Project{project("p", 0, assignment("a", "w", 10, 0))},
	}

	result := workshop.Schedule(snap, 2024, pastNow)

	assertHours(t, 8, result.UsedOn("w", day(2024, time.January, 1)))
	assertHours(t, 2, result.UsedOn("w", day(2024, time.January, 2)))
}

func TestSchedule_IneligibleAssignmentsIgnored(t *testing.T) {
	completed := assignment("done", "w", 8, 0)
	completed.CompletedAt = timePtr(2023, time.December, 1)

	snap := workshop.Snapshot{
		Workers: []workshop.Worker{worker("w", 8)},
		Projects: []workshop.Project{project("p", 100,
			completed,
			assignment("unassigned", "", 8, 0),
			assignment("zero", "w", 0, 0),
			assignment("negative", "w", -4, 0),
			assignment("real", "w", 2, 0),
		)},
	}

	result := workshop.Schedule(snap, 2024, pastNow)

	items := result.Items()
	require.Len(t, items, 1)
	assert.Equal(t, generic.AssignmentID("real"), items[0].AssignmentID)
	assertHours(t, 100, items[0].Value, "only eligible hours count toward the project total")
	assert.Empty(t, result.Overflow)
}

func TestSchedule_CurrentYearStartsToday(t *testing.T) {
	// GIVEN: "now" is Wed Mar 6 2024
	// WHEN: Planning 2024
	// THEN: Nothing lands before Mar 6

	now := time.Date(2024, time.March, 6, 15, 30, 0, 0, time.UTC)
	snap := workshop.Snapshot{
		Workers:  []workshop.Worker{worker("w", 8)},
		Projects: []workshop.Project{project("p", 0, assignment("a", "w", 12, 0))},
	}

	result := workshop.Schedule(snap, 2024, now)

	items := result.Items()
	require.Len(t, items, 2)
	assert.Equal(t, day(2024, time.March, 6), items[0].Date)
	assert.Equal(t, day(2024, time.March, 7), items[1].Date)
}

func TestSchedule_MaterialsStatusCarried(t *testing.T) {
	p := project("p", 0, assignment("a", "w", 2, 0))
	p.MaterialsStatus = "ordered"
	snap := workshop.Snapshot{Workers: []workshop.Worker{worker("w", 8)}, Projects: []workshop.Project{p}}

	items := workshop.Schedule(snap, 2024, pastNow).Items()

	require.Len(t, items, 1)
	assert.Equal(t, "ordered", items[0].MaterialsStatus)
}

// =============================================================================
// QUEUE ORDERING
// =============================================================================

func TestBuildQueue_Ordering(t *testing.T) {
	// GIVEN: Projects with mixed start/won dates and sort orders
	// WHEN: Building the queue
	// THEN: start date, then won date, then sort order, then project id;
	//       missing dates sort last

	noDates := project("a-nodates", 0, assignment("nodates", "w", 1, 0))
	wonOnly := project("b-wononly", 0, assignment("wononly", "w", 1, 0))
	wonOnly.WonAt = timePtr(2024, time.January, 10)
	late := project("c-late", 0, assignment("late", "w", 1, 0))
	late.StartDate = dayPtr(2024, time.March, 1)
	early := project("d-early", 0,
		assignment("early-2", "w", 1, 2),
		assignment("early-1", "w", 1, 1),
	)
	early.StartDate = dayPtr(2024, time.February, 1)
	earlyWonLater := project("e-early-won-later", 0, assignment("early-won-later", "w", 1, 0))
	earlyWonLater.StartDate = dayPtr(2024, time.February, 1)
	earlyWonLater.WonAt = timePtr(2024, time.January, 20)
	earlyWonFirst := project("f-early-won-first", 0, assignment("early-won-first", "w", 1, 0))
	earlyWonFirst.StartDate = dayPtr(2024, time.February, 1)
	earlyWonFirst.WonAt = timePtr(2024, time.January, 5)
	tieB := project("z-tie", 0, assignment("tie-z", "w", 1, 0))
	tieA := project("y-tie", 0, assignment("tie-y", "w", 1, 0))
	other := project("g-other", 0, assignment("other-worker", "v", 1, 0))

	projects := []workshop.Project{noDates, wonOnly, late, early, earlyWonLater, earlyWonFirst, tieB, tieA, other}

	queue := workshop.BuildQueue("w", projects)

	var got []generic.AssignmentID
	for _, q := range queue {
		got = append(got, q.Assignment.ID)
	}
	assert.Equal(t, []generic.AssignmentID{
		"early-won-first",
		"early-won-later",
		"early-1",
		"early-2",
		"late",
		"wononly",
		"nodates",
		"tie-y",
		"tie-z",
	}, got)
}

func TestBuildQueue_IsStableForIdenticalKeys(t *testing.T) {
	p := project("p", 0,
		assignment("first", "w", 1, 0),
		assignment("second", "w", 1, 0),
	)

	queue := workshop.BuildQueue("w", []workshop.Project{p})

	require.Len(t, queue, 2)
	assert.Equal(t, generic.AssignmentID("first"), queue[0].Assignment.ID)
	assert.Equal(t, generic.AssignmentID("second"), queue[1].Assignment.ID)
}

// =============================================================================
// INVARIANTS
// =============================================================================

// busySnapshot builds a deterministic workload large enough to overflow.
func busySnapshot() workshop.Snapshot {
	half := hrs(4.5)
	snap := workshop.Snapshot{
		Workers: []workshop.Worker{
			worker("alice", 8),
			worker("bob", 7.5),
			{ID: "carol", Name: "Carol", DailyCapacityHours: &half},
		},
		Holidays: []workshop.HolidayInterval{
			{WorkerID: "alice", Start: day(2024, time.March, 4), End: day(2024, time.March, 15)},
			{WorkerID: "alice", Start: day(2024, time.March, 10), End: day(2024, time.March, 20)},
			{WorkerID: "bob", Start: day(2024, time.August, 1), End: day(2024, time.August, 31)},
			{WorkerID: "carol", Start: day(2024, time.December, 20), End: day(2024, time.December, 1)},
		},
	}
	workers := []string{"alice", "bob", "carol"}
	for i := 0; i < 60; i++ {
		p := project(fmt.Sprintf("p%02d", i), float64(1000+i*37))
		if i%3 == 0 {
			p.StartDate = dayPtr(2024, time.Month(1+i%12), 1+i%27)
		}
		if i%4 == 0 {
			p.WonAt = timePtr(2023, time.Month(1+i%12), 1+i%28)
		}
		for j := 0; j < 4; j++ {
			h := float64((i*7+j*13)%40+10) + 0.25*float64(j)
			p.Assignments = append(p.Assignments,
				assignment(fmt.Sprintf("p%02d-a%d", i, j), workers[(i+j)%3], h, (j*5)%3))
		}
		snap.Projects = append(snap.Projects, p)
	}
	return snap
}

func TestSchedule_Determinism(t *testing.T) {
	snap := busySnapshot()

	first := workshop.Plan(workshop.PlanInput{Snapshot: snap, Year: 2024, Now: pastNow})
	second := workshop.Plan(workshop.PlanInput{Snapshot: snap, Year: 2024, Now: pastNow})

	assert.Equal(t, first, second)
}

func TestSchedule_CapacityInvariant(t *testing.T) {
	snap := busySnapshot()
	result := workshop.Schedule(snap, 2024, pastNow)

	for _, w := range snap.Workers {
		for key, items := range result.Allocations[w.ID] {
			sum := decimal.Zero
			for _, it := range items {
				assert.True(t, it.Hours.IsPositive(), "chunk must be positive")
				sum = sum.Add(it.Hours)
			}
			assert.True(t, sum.LessThanOrEqual(w.Capacity()), "%s on %s: %v > %v", w.ID, key, sum, w.Capacity())
			assert.True(t, sum.Equal(result.Used[w.ID][key]))
		}
	}
}

func TestSchedule_Conservation(t *testing.T) {
	snap := busySnapshot()
	result := workshop.Schedule(snap, 2024, pastNow)

	placed := make(map[generic.AssignmentID]decimal.Decimal)
	for _, it := range result.Items() {
		placed[it.AssignmentID] = placed[it.AssignmentID].Add(it.Hours)
	}
	for _, o := range result.Overflow {
		placed[o.AssignmentID] = placed[o.AssignmentID].Add(o.RemainingHours)
	}

	require.NotEmpty(t, result.Overflow, "workload should overflow the year")
	for _, p := range snap.Projects {
		for _, a := range p.Assignments {
			if !a.Eligible() {
				continue
			}
			assert.True(t, a.EstimatedHours.Equal(placed[a.ID]), "%s: %v != %v", a.ID, a.EstimatedHours, placed[a.ID])
		}
	}
}

func TestSchedule_NonWorkingDayInvariant(t *testing.T) {
	snap := busySnapshot()
	result := workshop.Schedule(snap, 2024, pastNow)
	holidays := workshop.IndexHolidays(snap.Holidays)

	for _, it := range result.Items() {
		assert.False(t, it.Date.IsWeekend(), "%s on weekend %s", it.AssignmentID, it.Date)
		assert.False(t, holidays[it.WorkerID].IsHoliday(it.Date), "%s on holiday %s", it.WorkerID, it.Date)
	}
}

func TestSchedule_OrderingStability(t *testing.T) {
	// Per worker, the first day an assignment appears never precedes the
	// first day of an assignment queued before it.
	snap := busySnapshot()
	result := workshop.Schedule(snap, 2024, pastNow)

	firstDay := make(map[generic.AssignmentID]generic.TimePoint)
	for _, it := range result.Items() {
		if _, ok := firstDay[it.AssignmentID]; !ok {
			firstDay[it.AssignmentID] = it.Date
		}
	}

	for _, w := range snap.Workers {
		var prev generic.TimePoint
		for _, q := range workshop.BuildQueue(w.ID, snap.Projects) {
			d, ok := firstDay[q.Assignment.ID]
			if !ok {
				continue
			}
			assert.True(t, d.AfterOrEqual(prev), "%s starts %s before predecessor %s", q.Assignment.ID, d, prev)
			prev = d
		}
	}
}

func TestSchedule_ValueConservation(t *testing.T) {
	snap := workshop.Snapshot{
		Workers: []workshop.Worker{worker("w1", 8), worker("w2", 8)},
		Projects: []workshop.Project{
			project("p", 100, assignment("a", "w1", 1, 0), assignment("b", "w2", 2, 0)),
			project("empty", 500, assignment("c", "w1", 0, 0)),
		},
	}

	result := workshop.Schedule(snap, 2024, pastNow)

	total := decimal.Zero
	for _, it := range result.Items() {
		require.Equal(t, generic.ProjectID("p"), it.ProjectID)
		total = total.Add(it.Value)
	}
	assert.InDelta(t, 100.0, total.InexactFloat64(), 1e-9)

	idx := workshop.NewValueIndex(snap.Projects)
	assert.True(t, idx.Attribute("empty", hrs(4)).IsZero())
	assert.True(t, idx.Attribute("missing", hrs(4)).IsZero())
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestHolidaySet_OverlapAndMalformed(t *testing.T) {
	set := workshop.IndexHolidays([]workshop.HolidayInterval{
		{WorkerID: "w", Start: day(2024, time.May, 1), End: day(2024, time.May, 10)},
		{WorkerID: "w", Start: day(2024, time.May, 5), End: day(2024, time.May, 15)},
		{WorkerID: "w", Start: day(2024, time.June, 10), End: day(2024, time.June, 1)},
	})["w"]

	assert.True(t, set.IsHoliday(day(2024, time.May, 1)))
	assert.True(t, set.IsHoliday(day(2024, time.May, 15)))
	assert.False(t, set.IsHoliday(day(2024, time.May, 16)))
	assert.False(t, set.IsHoliday(day(2024, time.June, 5)), "out-of-order interval never matches")
	assert.False(t, set.IsWorkingDay(day(2024, time.May, 18)), "Saturday")
	assert.True(t, set.IsWorkingDay(day(2024, time.May, 17)))
}
