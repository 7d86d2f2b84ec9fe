package workshop

import (
	"cmp"
	"slices"
	"time"

	"github.com/warp/workshop-planner/generic"
)

// QueueItem is one eligible assignment waiting for a worker.
type QueueItem struct {
	Project    *Project
	Assignment *ProcessAssignment
}

// BuildQueue collects every eligible assignment for worker across all
// projects, ordered by:
//
//  1. project start date (missing sorts last)
//  2. project won date (missing sorts last)
//  3. assignment sort order
//  4. project id
//
// Remaining ties keep project and assignment input order.
func BuildQueue(worker generic.WorkerID, projects []Project) []QueueItem {
	var queue []QueueItem
	for i := range projects {
		p := &projects[i]
		for j := range p.Assignments {
			a := &p.Assignments[j]
			if a.AssignedWorkerID != worker || !a.Eligible() {
				continue
			}
			queue = append(queue, QueueItem{Project: p, Assignment: a})
		}
	}
	slices.SortStableFunc(queue, compareQueueItems)
	return queue
}

func compareQueueItems(a, b QueueItem) int {
	if c := compareOptionalDay(a.Project.StartDate, b.Project.StartDate); c != 0 {
		return c
	}
	if c := compareOptionalTime(a.Project.WonAt, b.Project.WonAt); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Assignment.SortOrder, b.Assignment.SortOrder); c != 0 {
		return c
	}
	return cmp.Compare(a.Project.ID, b.Project.ID)
}

// nil sorts after every date.
func compareOptionalDay(a, b *generic.TimePoint) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}

func compareOptionalTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}
