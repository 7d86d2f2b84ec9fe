/*
monitor.go - Background backlog monitor

PURPOSE:
  Periodically replans the current year from the store and records the
  backlog: how many projects overflow the year, by how many hours, and
  which projects have no dates at all. The last report is served at
  GET /api/schedule/backlog so dashboards do not trigger a full replan.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Plans immediately on start, then on every tick
  - Logs only when the backlog changes, to keep logs quiet on idle shops

CONFIGURATION:
  - Interval: How often to replan (REFRESH_INTERVAL, default 5m)
  - Enabled:  Whether the monitor runs (default: true)

USAGE:
  monitor := NewBacklogMonitor(store, time.Now)
  monitor.Start()
  // ... later
  monitor.Stop()

SEE ALSO:
  - planning.go: GetBacklog endpoint
  - workshop/aggregate.go: Backlog
*/
package api

import (
	"context"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/warp/workshop-planner/workshop"
)

// BacklogMonitor replans on a ticker and keeps the latest backlog report.
type BacklogMonitor struct {
	Source   workshop.Source
	Now      func() time.Time
	Interval time.Duration
	Enabled  bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	lastMu sync.RWMutex
	last   *BacklogDTO
}

// NewBacklogMonitor creates a monitor reading from src.
func NewBacklogMonitor(src workshop.Source, now func() time.Time) *BacklogMonitor {
	return &BacklogMonitor{
		Source:   src,
		Now:      now,
		Interval: 5 * time.Minute,
		Enabled:  true,
	}
}

// Start begins the monitor.
func (m *BacklogMonitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.Enabled {
		log.Println("[Planner] Backlog monitor disabled, not starting")
		return
	}
	if m.ticker != nil {
		return
	}

	m.ticker = time.NewTicker(m.Interval)
	m.stop = make(chan struct{})
	m.wg.Add(1)

	go m.run(m.ticker.C, m.stop)

	log.Printf("[Planner] Backlog monitor started with interval: %v", m.Interval)
}

// Stop stops the monitor and waits for an in-flight run to finish.
func (m *BacklogMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ticker != nil {
		m.ticker.Stop()
		close(m.stop)
		m.wg.Wait()
		m.ticker = nil
		log.Println("[Planner] Backlog monitor stopped")
	}
}

func (m *BacklogMonitor) run(tick <-chan time.Time, stop <-chan struct{}) {
	defer m.wg.Done()

	m.RunOnce(context.Background())

	for {
		select {
		case <-tick:
			m.RunOnce(context.Background())
		case <-stop:
			return
		}
	}
}

// RunOnce replans the current year and stores the report. Errors are
// logged and leave the previous report in place.
func (m *BacklogMonitor) RunOnce(ctx context.Context) (BacklogDTO, error) {
	now := m.Now()
	plan, err := workshop.PlanFrom(ctx, m.Source, now.UTC().Year(), now)
	if err != nil {
		log.Printf("[Planner] Error planning backlog: %v", err)
		return BacklogDTO{}, err
	}

	report := toBacklogDTO(plan.Schedule.Year, plan.Backlog)
	report.ComputedAt = now.UTC().Format(time.RFC3339)

	m.lastMu.Lock()
	prev := m.last
	m.last = &report
	m.lastMu.Unlock()

	if prev == nil || !sameBacklog(*prev, report) {
		log.Printf("[Planner] Backlog %d: %d overflowing projects, %.2fh overflow, %d undated",
			report.Year, report.OverflowProjects, report.OverflowHours, len(report.UndatedProjects))
	}
	return report, nil
}

// Last returns the latest report, if any run has completed.
func (m *BacklogMonitor) Last() (BacklogDTO, bool) {
	m.lastMu.RLock()
	defer m.lastMu.RUnlock()

	if m.last == nil {
		return BacklogDTO{}, false
	}
	return *m.last, true
}

func sameBacklog(a, b BacklogDTO) bool {
	return a.Year == b.Year &&
		a.OverflowProjects == b.OverflowProjects &&
		a.OverflowHours == b.OverflowHours &&
		slices.Equal(a.UndatedProjects, b.UndatedProjects)
}
