/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built workshops that populate the database with realistic
	data for demos. Each scenario is written in the upstream JSON shapes
	and goes through the same factory as synced data, so lenient parsing
	(string money, mixed date formats) is exercised too.

AVAILABLE SCENARIOS:

	small-joinery:   Three workers, a mix of dated and won-only projects, one holiday
	overbooked:      One machinist with more work than the year holds
	undated-backlog: Projects with no start or delivery date

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Build upstream JSON for the current year
 3. Convert via factory
 4. Save workers, holidays, projects

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "small-joinery"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler
  - factory/snapshot.go: Upstream JSON shapes
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/workshop-planner/factory"
	"github.com/warp/workshop-planner/workshop"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "small-joinery",
		Name:        "Small Joinery",
		Description: "Three workers, dated and won-only projects, a summer holiday",
	},
	{
		ID:          "overbooked",
		Name:        "Overbooked Machinist",
		Description: "One worker with more hours than the year can hold",
	},
	{
		ID:          "undated-backlog",
		Name:        "Undated Backlog",
		Description: "Won projects waiting for start and delivery dates",
	},
}

var scenarioLoaders = map[string]func(year int) factory.SnapshotJSON{
	"small-joinery":   smallJoineryScenario,
	"overbooked":      overbookedScenario,
	"undated-backlog": undatedBacklogScenario,
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	build, ok := scenarioLoaders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.setScenario("")

	snap := h.Factory.FromJSON(build(h.Now().UTC().Year()))
	if err := h.saveSnapshot(ctx, snap); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.setScenario(req.ScenarioID)

	if h.Monitor != nil {
		h.Monitor.RunOnce(ctx)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.setScenario("")

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
}

// saveSnapshot writes workers first so holidays can reference them.
func (h *Handler) saveSnapshot(ctx context.Context, snap workshop.Snapshot) error {
	for _, wk := range snap.Workers {
		if err := h.Store.SaveWorker(ctx, wk); err != nil {
			return fmt.Errorf("worker %s: %w", wk.ID, err)
		}
	}
	for _, hol := range snap.Holidays {
		if err := h.Store.SaveHoliday(ctx, hol); err != nil {
			return fmt.Errorf("holiday %s: %w", hol.ID, err)
		}
	}
	for _, p := range snap.Projects {
		if err := h.Store.SaveProject(ctx, p); err != nil {
			return fmt.Errorf("project %s: %w", p.ID, err)
		}
	}
	return nil
}

// =============================================================================
// SCENARIO BUILDERS
// =============================================================================

func date(year int, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

func order(n int) *int { return &n }

func smallJoineryScenario(year int) factory.SnapshotJSON {
	return factory.SnapshotJSON{
		Workers: []factory.WorkerJSON{
			{ID: "w-sam", Name: "Sam Carter", Email: "sam@joinery.example", Role: "machinist", HolidayColor: "#2563eb"},
			{ID: "w-priya", Name: "Priya Shah", Email: "priya@joinery.example", Role: "joiner", DailyCapacityHours: "7.5", HolidayColor: "#16a34a"},
			{ID: "w-tom", Name: "Tom Reid", Email: "tom@joinery.example", Role: "installer", DailyCapacityHours: 6},
		},
		Holidays: []factory.HolidayJSON{
			{ID: "h-priya-summer", WorkerID: "w-priya", StartDate: date(year, 8, 4), EndDate: date(year, 8, 15), Note: "Summer"},
			{ID: "h-sam-dentist", WorkerID: "w-sam", StartDate: date(year, 3, 12), EndDate: date(year, 3, 12), Note: "Dentist"},
		},
		Projects: []factory.ProjectJSON{
			{
				ID: "p-kitchen", Name: "Oak Kitchen", Number: "Q-1001", Value: "£18,400",
				WonAt: date(year-1, 11, 20) + "T10:00:00Z", StartDate: date(year, 1, 8),
				MaterialsStatus: "delivered",
				ProcessAssignments: []factory.AssignmentJSON{
					{ID: "a-kitchen-mach", Code: "MACH", Name: "Machining", SortOrder: order(1), EstimatedHours: "32", AssignedWorkerID: "w-sam"},
					{ID: "a-kitchen-assy", Code: "ASSY", Name: "Assembly", SortOrder: order(2), EstimatedHours: 45, AssignedWorkerID: "w-priya"},
					{ID: "a-kitchen-fit", Code: "FIT", Name: "Installation", SortOrder: order(3), EstimatedHours: 24, AssignedWorkerID: "w-tom"},
				},
			},
			{
				ID: "p-stairs", Name: "Staircase", Number: "Q-1004", Value: 9600,
				WonAt: date(year, 1, 3) + "T09:30:00Z", DeliveryDate: date(year, 4, 30),
				MaterialsStatus: "ordered",
				ProcessAssignments: []factory.AssignmentJSON{
					{ID: "a-stairs-mach", Code: "MACH", Name: "Machining", SortOrder: order(1), EstimatedHours: "20.5", AssignedWorkerID: "w-sam"},
					{ID: "a-stairs-assy", Code: "ASSY", Name: "Assembly", SortOrder: order(2), EstimatedHours: "16", AssignedWorkerID: "w-priya"},
				},
			},
			{
				ID: "p-wardrobes", Name: "Fitted Wardrobes", Number: "Q-1007", Value: "7,250.00",
				WonAt: date(year, 2, 14) + "T15:00:00Z",
				ProcessAssignments: []factory.AssignmentJSON{
					{ID: "a-wardrobes-mach", Code: "MACH", Name: "Machining", SortOrder: order(1), EstimatedHours: 14, AssignedWorkerID: "w-sam"},
					{ID: "a-wardrobes-spray", Code: "SPRAY", Name: "Spraying", SortOrder: order(2), EstimatedHours: 10},
				},
			},
		},
	}
}

func overbookedScenario(year int) factory.SnapshotJSON {
	snap := factory.SnapshotJSON{
		Workers: []factory.WorkerJSON{
			{ID: "w-solo", Name: "Alex Morgan", Email: "alex@joinery.example", Role: "machinist"},
		},
	}
	for i := 1; i <= 12; i++ {
		snap.Projects = append(snap.Projects, factory.ProjectJSON{
			ID:        fmt.Sprintf("p-batch-%02d", i),
			Name:      fmt.Sprintf("Door batch %d", i),
			Number:    fmt.Sprintf("Q-2%03d", i),
			Value:     fmt.Sprintf("%d", 4000+i*250),
			StartDate: date(year, i, 1),
			ProcessAssignments: []factory.AssignmentJSON{
				{ID: fmt.Sprintf("a-batch-%02d", i), Code: "MACH", Name: "Machining", SortOrder: order(1), EstimatedHours: 190, AssignedWorkerID: "w-solo"},
			},
		})
	}
	return snap
}

func undatedBacklogScenario(year int) factory.SnapshotJSON {
	return factory.SnapshotJSON{
		Workers: []factory.WorkerJSON{
			{ID: "w-sam", Name: "Sam Carter", Email: "sam@joinery.example", Role: "machinist"},
			{ID: "w-priya", Name: "Priya Shah", Email: "priya@joinery.example", Role: "joiner"},
		},
		Projects: []factory.ProjectJSON{
			{
				ID: "p-bookcase", Name: "Library Bookcases", Value: "5200",
				WonAt: date(year, 1, 10) + "T11:00:00Z",
				ProcessAssignments: []factory.AssignmentJSON{
					{ID: "a-bookcase-mach", Code: "MACH", Name: "Machining", SortOrder: order(1), EstimatedHours: 18, AssignedWorkerID: "w-sam"},
					{ID: "a-bookcase-assy", Code: "ASSY", Name: "Assembly", SortOrder: order(2), EstimatedHours: 22, AssignedWorkerID: "w-priya"},
				},
			},
			{
				ID: "p-windows", Name: "Sash Windows", Value: "11,900",
				WonAt: date(year, 1, 22) + "T08:45:00Z",
				ProcessAssignments: []factory.AssignmentJSON{
					{ID: "a-windows-mach", Code: "MACH", Name: "Machining", SortOrder: order(1), EstimatedHours: 40, AssignedWorkerID: "w-sam"},
				},
			},
			{
				ID: "p-desk", Name: "Reception Desk", Value: 3100,
				ProcessAssignments: []factory.AssignmentJSON{
					{ID: "a-desk-assy", Code: "ASSY", Name: "Assembly", SortOrder: order(1), EstimatedHours: "12", AssignedWorkerID: "w-priya"},
				},
			},
		},
	}
}
