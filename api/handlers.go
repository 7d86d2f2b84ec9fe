/*
handlers.go - HTTP API handlers for the workshop planner

PURPOSE:
  Exposes the planner via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to the store and the workshop package.

ENDPOINTS:
  Workers:
    GET    /api/workers                 List workers
    POST   /api/workers                 Create or update a worker
    GET    /api/workers/{id}            Get worker details
    DELETE /api/workers/{id}            Delete worker (and holidays)

  Holidays:
    GET    /api/holidays?worker_id=     List holidays
    POST   /api/holidays                Create or update a holiday
    DELETE /api/holidays/{id}           Delete holiday

  Projects:
    GET    /api/projects                List projects
    POST   /api/projects                Create or update a project
    GET    /api/projects/{id}           Get project details
    DELETE /api/projects/{id}           Delete project
    POST   /api/projects/{id}/assignments/{assignmentID}/complete
    POST   /api/projects/{id}/apply-dates?year=

  Schedule (see planning.go):
    GET    /api/schedule?year=          Full plan
    GET    /api/schedule/summary?year=  Period summaries and backlog
    POST   /api/schedule/preview?year=  Plan a posted snapshot
    GET    /api/schedule/backlog        Last monitored backlog

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Factory: Upstream JSON to workshop types
  - Now: Clock, injected so plans are reproducible in tests
  - Monitor: Background backlog refresher (optional)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Missing or invalid bearer token on write routes
  - 404: Resource not found
  - 409: Apply-dates on a project with no allocations
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - planning.go: Schedule endpoints
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/workshop-planner/factory"
	"github.com/warp/workshop-planner/generic"
	"github.com/warp/workshop-planner/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Factory *factory.SnapshotFactory
	Now     func() time.Time
	Monitor *BacklogMonitor

	mu              sync.RWMutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:   store,
		Factory: factory.NewSnapshotFactory(),
		Now:     time.Now,
	}
}

// =============================================================================
// WORKER HANDLERS
// =============================================================================

// ListWorkers returns all workers.
func (h *Handler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.Store.ListWorkers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list workers", err)
		return
	}

	dtos := make([]WorkerDTO, len(workers))
	for i, wk := range workers {
		dtos[i] = toWorkerDTO(wk)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetWorker returns a single worker.
func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	id := generic.WorkerID(chi.URLParam(r, "id"))

	wk, err := h.Store.GetWorker(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get worker", err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkerDTO(*wk))
}

// CreateWorker creates or updates a worker from an upstream user record.
func (h *Handler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var req factory.WorkerJSON
	if err := factory.Decode(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" && req.Email == "" {
		writeError(w, http.StatusBadRequest, "Worker needs a name or email", nil)
		return
	}

	wk := h.Factory.Worker(req)
	if err := h.Store.SaveWorker(r.Context(), wk); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save worker", err)
		return
	}
	writeJSON(w, http.StatusCreated, toWorkerDTO(wk))
}

// DeleteWorker removes a worker and their holidays.
func (h *Handler) DeleteWorker(w http.ResponseWriter, r *http.Request) {
	id := generic.WorkerID(chi.URLParam(r, "id"))

	if err := h.Store.DeleteWorker(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete worker", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns holidays, optionally filtered by worker_id.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	workerID := generic.WorkerID(r.URL.Query().Get("worker_id"))

	holidays, err := h.Store.ListHolidays(r.Context(), workerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}

	dtos := make([]HolidayDTO, len(holidays))
	for i, hol := range holidays {
		dtos[i] = toHolidayDTO(hol)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday creates or updates a holiday from an upstream record.
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req factory.HolidayJSON
	if err := factory.Decode(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.WorkerID == "" {
		writeError(w, http.StatusBadRequest, "workerId is required", nil)
		return
	}

	hol, ok := h.Factory.Holiday(req)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid startDate or endDate (use YYYY-MM-DD)", nil)
		return
	}
	if !hol.Period().Valid() {
		writeDomainError(w, "Invalid holiday", generic.ErrInvalidInterval)
		return
	}

	if err := h.Store.SaveHoliday(r.Context(), hol); err != nil {
		writeDomainError(w, "Failed to save holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(hol))
}

// DeleteHoliday removes a holiday.
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteHoliday(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// PROJECT HANDLERS
// =============================================================================

// ListProjects returns all projects with their assignments.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Store.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list projects", err)
		return
	}

	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = toProjectDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProject returns a single project.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id := generic.ProjectID(chi.URLParam(r, "id"))

	p, err := h.Store.GetProject(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get project", err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(*p))
}

// CreateProject creates or updates a project and replaces its assignments.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req factory.ProjectJSON
	if err := factory.Decode(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p := h.Factory.Project(req)
	if err := h.Store.SaveProject(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save project", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectDTO(p))
}

// DeleteProject removes a project.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id := generic.ProjectID(chi.URLParam(r, "id"))

	if err := h.Store.DeleteProject(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete project", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CompleteAssignment marks a process assignment done. The optional body
// {"completed_at": "..."} overrides the completion time.
func (h *Handler) CompleteAssignment(w http.ResponseWriter, r *http.Request) {
	projectID := generic.ProjectID(chi.URLParam(r, "id"))
	assignmentID := generic.AssignmentID(chi.URLParam(r, "assignmentID"))

	var req struct {
		CompletedAt string `json:"completed_at"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	at := h.Now()
	if req.CompletedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.CompletedAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid completed_at (use RFC3339)", err)
			return
		}
		at = parsed
	}

	if err := h.Store.CompleteAssignment(r.Context(), projectID, assignmentID, at); err != nil {
		writeDomainError(w, "Failed to complete assignment", err)
		return
	}

	p, err := h.Store.GetProject(r.Context(), projectID)
	if err != nil {
		writeDomainError(w, "Failed to get project", err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(*p))
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError picks the status from the error category.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case generic.IsClientError(err):
		status, code = http.StatusBadRequest, "invalid_input"
	case generic.IsNotFound(err):
		status, code = http.StatusNotFound, "not_found"
	case generic.IsConflict(err):
		status, code = http.StatusConflict, "no_allocations"
	}
	writeJSON(w, status, ErrorResponse{Error: message, Code: code, Details: err.Error()})
}
