package api

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/workshop-planner/factory"
	"github.com/warp/workshop-planner/generic"
	"github.com/warp/workshop-planner/workshop"
)

// maxPreviewBody bounds POST /api/schedule/preview payloads.
const maxPreviewBody = 8 << 20

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// GetSchedule plans the requested year from the stored snapshot.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	now := h.Now()
	year, err := parseYear(r, now)
	if err != nil {
		writeDomainError(w, "Invalid year", err)
		return
	}

	snap, err := h.Store.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshot", err)
		return
	}

	plan := workshop.Plan(workshop.PlanInput{Snapshot: snap, Year: year, Now: now})
	writeJSON(w, http.StatusOK, toPlanDTO(plan, snap.Workers))
}

// GetScheduleSummary returns the week, month and year rollups and the
// backlog without per-day detail.
func (h *Handler) GetScheduleSummary(w http.ResponseWriter, r *http.Request) {
	now := h.Now()
	year, err := parseYear(r, now)
	if err != nil {
		writeDomainError(w, "Invalid year", err)
		return
	}

	plan, err := workshop.PlanFrom(r.Context(), h.Store, year, now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to plan", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(plan))
}

// PreviewSchedule plans a posted upstream snapshot without touching the
// store.
func (h *Handler) PreviewSchedule(w http.ResponseWriter, r *http.Request) {
	now := h.Now()
	year, err := parseYear(r, now)
	if err != nil {
		writeDomainError(w, "Invalid year", err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPreviewBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body", err)
		return
	}
	var req factory.SnapshotJSON
	if err := factory.Decode(bytes.NewReader(body), &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid snapshot JSON", err)
		return
	}

	snap := h.Factory.FromJSON(req)
	plan := workshop.Plan(workshop.PlanInput{Snapshot: snap, Year: year, Now: now})
	writeJSON(w, http.StatusOK, toPlanDTO(plan, snap.Workers))
}

// ApplyDates recomputes the plan and writes the project's planned range
// back as its start and delivery dates.
func (h *Handler) ApplyDates(w http.ResponseWriter, r *http.Request) {
	id := generic.ProjectID(chi.URLParam(r, "id"))
	now := h.Now()
	year, err := parseYear(r, now)
	if err != nil {
		writeDomainError(w, "Invalid year", err)
		return
	}

	ctx := r.Context()
	if _, err := h.Store.GetProject(ctx, id); err != nil {
		writeDomainError(w, "Failed to get project", err)
		return
	}

	snap, err := h.Store.Snapshot(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshot", err)
		return
	}
	sched := workshop.Schedule(snap, year, now)

	span, err := workshop.ApplyDates(ctx, h.Store, sched, id)
	if err != nil {
		writeDomainError(w, "Failed to apply dates", err)
		return
	}

	writeJSON(w, http.StatusOK, ApplyDatesResponse{
		ProjectID:    string(id),
		Year:         year,
		StartDate:    span.Start.Key(),
		DeliveryDate: span.End.Key(),
	})
}

// GetBacklog returns the monitor's last report, computing one for the
// current year when no monitor has run yet.
func (h *Handler) GetBacklog(w http.ResponseWriter, r *http.Request) {
	if h.Monitor != nil {
		if report, ok := h.Monitor.Last(); ok {
			writeJSON(w, http.StatusOK, report)
			return
		}
	}

	now := h.Now()
	plan, err := workshop.PlanFrom(r.Context(), h.Store, now.UTC().Year(), now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to plan", err)
		return
	}
	report := toBacklogDTO(plan.Schedule.Year, plan.Backlog)
	report.ComputedAt = now.UTC().Format(time.RFC3339)
	writeJSON(w, http.StatusOK, report)
}

// parseYear reads ?year=, defaulting to the current UTC year.
func parseYear(r *http.Request, now time.Time) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return now.UTC().Year(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1 || year > 9999 {
		return 0, generic.ErrInvalidYear
	}
	return year, nil
}
