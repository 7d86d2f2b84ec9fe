/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Request bodies for
  workers, holidays and projects use the upstream camelCase shapes from
  the factory package, so records can be synced from the main application
  unchanged. Responses use the snake_case DTOs below.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Roster:
    WorkerDTO, HolidayDTO

  Projects:
    ProjectDTO, AssignmentDTO

  Planning:
    PlanDTO, WorkerScheduleDTO, WorkerDayDTO, AllocationDTO, OverflowDTO,
    DayTotalDTO, PeriodSummaryDTO, BacklogDTO, SummaryDTO,
    ApplyDatesResponse

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

NUMBERS:
  Hours and money are computed as decimals and rendered as float64.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/snapshot.go: Request body shapes
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/workshop-planner/generic"
	"github.com/warp/workshop-planner/workshop"
)

// =============================================================================
// ROSTER
// =============================================================================

// WorkerDTO represents a worker in API responses.
type WorkerDTO struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	DisplayName        string   `json:"display_name"`
	Email              string   `json:"email,omitempty"`
	Role               string   `json:"role,omitempty"`
	Installer          bool     `json:"installer"`
	DailyCapacityHours *float64 `json:"daily_capacity_hours,omitempty"`
	CapacityHours      float64  `json:"capacity_hours"`
	HolidayColor       string   `json:"holiday_color,omitempty"`
	ProcessCodes       []string `json:"process_codes,omitempty"`
}

// HolidayDTO represents a holiday interval.
type HolidayDTO struct {
	ID        string `json:"id"`
	WorkerID  string `json:"worker_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Note      string `json:"note,omitempty"`
}

// =============================================================================
// PROJECTS
// =============================================================================

// ProjectDTO represents a project in API responses.
type ProjectDTO struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Number          string          `json:"number,omitempty"`
	Value           float64         `json:"value"`
	WonAt           string          `json:"won_at,omitempty"`
	StartDate       string          `json:"start_date,omitempty"`
	DeliveryDate    string          `json:"delivery_date,omitempty"`
	MaterialsStatus string          `json:"materials_status,omitempty"`
	Assignments     []AssignmentDTO `json:"assignments"`
}

// AssignmentDTO represents a process assignment.
type AssignmentDTO struct {
	ID               string  `json:"id"`
	Code             string  `json:"code"`
	Name             string  `json:"name"`
	SortOrder        int     `json:"sort_order"`
	Required         bool    `json:"required"`
	EstimatedHours   float64 `json:"estimated_hours"`
	AssignedWorkerID string  `json:"assigned_worker_id,omitempty"`
	CompletedAt      string  `json:"completed_at,omitempty"`
}

// =============================================================================
// PLANNING
// =============================================================================

// AllocationDTO is one chunk of work on one day.
type AllocationDTO struct {
	ProjectID       string  `json:"project_id"`
	ProjectName     string  `json:"project_name"`
	AssignmentID    string  `json:"assignment_id"`
	ProcessCode     string  `json:"process_code"`
	Hours           float64 `json:"hours"`
	Value           float64 `json:"value"`
	MaterialsStatus string  `json:"materials_status,omitempty"`
}

// WorkerDayDTO lists a worker's allocations on one day.
type WorkerDayDTO struct {
	Date      string          `json:"date"`
	UsedHours float64         `json:"used_hours"`
	Items     []AllocationDTO `json:"items"`
}

// WorkerScheduleDTO is one worker's row of the calendar. Only days with
// allocations are listed.
type WorkerScheduleDTO struct {
	WorkerID      string         `json:"worker_id"`
	Name          string         `json:"name"`
	CapacityHours float64        `json:"capacity_hours"`
	Days          []WorkerDayDTO `json:"days"`
}

// OverflowDTO records hours that did not fit in the year.
type OverflowDTO struct {
	WorkerID       string  `json:"worker_id"`
	ProjectID      string  `json:"project_id"`
	AssignmentID   string  `json:"assignment_id"`
	RemainingHours float64 `json:"remaining_hours"`
}

// DayTotalDTO is the workshop-wide figure for one day.
type DayTotalDTO struct {
	Date           string  `json:"date"`
	Weekend        bool    `json:"weekend"`
	ScheduledHours float64 `json:"scheduled_hours"`
	CapacityHours  float64 `json:"capacity_hours"`
	Value          float64 `json:"value"`
	IdleWorkers    int     `json:"idle_workers"`
}

// PeriodSummaryDTO is a week, month or year rollup.
type PeriodSummaryDTO struct {
	Type           string  `json:"type"`
	Start          string  `json:"start"`
	End            string  `json:"end"`
	ScheduledHours float64 `json:"scheduled_hours"`
	CapacityHours  float64 `json:"capacity_hours"`
	Value          float64 `json:"value"`
	Utilization    float64 `json:"utilization"`
}

// BacklogDTO summarizes overflow and undated projects.
type BacklogDTO struct {
	Year             int      `json:"year,omitempty"`
	OverflowProjects int      `json:"overflow_projects"`
	OverflowHours    float64  `json:"overflow_hours"`
	UndatedProjects  []string `json:"undated_projects"`
	ComputedAt       string   `json:"computed_at,omitempty"`
}

// PlanDTO is the full plan for a year.
type PlanDTO struct {
	Year          int                 `json:"year"`
	ReferenceDate string              `json:"reference_date"`
	Workers       []WorkerScheduleDTO `json:"workers"`
	Overflow      []OverflowDTO       `json:"overflow"`
	Days          []DayTotalDTO       `json:"days"`
	Summaries     []PeriodSummaryDTO  `json:"summaries"`
	Backlog       BacklogDTO          `json:"backlog"`
}

// SummaryDTO is the plan without per-day detail.
type SummaryDTO struct {
	Year          int                `json:"year"`
	ReferenceDate string             `json:"reference_date"`
	Summaries     []PeriodSummaryDTO `json:"summaries"`
	Backlog       BacklogDTO         `json:"backlog"`
}

// ApplyDatesResponse reports the dates written back to a project.
type ApplyDatesResponse struct {
	ProjectID    string `json:"project_id"`
	Year         int    `json:"year"`
	StartDate    string `json:"start_date"`
	DeliveryDate string `json:"delivery_date"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toFloat(d decimal.Decimal) float64 { return d.InexactFloat64() }

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatDay(d *generic.TimePoint) string {
	if d == nil {
		return ""
	}
	return d.Key()
}

func toWorkerDTO(w workshop.Worker) WorkerDTO {
	dto := WorkerDTO{
		ID:            string(w.ID),
		Name:          w.Name,
		DisplayName:   w.DisplayName(),
		Email:         w.Email,
		Role:          w.Role,
		Installer:     w.Installer,
		CapacityHours: toFloat(w.Capacity()),
		HolidayColor:  w.HolidayColor,
		ProcessCodes:  w.ProcessCodes,
	}
	if w.DailyCapacityHours != nil {
		c := toFloat(*w.DailyCapacityHours)
		dto.DailyCapacityHours = &c
	}
	return dto
}

func toHolidayDTO(h workshop.HolidayInterval) HolidayDTO {
	return HolidayDTO{
		ID:        h.ID,
		WorkerID:  string(h.WorkerID),
		StartDate: h.Start.Key(),
		EndDate:   h.End.Key(),
		Note:      h.Note,
	}
}

func toProjectDTO(p workshop.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:              string(p.ID),
		Name:            p.Name,
		Number:          p.Number,
		Value:           toFloat(p.Value),
		WonAt:           formatTime(p.WonAt),
		StartDate:       formatDay(p.StartDate),
		DeliveryDate:    formatDay(p.DeliveryDate),
		MaterialsStatus: p.MaterialsStatus,
		Assignments:     make([]AssignmentDTO, len(p.Assignments)),
	}
	for i, a := range p.Assignments {
		dto.Assignments[i] = AssignmentDTO{
			ID:               string(a.ID),
			Code:             a.Code,
			Name:             a.Name,
			SortOrder:        a.SortOrder,
			Required:         a.Required,
			EstimatedHours:   toFloat(a.EstimatedHours),
			AssignedWorkerID: string(a.AssignedWorkerID),
			CompletedAt:      formatTime(a.CompletedAt),
		}
	}
	return dto
}

func toSummaryDTOs(summaries []workshop.PeriodSummary) []PeriodSummaryDTO {
	dtos := make([]PeriodSummaryDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = PeriodSummaryDTO{
			Type:           string(s.Type),
			Start:          s.Period.Start.Key(),
			End:            s.Period.End.Key(),
			ScheduledHours: toFloat(s.ScheduledHours),
			CapacityHours:  toFloat(s.CapacityHours),
			Value:          toFloat(s.Value),
			Utilization:    toFloat(s.Utilization()),
		}
	}
	return dtos
}

func toBacklogDTO(year int, b workshop.BacklogReport) BacklogDTO {
	dto := BacklogDTO{
		Year:             year,
		OverflowProjects: b.OverflowProjects,
		OverflowHours:    toFloat(b.OverflowHours),
		UndatedProjects:  make([]string, len(b.UndatedProjects)),
	}
	for i, id := range b.UndatedProjects {
		dto.UndatedProjects[i] = string(id)
	}
	return dto
}

func toSummaryDTO(plan workshop.PlanResult) SummaryDTO {
	return SummaryDTO{
		Year:          plan.Schedule.Year,
		ReferenceDate: plan.Reference.Key(),
		Summaries:     toSummaryDTOs(plan.Summaries),
		Backlog:       toBacklogDTO(plan.Schedule.Year, plan.Backlog),
	}
}

// toPlanDTO renders a plan. Worker rows follow roster order and days are
// in calendar order.
func toPlanDTO(plan workshop.PlanResult, workers []workshop.Worker) PlanDTO {
	sched := plan.Schedule
	dto := PlanDTO{
		Year:          sched.Year,
		ReferenceDate: plan.Reference.Key(),
		Workers:       make([]WorkerScheduleDTO, 0, len(workers)),
		Overflow:      make([]OverflowDTO, len(sched.Overflow)),
		Days:          make([]DayTotalDTO, len(plan.Days)),
		Summaries:     toSummaryDTOs(plan.Summaries),
		Backlog:       toBacklogDTO(sched.Year, plan.Backlog),
	}

	for _, w := range workers {
		row := WorkerScheduleDTO{
			WorkerID:      string(w.ID),
			Name:          w.DisplayName(),
			CapacityHours: toFloat(w.Capacity()),
			Days:          []WorkerDayDTO{},
		}
		for d := range generic.YearDays(sched.Year) {
			items := sched.ItemsOn(w.ID, d)
			if len(items) == 0 {
				continue
			}
			day := WorkerDayDTO{
				Date:      d.Key(),
				UsedHours: toFloat(sched.UsedOn(w.ID, d)),
				Items:     make([]AllocationDTO, len(items)),
			}
			for i, it := range items {
				day.Items[i] = AllocationDTO{
					ProjectID:       string(it.ProjectID),
					ProjectName:     it.ProjectName,
					AssignmentID:    string(it.AssignmentID),
					ProcessCode:     it.ProcessCode,
					Hours:           toFloat(it.Hours),
					Value:           toFloat(it.Value),
					MaterialsStatus: it.MaterialsStatus,
				}
			}
			row.Days = append(row.Days, day)
		}
		dto.Workers = append(dto.Workers, row)
	}

	for i, o := range sched.Overflow {
		dto.Overflow[i] = OverflowDTO{
			WorkerID:       string(o.WorkerID),
			ProjectID:      string(o.ProjectID),
			AssignmentID:   string(o.AssignmentID),
			RemainingHours: toFloat(o.RemainingHours),
		}
	}

	for i, d := range plan.Days {
		dto.Days[i] = DayTotalDTO{
			Date:           d.Date.Key(),
			Weekend:        d.Weekend,
			ScheduledHours: toFloat(d.ScheduledHours),
			CapacityHours:  toFloat(d.CapacityHours),
			Value:          toFloat(d.Value),
			IdleWorkers:    d.IdleWorkers,
		}
	}
	return dto
}
