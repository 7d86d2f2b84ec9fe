/*
Package factory converts upstream JSON records into planner inputs.

PURPOSE:
  The planner's inputs arrive from the main application's services in
  their own JSON shapes: camelCase keys, monetary values and hours that
  may be strings or numbers, ISO dates and datetimes. The factory turns
  those records into workshop types, applying the planner's lenient
  coercion rules in one place.

JSON SCHEMA:
  {
    "workers":  [{"id": "w1", "name": "Sam", "email": "sam@x", "role": "joiner",
                  "dailyCapacityHours": 7.5, "holidayColor": "#f00"}],
    "holidays": [{"id": "h1", "workerId": "w1", "startDate": "2025-08-04",
                  "endDate": "2025-08-08", "note": "Summer"}],
    "projects": [{"id": "p1", "name": "Kitchen", "number": "Q-1001",
                  "value": "£12,500", "wonAt": "2025-01-14T09:00:00Z",
                  "startDate": "2025-02-03",
                  "processAssignments": [{"id": "a1", "code": "MACH",
                    "name": "Machining", "sortOrder": 1, "estimatedHours": "12",
                    "assignedWorkerId": "w1", "completedAt": null}]}]
  }

COERCION RULES:
  - value, estimatedHours, dailyCapacityHours: generic.ParseLenient
  - estimatedHours below zero: 0
  - dailyCapacityHours absent or null: worker default (8h)
  - dates that do not parse: treated as absent
  - missing ids: generated (uuid)

USAGE:
  f := factory.NewSnapshotFactory()
  snap, err := f.Parse(body)
  plan := workshop.Plan(workshop.PlanInput{Snapshot: snap, Year: 2025, Now: time.Now()})

SEE ALSO:
  - workshop/types.go: Target types
  - generic/types.go: ParseLenient
  - api/handlers.go: Preview and CRUD endpoints use this package
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/warp/workshop-planner/generic"
	"github.com/warp/workshop-planner/workshop"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// SnapshotJSON is the combined upstream payload.
type SnapshotJSON struct {
	Workers  []WorkerJSON  `json:"workers"`
	Holidays []HolidayJSON `json:"holidays"`
	Projects []ProjectJSON `json:"projects"`
}

// WorkerJSON is a user record from the user service.
type WorkerJSON struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name,omitempty"`
	Email              string   `json:"email"`
	Role               string   `json:"role"`
	IsInstaller        bool     `json:"isInstaller,omitempty"`
	DailyCapacityHours any      `json:"dailyCapacityHours,omitempty"`
	HolidayColor       string   `json:"holidayColor,omitempty"`
	ProcessCodes       []string `json:"processCodes,omitempty"`
}

// HolidayJSON is a holiday record from the holiday service.
type HolidayJSON struct {
	ID        string `json:"id"`
	WorkerID  string `json:"workerId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Note      string `json:"note,omitempty"`
}

// ProjectJSON is a project record from the project service.
type ProjectJSON struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Number             string           `json:"number,omitempty"`
	Value              any              `json:"value,omitempty"`
	WonAt              string           `json:"wonAt,omitempty"`
	StartDate          string           `json:"startDate,omitempty"`
	DeliveryDate       string           `json:"deliveryDate,omitempty"`
	MaterialsStatus    string           `json:"materialsStatus,omitempty"`
	ProcessAssignments []AssignmentJSON `json:"processAssignments"`
}

// AssignmentJSON is one process assignment inside a project record.
type AssignmentJSON struct {
	ID               string `json:"id"`
	Code             string `json:"code"`
	Name             string `json:"name"`
	SortOrder        *int   `json:"sortOrder,omitempty"`
	Required         bool   `json:"required,omitempty"`
	EstimatedHours   any    `json:"estimatedHours,omitempty"`
	AssignedWorkerID string `json:"assignedWorkerId,omitempty"`
	CompletedAt      string `json:"completedAt,omitempty"`
}

// =============================================================================
// SNAPSHOT FACTORY
// =============================================================================

// SnapshotFactory converts upstream JSON into workshop types.
type SnapshotFactory struct {
	newID func() string
}

// NewSnapshotFactory creates a factory that fills missing ids with uuids.
func NewSnapshotFactory() *SnapshotFactory {
	return &SnapshotFactory{newID: func() string { return uuid.NewString() }}
}

// Decode reads JSON keeping numbers as json.Number so money is not routed
// through float64.
func Decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec.Decode(v)
}

// Parse parses a combined snapshot payload.
func (f *SnapshotFactory) Parse(data []byte) (workshop.Snapshot, error) {
	var sj SnapshotJSON
	if err := Decode(bytes.NewReader(data), &sj); err != nil {
		return workshop.Snapshot{}, fmt.Errorf("failed to parse snapshot JSON: %w", err)
	}
	return f.FromJSON(sj), nil
}

// FromJSON converts a decoded payload. It never fails; malformed fields
// degrade to their defaults.
func (f *SnapshotFactory) FromJSON(sj SnapshotJSON) workshop.Snapshot {
	snap := workshop.Snapshot{
		Workers:  make([]workshop.Worker, 0, len(sj.Workers)),
		Holidays: make([]workshop.HolidayInterval, 0, len(sj.Holidays)),
		Projects: make([]workshop.Project, 0, len(sj.Projects)),
	}
	for _, wj := range sj.Workers {
		snap.Workers = append(snap.Workers, f.Worker(wj))
	}
	for _, hj := range sj.Holidays {
		if h, ok := f.Holiday(hj); ok {
			snap.Holidays = append(snap.Holidays, h)
		}
	}
	for _, pj := range sj.Projects {
		snap.Projects = append(snap.Projects, f.Project(pj))
	}
	return snap
}

// Worker converts one worker record.
func (f *SnapshotFactory) Worker(wj WorkerJSON) workshop.Worker {
	w := workshop.Worker{
		ID:           generic.WorkerID(f.idOr(wj.ID)),
		Name:         wj.Name,
		Email:        wj.Email,
		Role:         wj.Role,
		Installer:    wj.IsInstaller || strings.EqualFold(wj.Role, "installer"),
		HolidayColor: wj.HolidayColor,
		ProcessCodes: wj.ProcessCodes,
	}
	if wj.DailyCapacityHours != nil {
		c := generic.ParseLenient(wj.DailyCapacityHours)
		w.DailyCapacityHours = &c
	}
	return w
}

// Holiday converts one holiday record. Records whose dates do not parse are
// dropped (ok is false); out-of-order dates are kept and never match.
func (f *SnapshotFactory) Holiday(hj HolidayJSON) (workshop.HolidayInterval, bool) {
	start, okStart := generic.ParseDay(hj.StartDate)
	end, okEnd := generic.ParseDay(hj.EndDate)
	if !okStart || !okEnd {
		return workshop.HolidayInterval{}, false
	}
	return workshop.HolidayInterval{
		ID:       f.idOr(hj.ID),
		WorkerID: generic.WorkerID(hj.WorkerID),
		Start:    start,
		End:      end,
		Note:     hj.Note,
	}, true
}

// Project converts one project record and its assignments.
func (f *SnapshotFactory) Project(pj ProjectJSON) workshop.Project {
	p := workshop.Project{
		ID:              generic.ProjectID(f.idOr(pj.ID)),
		Name:            pj.Name,
		Number:          pj.Number,
		Value:           generic.ParseLenient(pj.Value),
		WonAt:           parseInstant(pj.WonAt),
		StartDate:       parseOptionalDay(pj.StartDate),
		DeliveryDate:    parseOptionalDay(pj.DeliveryDate),
		MaterialsStatus: pj.MaterialsStatus,
	}
	for _, aj := range pj.ProcessAssignments {
		p.Assignments = append(p.Assignments, f.Assignment(aj))
	}
	return p
}

// Assignment converts one process assignment record.
func (f *SnapshotFactory) Assignment(aj AssignmentJSON) workshop.ProcessAssignment {
	a := workshop.ProcessAssignment{
		ID:               generic.AssignmentID(f.idOr(aj.ID)),
		Code:             aj.Code,
		Name:             aj.Name,
		Required:         aj.Required,
		EstimatedHours:   generic.NonNegative(generic.ParseLenient(aj.EstimatedHours)),
		AssignedWorkerID: generic.WorkerID(strings.TrimSpace(aj.AssignedWorkerID)),
		CompletedAt:      parseInstant(aj.CompletedAt),
	}
	if aj.SortOrder != nil {
		a.SortOrder = *aj.SortOrder
	}
	return a
}

func (f *SnapshotFactory) idOr(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return f.newID()
}

// =============================================================================
// REVERSE CONVERSION - For API responses
// =============================================================================

// WorkerToJSON renders a worker in the upstream shape.
func WorkerToJSON(w workshop.Worker) WorkerJSON {
	wj := WorkerJSON{
		ID:           string(w.ID),
		Name:         w.Name,
		Email:        w.Email,
		Role:         w.Role,
		IsInstaller:  w.Installer,
		HolidayColor: w.HolidayColor,
		ProcessCodes: w.ProcessCodes,
	}
	if w.DailyCapacityHours != nil {
		wj.DailyCapacityHours = json.Number(w.DailyCapacityHours.String())
	}
	return wj
}

// HolidayToJSON renders a holiday in the upstream shape.
func HolidayToJSON(h workshop.HolidayInterval) HolidayJSON {
	return HolidayJSON{
		ID:        h.ID,
		WorkerID:  string(h.WorkerID),
		StartDate: h.Start.Key(),
		EndDate:   h.End.Key(),
		Note:      h.Note,
	}
}

// ProjectToJSON renders a project in the upstream shape.
func ProjectToJSON(p workshop.Project) ProjectJSON {
	pj := ProjectJSON{
		ID:                 string(p.ID),
		Name:               p.Name,
		Number:             p.Number,
		Value:              json.Number(p.Value.String()),
		WonAt:              formatInstant(p.WonAt),
		StartDate:          formatOptionalDay(p.StartDate),
		DeliveryDate:       formatOptionalDay(p.DeliveryDate),
		MaterialsStatus:    p.MaterialsStatus,
		ProcessAssignments: make([]AssignmentJSON, 0, len(p.Assignments)),
	}
	for _, a := range p.Assignments {
		order := a.SortOrder
		pj.ProcessAssignments = append(pj.ProcessAssignments, AssignmentJSON{
			ID:               string(a.ID),
			Code:             a.Code,
			Name:             a.Name,
			SortOrder:        &order,
			Required:         a.Required,
			EstimatedHours:   json.Number(a.EstimatedHours.String()),
			AssignedWorkerID: string(a.AssignedWorkerID),
			CompletedAt:      formatInstant(a.CompletedAt),
		})
	}
	return pj
}

// =============================================================================
// DATE HELPERS
// =============================================================================

func parseOptionalDay(s string) *generic.TimePoint {
	d, ok := generic.ParseDay(s)
	if !ok {
		return nil
	}
	return &d
}

// parseInstant accepts RFC3339 timestamps or bare dates.
func parseInstant(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return &t
	}
	if d, ok := generic.ParseDay(s); ok {
		return &d.Time
	}
	return nil
}

func formatOptionalDay(d *generic.TimePoint) string {
	if d == nil {
		return ""
	}
	return d.Key()
}

func formatInstant(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
