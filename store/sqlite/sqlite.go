/*
Package sqlite provides a SQLite-backed store for the workshop planner.

PURPOSE:
  Persists the planner's inputs (workers, holidays, projects and their
  process assignments) and serves them back as one immutable
  workshop.Snapshot. The computed plan is never stored: every request
  recomputes it from the current snapshot.

INTERFACES IMPLEMENTED:
  workshop.Source:             Snapshot loading for planning runs
  workshop.ProjectDateUpdater: Apply-dates write-back

KEY TABLES:
  workers:             Roster with daily capacity (NULL = default 8h)
  holidays:            Inclusive per-worker absence intervals
  projects:            Value, won/start/delivery dates, materials status
  process_assignments: Estimated hours, sort order, assigned worker

NUMERIC STORAGE:
  Hours and money are stored as TEXT decimal strings and read back with
  generic.ParseLenient, so a bad value degrades to zero rather than
  failing the whole snapshot.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Project saves replace the project's
  assignments inside one SQL transaction.

USAGE:
  store, err := sqlite.New("./data/workshop.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  snap, err := store.Snapshot(ctx)
  plan := workshop.Plan(workshop.PlanInput{Snapshot: snap, Year: 2025, Now: time.Now()})

SEE ALSO:
  - workshop/plan.go: Source interface
  - workshop/apply.go: ProjectDateUpdater interface
  - store/sqlite/sqlite_test.go: Runs against :memory:
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/workshop-planner/generic"
	"github.com/warp/workshop-planner/workshop"
)

// Store implements the planner's persistence using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS workers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT '',
		installer BOOLEAN NOT NULL DEFAULT FALSE,
		daily_capacity_hours TEXT,
		holiday_color TEXT NOT NULL DEFAULT '',
		process_codes_json TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL REFERENCES workers(id) ON DELETE CASCADE,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_worker_dates
		ON holidays(worker_id, start_date, end_date);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		number TEXT NOT NULL DEFAULT '',
		value TEXT NOT NULL DEFAULT '0',
		won_at TEXT,
		start_date TEXT,
		delivery_date TEXT,
		materials_status TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS process_assignments (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		code TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0,
		required BOOLEAN NOT NULL DEFAULT FALSE,
		estimated_hours TEXT NOT NULL DEFAULT '0',
		assigned_worker_id TEXT,
		completed_at TEXT,
		position INTEGER NOT NULL DEFAULT 0
	);

	-- Queue building scans assignments per worker
	CREATE INDEX IF NOT EXISTS idx_assignments_worker
		ON process_assignments(assigned_worker_id) WHERE completed_at IS NULL;
	CREATE INDEX IF NOT EXISTS idx_assignments_project
		ON process_assignments(project_id, position);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WORKER STORE
// =============================================================================

// SaveWorker inserts or updates a worker.
func (s *Store) SaveWorker(ctx context.Context, w workshop.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	codes, err := json.Marshal(nonNilStrings(w.ProcessCodes))
	if err != nil {
		return fmt.Errorf("failed to encode process codes: %w", err)
	}

	query := `
		INSERT INTO workers (id, name, email, role, installer, daily_capacity_hours,
			holiday_color, process_codes_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			installer = excluded.installer,
			daily_capacity_hours = excluded.daily_capacity_hours,
			holiday_color = excluded.holiday_color,
			process_codes_json = excluded.process_codes_json
	`

	_, err = s.db.ExecContext(ctx, query,
		w.ID, w.Name, w.Email, w.Role, w.Installer,
		nullDecimal(w.DailyCapacityHours),
		w.HolidayColor,
		string(codes),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetWorker retrieves a worker by ID.
func (s *Store) GetWorker(ctx context.Context, id generic.WorkerID) (*workshop.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, workerSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	workers, err := scanWorkers(rows)
	if err != nil {
		return nil, err
	}
	if len(workers) == 0 {
		return nil, fmt.Errorf("%w: %s", generic.ErrWorkerNotFound, id)
	}
	return &workers[0], nil
}

// ListWorkers returns the roster ordered by name, then id.
func (s *Store) ListWorkers(ctx context.Context) ([]workshop.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listWorkers(ctx)
}

func (s *Store) listWorkers(ctx context.Context) ([]workshop.Worker, error) {
	rows, err := s.db.QueryContext(ctx, workerSelect+" ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	return scanWorkers(rows)
}

// DeleteWorker removes a worker and their holidays. Assignments keep the
// worker id and simply stop matching any roster entry.
func (s *Store) DeleteWorker(ctx context.Context, id generic.WorkerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM workers WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(res, fmt.Errorf("%w: %s", generic.ErrWorkerNotFound, id))
}

const workerSelect = `
	SELECT id, name, email, role, installer, daily_capacity_hours, holiday_color, process_codes_json
	FROM workers`

func scanWorkers(rows *sql.Rows) ([]workshop.Worker, error) {
	defer rows.Close()

	var workers []workshop.Worker
	for rows.Next() {
		var w workshop.Worker
		var capacity sql.NullString
		var codes string
		if err := rows.Scan(&w.ID, &w.Name, &w.Email, &w.Role, &w.Installer, &capacity, &w.HolidayColor, &codes); err != nil {
			return nil, err
		}
		if capacity.Valid {
			c := generic.ParseLenient(capacity.String)
			w.DailyCapacityHours = &c
		}
		_ = json.Unmarshal([]byte(codes), &w.ProcessCodes)
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

// =============================================================================
// HOLIDAY STORE
// =============================================================================

// SaveHoliday inserts or updates a holiday interval.
func (s *Store) SaveHoliday(ctx context.Context, h workshop.HolidayInterval) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO holidays (id, worker_id, start_date, end_date, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			worker_id = excluded.worker_id,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			note = excluded.note
	`

	_, err := s.db.ExecContext(ctx, query,
		h.ID,
		h.WorkerID,
		h.Start.Key(),
		h.End.Key(),
		h.Note,
		time.Now().UTC().Format(time.RFC3339),
	)
	if isForeignKeyError(err) {
		return fmt.Errorf("%w: %s", generic.ErrWorkerNotFound, h.WorkerID)
	}
	return err
}

// ListHolidays returns holidays, optionally for one worker, ordered by start.
func (s *Store) ListHolidays(ctx context.Context, workerID generic.WorkerID) ([]workshop.HolidayInterval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listHolidays(ctx, workerID)
}

func (s *Store) listHolidays(ctx context.Context, workerID generic.WorkerID) ([]workshop.HolidayInterval, error) {
	query := `
		SELECT id, worker_id, start_date, end_date, note
		FROM holidays
		WHERE ? = '' OR worker_id = ?
		ORDER BY start_date, id
	`

	rows, err := s.db.QueryContext(ctx, query, workerID, workerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []workshop.HolidayInterval
	for rows.Next() {
		var h workshop.HolidayInterval
		var start, end string
		if err := rows.Scan(&h.ID, &h.WorkerID, &start, &end, &h.Note); err != nil {
			return nil, err
		}
		h.Start, _ = generic.ParseDay(start)
		h.End, _ = generic.ParseDay(end)
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// DeleteHoliday deletes a holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	return err
}

// =============================================================================
// PROJECT STORE
// =============================================================================

// SaveProject upserts a project and replaces its assignments atomically.
// Assignment order is preserved so queue tie-breaks stay stable.
func (s *Store) SaveProject(ctx context.Context, p workshop.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC().Format(time.RFC3339)
		query := `
			INSERT INTO projects (id, name, number, value, won_at, start_date, delivery_date,
				materials_status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				number = excluded.number,
				value = excluded.value,
				won_at = excluded.won_at,
				start_date = excluded.start_date,
				delivery_date = excluded.delivery_date,
				materials_status = excluded.materials_status,
				updated_at = excluded.updated_at
		`
		if _, err := tx.ExecContext(ctx, query,
			p.ID, p.Name, p.Number, p.Value.String(),
			nullTime(p.WonAt), nullDay(p.StartDate), nullDay(p.DeliveryDate),
			p.MaterialsStatus, now, now,
		); err != nil {
			return fmt.Errorf("failed to save project: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM process_assignments WHERE project_id = ?", p.ID); err != nil {
			return fmt.Errorf("failed to clear assignments: %w", err)
		}

		insert := `
			INSERT INTO process_assignments (id, project_id, code, name, sort_order, required,
				estimated_hours, assigned_worker_id, completed_at, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		for i, a := range p.Assignments {
			if _, err := tx.ExecContext(ctx, insert,
				a.ID, p.ID, a.Code, a.Name, a.SortOrder, a.Required,
				a.EstimatedHours.String(),
				nullString(string(a.AssignedWorkerID)),
				nullTime(a.CompletedAt),
				i,
			); err != nil {
				return fmt.Errorf("failed to save assignment %s: %w", a.ID, err)
			}
		}
		return nil
	})
}

// GetProject retrieves a project with its assignments.
func (s *Store) GetProject(ctx context.Context, id generic.ProjectID) (*workshop.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects, err := s.queryProjects(ctx, " WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, fmt.Errorf("%w: %s", generic.ErrProjectNotFound, id)
	}
	return &projects[0], nil
}

// ListProjects returns all projects ordered by id.
func (s *Store) ListProjects(ctx context.Context) ([]workshop.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryProjects(ctx, "")
}

// DeleteProject removes a project and its assignments.
func (s *Store) DeleteProject(ctx context.Context, id generic.ProjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(res, fmt.Errorf("%w: %s", generic.ErrProjectNotFound, id))
}

// UpdateProjectDates sets the start and delivery dates of a project. This is
// the write-back target of workshop.ApplyDates.
func (s *Store) UpdateProjectDates(ctx context.Context, id generic.ProjectID, start, delivery generic.TimePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE projects SET start_date = ?, delivery_date = ?, updated_at = ? WHERE id = ?",
		start.Key(), delivery.Key(), time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return err
	}
	return requireAffected(res, fmt.Errorf("%w: %s", generic.ErrProjectNotFound, id))
}

// CompleteAssignment marks a process assignment as done, removing it from
// future plans.
func (s *Store) CompleteAssignment(ctx context.Context, projectID generic.ProjectID, id generic.AssignmentID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE process_assignments SET completed_at = ? WHERE id = ? AND project_id = ?",
		at.UTC().Format(time.RFC3339), id, projectID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res, fmt.Errorf("%w: %s", generic.ErrAssignmentNotFound, id))
}

func (s *Store) queryProjects(ctx context.Context, where string, args ...any) ([]workshop.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, number, value, won_at, start_date, delivery_date, materials_status
		FROM projects`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}

	var projects []workshop.Project
	index := make(map[generic.ProjectID]int)
	for rows.Next() {
		var p workshop.Project
		var value string
		var wonAt, start, delivery sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Number, &value, &wonAt, &start, &delivery, &p.MaterialsStatus); err != nil {
			rows.Close()
			return nil, err
		}
		p.Value = generic.ParseLenient(value)
		p.WonAt = parseNullTime(wonAt)
		p.StartDate = parseNullDay(start)
		p.DeliveryDate = parseNullDay(delivery)
		index[p.ID] = len(projects)
		projects = append(projects, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return projects, nil
	}

	arows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, code, name, sort_order, required, estimated_hours,
			assigned_worker_id, completed_at
		FROM process_assignments
		ORDER BY project_id, position`)
	if err != nil {
		return nil, err
	}
	defer arows.Close()

	for arows.Next() {
		var a workshop.ProcessAssignment
		var projectID generic.ProjectID
		var hours string
		var worker, completed sql.NullString
		if err := arows.Scan(&a.ID, &projectID, &a.Code, &a.Name, &a.SortOrder, &a.Required,
			&hours, &worker, &completed); err != nil {
			return nil, err
		}
		i, ok := index[projectID]
		if !ok {
			continue
		}
		a.EstimatedHours = generic.NonNegative(generic.ParseLenient(hours))
		a.AssignedWorkerID = generic.WorkerID(worker.String)
		a.CompletedAt = parseNullTime(completed)
		projects[i].Assignments = append(projects[i].Assignments, a)
	}
	return projects, arows.Err()
}

// =============================================================================
// SNAPSHOT (workshop.Source interface)
// =============================================================================

// Snapshot loads workers, holidays and projects under one read lock so the
// planner sees a consistent view.
func (s *Store) Snapshot(ctx context.Context) (workshop.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	workers, err := s.listWorkers(ctx)
	if err != nil {
		return workshop.Snapshot{}, fmt.Errorf("failed to load workers: %w", err)
	}
	holidays, err := s.listHolidays(ctx, "")
	if err != nil {
		return workshop.Snapshot{}, fmt.Errorf("failed to load holidays: %w", err)
	}
	projects, err := s.queryProjects(ctx, "")
	if err != nil {
		return workshop.Snapshot{}, fmt.Errorf("failed to load projects: %w", err)
	}
	return workshop.Snapshot{Workers: workers, Holidays: holidays, Projects: projects}, nil
}

// Reset clears all data.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"process_assignments", "projects", "holidays", "workers"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// withTx runs fn in a transaction. Callers hold s.mu.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullDay(d *generic.TimePoint) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Key(), Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func parseNullDay(s sql.NullString) *generic.TimePoint {
	if !s.Valid {
		return nil
	}
	d, ok := generic.ParseDay(s.String)
	if !ok {
		return nil
	}
	return &d
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func nonNilStrings(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
