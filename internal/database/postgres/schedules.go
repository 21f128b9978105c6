package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/maperezv/staff-attendance/internal/database"
)

// clockLayout is how TIME columns come back from the driver.
const clockLayout = "15:04:05"

// parseClock parses a TIME column value. lib/pq hands TIME columns back as
// text, so repositories scan them into strings.
func parseClock(s string) (time.Time, error) {
	if len(s) > len(clockLayout) {
		s = s[:len(clockLayout)]
	}
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time value %q: %w", s, err)
	}
	return t, nil
}

func formatClock(t time.Time) string {
	return t.Format(clockLayout)
}

// ClassScheduleRepository provides PostgreSQL-backed class schedule storage.
type ClassScheduleRepository struct {
	pool *Pool
}

// NewClassScheduleRepository creates a new PostgreSQL class schedule repository.
func NewClassScheduleRepository(pool *Pool) *ClassScheduleRepository {
	return &ClassScheduleRepository{pool: pool}
}

const classScheduleColumns = `id, professor_id, knowledge_area, education_level, code, subject,
	nrc, status, section, credits, type, building, classroom, capacity,
	start_time, end_time, days_of_week`

func scanClassSchedule(row interface{ Scan(...any) error }) (*database.ClassSchedule, error) {
	var s database.ClassSchedule
	var start, end string
	err := row.Scan(
		&s.ID, &s.ProfessorID, &s.KnowledgeArea, &s.EducationLevel, &s.Code, &s.Subject,
		&s.NRC, &s.Status, &s.Section, &s.Credits, &s.Type, &s.Building, &s.Classroom,
		&s.Capacity, &start, &end, &s.DaysOfWeek,
	)
	if err != nil {
		return nil, err
	}
	if s.StartTime, err = parseClock(start); err != nil {
		return nil, err
	}
	if s.EndTime, err = parseClock(end); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ClassScheduleRepository) Create(ctx context.Context, s *database.ClassSchedule) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO class_schedules (professor_id, knowledge_area, education_level, code, subject,
			nrc, status, section, credits, type, building, classroom, capacity,
			start_time, end_time, days_of_week)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`, s.ProfessorID, s.KnowledgeArea, s.EducationLevel, s.Code, s.Subject,
		s.NRC, s.Status, s.Section, s.Credits, s.Type, s.Building, s.Classroom, s.Capacity,
		formatClock(s.StartTime), formatClock(s.EndTime), s.DaysOfWeek,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("insert class schedule: %w", mapError(err))
	}
	return nil
}

func (r *ClassScheduleRepository) Get(ctx context.Context, id int64) (*database.ClassSchedule, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+classScheduleColumns+" FROM class_schedules WHERE id = $1", id)
	s, err := scanClassSchedule(row)
	if err != nil {
		return nil, fmt.Errorf("get class schedule: %w", mapError(err))
	}
	return s, nil
}

func (r *ClassScheduleRepository) ListByProfessor(ctx context.Context, professorID int64) ([]database.ClassSchedule, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+classScheduleColumns+" FROM class_schedules WHERE professor_id = $1 ORDER BY id", professorID)
	if err != nil {
		return nil, fmt.Errorf("list class schedules: %w", err)
	}
	defer rows.Close()

	var schedules []database.ClassSchedule
	for rows.Next() {
		s, err := scanClassSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan class schedule: %w", err)
		}
		schedules = append(schedules, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate class schedules: %w", err)
	}
	return schedules, nil
}

func (r *ClassScheduleRepository) Update(ctx context.Context, s *database.ClassSchedule) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE class_schedules
		SET professor_id = $2, knowledge_area = $3, education_level = $4, code = $5,
		    subject = $6, nrc = $7, status = $8, section = $9, credits = $10, type = $11,
		    building = $12, classroom = $13, capacity = $14,
		    start_time = $15, end_time = $16, days_of_week = $17
		WHERE id = $1
	`, s.ID, s.ProfessorID, s.KnowledgeArea, s.EducationLevel, s.Code,
		s.Subject, s.NRC, s.Status, s.Section, s.Credits, s.Type,
		s.Building, s.Classroom, s.Capacity,
		formatClock(s.StartTime), formatClock(s.EndTime), s.DaysOfWeek)
	if err != nil {
		return fmt.Errorf("update class schedule: %w", mapError(err))
	}
	return requireRow(res)
}

func (r *ClassScheduleRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, "DELETE FROM class_schedules WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete class schedule: %w", err)
	}
	return requireRow(res)
}

// WorkScheduleRepository provides PostgreSQL-backed work schedule storage.
type WorkScheduleRepository struct {
	pool *Pool
}

// NewWorkScheduleRepository creates a new PostgreSQL work schedule repository.
func NewWorkScheduleRepository(pool *Pool) *WorkScheduleRepository {
	return &WorkScheduleRepository{pool: pool}
}

const workScheduleColumns = `id, professor_id, description, start_time, end_time, days_of_week, expected_hours`

func scanWorkSchedule(row interface{ Scan(...any) error }) (*database.WorkSchedule, error) {
	var s database.WorkSchedule
	var start, end string
	err := row.Scan(&s.ID, &s.ProfessorID, &s.Description, &start, &end, &s.DaysOfWeek, &s.ExpectedHours)
	if err != nil {
		return nil, err
	}
	if s.StartTime, err = parseClock(start); err != nil {
		return nil, err
	}
	if s.EndTime, err = parseClock(end); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *WorkScheduleRepository) Create(ctx context.Context, s *database.WorkSchedule) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO work_schedules (professor_id, description, start_time, end_time, days_of_week, expected_hours)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, s.ProfessorID, s.Description, formatClock(s.StartTime), formatClock(s.EndTime),
		s.DaysOfWeek, s.ExpectedHours,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("insert work schedule: %w", mapError(err))
	}
	return nil
}

func (r *WorkScheduleRepository) Get(ctx context.Context, id int64) (*database.WorkSchedule, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+workScheduleColumns+" FROM work_schedules WHERE id = $1", id)
	s, err := scanWorkSchedule(row)
	if err != nil {
		return nil, fmt.Errorf("get work schedule: %w", mapError(err))
	}
	return s, nil
}

func (r *WorkScheduleRepository) ListByProfessor(ctx context.Context, professorID int64) ([]database.WorkSchedule, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+workScheduleColumns+" FROM work_schedules WHERE professor_id = $1 ORDER BY id", professorID)
	if err != nil {
		return nil, fmt.Errorf("list work schedules: %w", err)
	}
	defer rows.Close()

	var schedules []database.WorkSchedule
	for rows.Next() {
		s, err := scanWorkSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work schedule: %w", err)
		}
		schedules = append(schedules, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate work schedules: %w", err)
	}
	return schedules, nil
}

func (r *WorkScheduleRepository) Update(ctx context.Context, s *database.WorkSchedule) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE work_schedules
		SET professor_id = $2, description = $3, start_time = $4, end_time = $5,
		    days_of_week = $6, expected_hours = $7
		WHERE id = $1
	`, s.ID, s.ProfessorID, s.Description, formatClock(s.StartTime), formatClock(s.EndTime),
		s.DaysOfWeek, s.ExpectedHours)
	if err != nil {
		return fmt.Errorf("update work schedule: %w", mapError(err))
	}
	return requireRow(res)
}

func (r *WorkScheduleRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, "DELETE FROM work_schedules WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete work schedule: %w", err)
	}
	return requireRow(res)
}
