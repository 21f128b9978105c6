package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maperezv/staff-attendance/internal/attendance"
)

// AttendanceRepository implements attendance.Store on top of PostgreSQL.
// Record writes run inside a transaction with a row lock on the key so
// concurrent events for the same schedule, professor and day serialize.
type AttendanceRepository struct {
	pool *Pool
}

// NewAttendanceRepository creates a new PostgreSQL attendance repository.
func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// GetWindow loads the schedule window for the given type and id.
func (r *AttendanceRepository) GetWindow(ctx context.Context, typ attendance.ScheduleType, scheduleID int64) (attendance.ScheduleWindow, error) {
	var window attendance.ScheduleWindow
	var start, end, days string

	switch typ {
	case attendance.ScheduleClass:
		err := r.pool.QueryRow(ctx, `
			SELECT id, professor_id, subject, start_time, end_time, days_of_week
			FROM class_schedules WHERE id = $1
		`, scheduleID).Scan(&window.ID, &window.ProfessorID, &window.Subject, &start, &end, &days)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return window, attendance.ErrScheduleNotFound
			}
			return window, fmt.Errorf("get class schedule window: %w", err)
		}
	case attendance.ScheduleWork:
		err := r.pool.QueryRow(ctx, `
			SELECT id, professor_id, description, start_time, end_time, days_of_week, expected_hours
			FROM work_schedules WHERE id = $1
		`, scheduleID).Scan(&window.ID, &window.ProfessorID, &window.Subject, &start, &end, &days, &window.ExpectedHours)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return window, attendance.ErrScheduleNotFound
			}
			return window, fmt.Errorf("get work schedule window: %w", err)
		}
	default:
		return window, fmt.Errorf("unknown schedule type %q", typ)
	}

	window.Type = typ
	window.Days = attendance.ParseDays(days)

	var err error
	if window.StartTime, err = parseClock(start); err != nil {
		return window, err
	}
	if window.EndTime, err = parseClock(end); err != nil {
		return window, err
	}
	return window, nil
}

// Transact runs fn inside a single transaction, rolling back on error.
func (r *AttendanceRepository) Transact(ctx context.Context, fn func(tx attendance.RecordStore) error) error {
	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&txRecordStore{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing attendance transaction: %w", err)
	}
	return nil
}

// txRecordStore is the per-transaction record access.
type txRecordStore struct {
	tx *sql.Tx
}

const attendanceColumns = `id, schedule_type, schedule_id, professor_id, attendance_code,
	register_date, entry_time, exit_time, total_hours, late_entry, late_exit`

func scanAttendance(row interface{ Scan(...any) error }) (*attendance.Record, error) {
	var rec attendance.Record
	var typ, lateEntry, lateExit string
	var exit sql.NullTime
	err := row.Scan(
		&rec.ID, &typ, &rec.ScheduleID, &rec.ProfessorID, &rec.Code,
		&rec.RegisterDate, &rec.EntryTime, &exit, &rec.TotalHours, &lateEntry, &lateExit,
	)
	if err != nil {
		return nil, err
	}
	rec.ScheduleType = attendance.ScheduleType(typ)
	if exit.Valid {
		t := exit.Time
		rec.ExitTime = &t
	}
	rec.LateEntry = attendance.ParseLegacyFlag(lateEntry)
	rec.LateExit = attendance.ParseLegacyFlag(lateExit)
	return &rec, nil
}

// GetForUpdate loads the record for the key with a row lock, or nil when no
// record exists yet.
func (s *txRecordStore) GetForUpdate(ctx context.Context, key attendance.Key) (*attendance.Record, error) {
	row := s.tx.QueryRowContext(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance
		WHERE schedule_type = $1 AND schedule_id = $2 AND professor_id = $3 AND register_date = $4
		FOR UPDATE
	`, string(key.ScheduleType), key.ScheduleID, key.ProfessorID, key.RegisterDate.Format("2006-01-02"))

	rec, err := scanAttendance(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get attendance record: %w", err)
	}
	return rec, nil
}

// Create inserts a new open record. A unique key hit means a concurrent
// entry won the race.
func (s *txRecordStore) Create(ctx context.Context, rec attendance.Record) error {
	_, err := s.tx.ExecContext(ctx, `
		INSERT INTO attendance (schedule_type, schedule_id, professor_id, attendance_code,
			register_date, entry_time, late_entry, late_exit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, string(rec.ScheduleType), rec.ScheduleID, rec.ProfessorID, rec.Code,
		rec.RegisterDate.Format("2006-01-02"), rec.EntryTime,
		attendance.LegacyFlag(rec.LateEntry), attendance.LegacyFlag(false))
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.ErrIntegrityConflict
		}
		return fmt.Errorf("insert attendance record: %w", err)
	}
	return nil
}

// Complete closes an open record with its exit time and total hours.
func (s *txRecordStore) Complete(ctx context.Context, rec attendance.Record) error {
	if rec.ExitTime == nil {
		return errors.New("exit time is required to complete an attendance record")
	}

	res, err := s.tx.ExecContext(ctx, `
		UPDATE attendance
		SET exit_time = $2, total_hours = $3, late_exit = $4
		WHERE id = $1 AND exit_time IS NULL
	`, rec.ID, rec.ExitTime, rec.TotalHours, attendance.LegacyFlag(rec.LateExit))
	if err != nil {
		return fmt.Errorf("complete attendance record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return attendance.ErrIntegrityConflict
	}
	return nil
}

// ListBySchedule returns recorded attendance for one schedule, newest first.
func (r *AttendanceRepository) ListBySchedule(ctx context.Context, typ attendance.ScheduleType, scheduleID int64) ([]attendance.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance
		WHERE schedule_type = $1 AND schedule_id = $2
		ORDER BY register_date DESC, id DESC
	`, string(typ), scheduleID)
	if err != nil {
		return nil, fmt.Errorf("list attendance by schedule: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// ListByProfessor returns recorded attendance for one professor, newest first.
func (r *AttendanceRepository) ListByProfessor(ctx context.Context, professorID int64) ([]attendance.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance
		WHERE professor_id = $1
		ORDER BY register_date DESC, id DESC
	`, professorID)
	if err != nil {
		return nil, fmt.Errorf("list attendance by professor: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

func collectRecords(rows *sql.Rows) ([]attendance.Record, error) {
	var records []attendance.Record
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance records: %w", err)
	}
	return records, nil
}
