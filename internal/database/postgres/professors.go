package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/maperezv/staff-attendance/internal/database"
)

// ProfessorRepository provides PostgreSQL-backed professor storage.
type ProfessorRepository struct {
	pool *Pool
}

// NewProfessorRepository creates a new PostgreSQL professor repository.
func NewProfessorRepository(pool *Pool) *ProfessorRepository {
	return &ProfessorRepository{pool: pool}
}

const professorColumns = `id, user_id, professor_code, first_name, last_name, email,
	registration_date, photo, university_id, id_card`

func scanProfessor(row interface{ Scan(...any) error }) (*database.Professor, error) {
	var p database.Professor
	var userID, universityID sql.NullInt64
	err := row.Scan(
		&p.ID, &userID, &p.Code, &p.FirstName, &p.LastName, &p.Email,
		&p.RegistrationDate, &p.Photo, &universityID, &p.IDCard,
	)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		p.UserID = &userID.Int64
	}
	if universityID.Valid {
		p.UniversityID = &universityID.Int64
	}
	return &p, nil
}

func (r *ProfessorRepository) Create(ctx context.Context, p *database.Professor) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO professors (user_id, professor_code, first_name, last_name, email, photo, university_id, id_card)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, registration_date
	`, p.UserID, p.Code, p.FirstName, p.LastName, p.Email, p.Photo, p.UniversityID, p.IDCard,
	).Scan(&p.ID, &p.RegistrationDate)
	if err != nil {
		return fmt.Errorf("insert professor: %w", mapError(err))
	}
	return nil
}

func (r *ProfessorRepository) Get(ctx context.Context, id int64) (*database.Professor, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+professorColumns+" FROM professors WHERE id = $1", id)
	p, err := scanProfessor(row)
	if err != nil {
		return nil, fmt.Errorf("get professor: %w", mapError(err))
	}
	return p, nil
}

func (r *ProfessorRepository) GetByIDCard(ctx context.Context, idCard string) (*database.Professor, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+professorColumns+" FROM professors WHERE id_card = $1", idCard)
	p, err := scanProfessor(row)
	if err != nil {
		return nil, fmt.Errorf("get professor by id card: %w", mapError(err))
	}
	return p, nil
}

func (r *ProfessorRepository) List(ctx context.Context) ([]database.Professor, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+professorColumns+" FROM professors ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list professors: %w", err)
	}
	defer rows.Close()

	var professors []database.Professor
	for rows.Next() {
		p, err := scanProfessor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan professor: %w", err)
		}
		professors = append(professors, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate professors: %w", err)
	}
	return professors, nil
}

func (r *ProfessorRepository) Update(ctx context.Context, p *database.Professor) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE professors
		SET user_id = $2, professor_code = $3, first_name = $4, last_name = $5,
		    email = $6, photo = $7, university_id = $8, id_card = $9
		WHERE id = $1
	`, p.ID, p.UserID, p.Code, p.FirstName, p.LastName, p.Email, p.Photo, p.UniversityID, p.IDCard)
	if err != nil {
		return fmt.Errorf("update professor: %w", mapError(err))
	}
	return requireRow(res)
}

// patchableProfessorColumns restricts partial updates to known columns.
var patchableProfessorColumns = map[string]bool{
	"professor_code": true,
	"first_name":     true,
	"last_name":      true,
	"email":          true,
	"photo":          true,
	"university_id":  true,
	"id_card":        true,
}

// Patch updates only the given columns. Unknown columns are rejected.
func (r *ProfessorRepository) Patch(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	columns := make([]string, 0, len(fields))
	for col := range fields {
		if !patchableProfessorColumns[col] {
			return fmt.Errorf("column %q is not patchable", col)
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)

	sets := make([]string, 0, len(columns))
	args := []any{id}
	for i, col := range columns {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+2))
		args = append(args, fields[col])
	}

	query := "UPDATE professors SET " + strings.Join(sets, ", ") + " WHERE id = $1"
	res, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("patch professor: %w", mapError(err))
	}
	return requireRow(res)
}

func (r *ProfessorRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, "DELETE FROM professors WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete professor: %w", err)
	}
	return requireRow(res)
}
