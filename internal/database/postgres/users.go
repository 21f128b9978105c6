package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/maperezv/staff-attendance/internal/database"
)

// UserRepository provides PostgreSQL-backed user storage.
type UserRepository struct {
	pool *Pool
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(pool *Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, first_name, last_name, email, password_hash, role_id, registration_date, professor_id`

func scanUser(row interface{ Scan(...any) error }) (*database.AppUser, error) {
	var u database.AppUser
	var professorID sql.NullInt64
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&u.RoleID, &u.RegistrationDate, &professorID,
	)
	if err != nil {
		return nil, err
	}
	if professorID.Valid {
		u.ProfessorID = &professorID.Int64
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, user *database.AppUser) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO app_users (first_name, last_name, email, password_hash, role_id, professor_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, registration_date
	`, user.FirstName, user.LastName, user.Email, user.PasswordHash, user.RoleID, user.ProfessorID,
	).Scan(&user.ID, &user.RegistrationDate)
	if err != nil {
		return fmt.Errorf("insert user: %w", mapError(err))
	}
	return nil
}

func (r *UserRepository) Get(ctx context.Context, id int64) (*database.AppUser, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM app_users WHERE id = $1", id)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", mapError(err))
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*database.AppUser, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM app_users WHERE email = $1", email)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", mapError(err))
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]database.AppUser, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+userColumns+" FROM app_users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []database.AppUser
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, user *database.AppUser) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE app_users
		SET first_name = $2, last_name = $3, email = $4, password_hash = $5,
		    role_id = $6, professor_id = $7
		WHERE id = $1
	`, user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash,
		user.RoleID, user.ProfessorID)
	if err != nil {
		return fmt.Errorf("update user: %w", mapError(err))
	}
	return requireRow(res)
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, "DELETE FROM app_users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireRow(res)
}
