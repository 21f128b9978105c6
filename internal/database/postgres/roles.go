package postgres

import (
	"context"
	"fmt"

	"github.com/maperezv/staff-attendance/internal/database"
)

// RoleRepository provides PostgreSQL-backed role storage.
type RoleRepository struct {
	pool *Pool
}

// NewRoleRepository creates a new PostgreSQL role repository.
func NewRoleRepository(pool *Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

func (r *RoleRepository) Create(ctx context.Context, role *database.Role) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO roles (name, description)
		VALUES ($1, $2)
		RETURNING id
	`, role.Name, role.Description).Scan(&role.ID)
	if err != nil {
		return fmt.Errorf("insert role: %w", mapError(err))
	}
	return nil
}

func (r *RoleRepository) Get(ctx context.Context, id int64) (*database.Role, error) {
	var role database.Role
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description FROM roles WHERE id = $1
	`, id).Scan(&role.ID, &role.Name, &role.Description)
	if err != nil {
		return nil, fmt.Errorf("get role: %w", mapError(err))
	}
	return &role, nil
}

func (r *RoleRepository) List(ctx context.Context) ([]database.Role, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, name, description FROM roles ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var roles []database.Role
	for rows.Next() {
		var role database.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}
	return roles, nil
}

func (r *RoleRepository) Update(ctx context.Context, role *database.Role) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE roles SET name = $2, description = $3 WHERE id = $1
	`, role.ID, role.Name, role.Description)
	if err != nil {
		return fmt.Errorf("update role: %w", mapError(err))
	}
	return requireRow(res)
}

func (r *RoleRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, "DELETE FROM roles WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return requireRow(res)
}
