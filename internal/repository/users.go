package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shopdesk/backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

type UserRolePatch struct {
	Role        *string
	SyncEnabled *bool
}

func (r *Repository) ListUserRoles(ctx context.Context) ([]domain.UserRole, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, role, sync_enabled, updated_at
		FROM user_roles
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list user roles: %w", err)
	}
	defer rows.Close()

	users := make([]domain.UserRole, 0)
	for rows.Next() {
		u, err := scanUserRole(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user roles: %w", err)
	}
	return users, nil
}

func (r *Repository) CreateUserRole(ctx context.Context, input domain.UserRole) (domain.UserRole, error) {
	u, err := scanUserRole(r.pool.QueryRow(ctx, `
		INSERT INTO user_roles (name, email, role, sync_enabled)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, role, sync_enabled, updated_at
	`, strings.TrimSpace(input.Name), strings.ToLower(strings.TrimSpace(input.Email)), input.Role, input.SyncEnabled))
	if err != nil {
		return domain.UserRole{}, fmt.Errorf("create user role: %w", mapPgError(err))
	}
	return u, nil
}

func (r *Repository) PatchUserRole(ctx context.Context, id int64, patch UserRolePatch) (*domain.UserRole, error) {
	u, err := scanUserRole(r.pool.QueryRow(ctx, `
		UPDATE user_roles SET
			role = COALESCE($2, role),
			sync_enabled = COALESCE($3, sync_enabled),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, email, role, sync_enabled, updated_at
	`, id, patch.Role, patch.SyncEnabled))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("patch user role %d: %w", id, err)
	}
	return &u, nil
}

func scanUserRole(row pgx.Row) (domain.UserRole, error) {
	var u domain.UserRole
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.SyncEnabled, &u.UpdatedAt)
	return u, err
}
