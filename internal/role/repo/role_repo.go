package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/agrosig/agrosig-api/internal/role/entity"
)

// RoleRepo reads the role table. Roles are seeded once and never written by
// the application afterwards.
type RoleRepo struct {
	db *sqlx.DB
}

func NewRoleRepo(db *sqlx.DB) *RoleRepo { return &RoleRepo{db: db} }

// EnsureSchema creates and seeds the role table (idempotent).
func (r *RoleRepo) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS role (
  role_id BIGINT PRIMARY KEY,
  role_name TEXT UNIQUE NOT NULL
);
INSERT INTO role (role_id, role_name) VALUES (1, 'admin'), (2, 'member')
ON CONFLICT (role_id) DO NOTHING;
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// GetByID fetches a role row or sql.ErrNoRows.
func (r *RoleRepo) GetByID(ctx context.Context, roleID int64) (*entity.Role, error) {
	var role entity.Role
	if err := r.db.GetContext(ctx, &role, `SELECT role_id, role_name FROM role WHERE role_id = $1`, roleID); err != nil {
		return nil, err
	}
	return &role, nil
}

// GetUserRoleID resolves a user's role assignment through the role join, or
// sql.ErrNoRows when the user cannot be resolved.
func (r *RoleRepo) GetUserRoleID(ctx context.Context, userID int64) (int64, error) {
	var roleID int64
	const q = `SELECT r.role_id FROM users u JOIN role r ON u.role_id = r.role_id WHERE u.user_id = $1`
	if err := r.db.GetContext(ctx, &roleID, q, userID); err != nil {
		return 0, err
	}
	return roleID, nil
}
