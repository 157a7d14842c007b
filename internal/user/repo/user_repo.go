package repo

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/agrosig/agrosig-api/internal/user/entity"
	"github.com/agrosig/agrosig-api/pkg/utilities"
)

// ErrDuplicateEmail is returned when an insert or update trips the unique
// index on users.email. The store-side constraint is the backstop for the
// application-level duplicate check, which is best-effort on its own.
var ErrDuplicateEmail = errors.New("email already registered")

const userColumns = `user_id, role_id, first_name, paternal_surname, maternal_surname,
	email, password, image_user, google_id, configured_plot, is_active, created_at`

// UserRepo provides data access for the users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// EnsureSchema creates the users table if not exists (idempotent). The role
// table must exist first; see role repo.
func (r *UserRepo) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  user_id BIGINT PRIMARY KEY,
  role_id BIGINT NOT NULL REFERENCES role(role_id),
  first_name TEXT NOT NULL,
  paternal_surname TEXT NOT NULL,
  maternal_surname TEXT NOT NULL,
  email TEXT NOT NULL,
  password TEXT NOT NULL DEFAULT '',
  image_user TEXT,
  google_id TEXT,
  configured_plot BOOLEAN NOT NULL DEFAULT false,
  is_active BOOLEAN NOT NULL DEFAULT true,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (email);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new user row. The user ID is assigned application-side
// from the snowflake generator; created_at comes back from the store.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) (*entity.User, error) {
	id, err := utilities.NewID()
	if err != nil {
		return nil, err
	}
	u.ID = id
	const q = `INSERT INTO users
		(user_id, role_id, first_name, paternal_surname, maternal_surname, email, password, image_user, google_id, configured_plot, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`
	row := r.db.QueryRowxContext(ctx, q,
		u.ID, u.RoleID, u.FirstName, u.PaternalSurname, u.MaternalSurname,
		u.Email, u.PasswordHash, u.ImageUser, u.GoogleID, u.ConfiguredPlot, u.IsActive)
	if err := row.Scan(&u.CreatedAt); err != nil {
		return nil, translateUnique(err)
	}
	return u, nil
}

// GetByID fetches a user row or sql.ErrNoRows.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	var u entity.User
	if err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, id); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail fetches a user row by email or sql.ErrNoRows.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	if err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = $1`, email); err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns every user row.
func (r *UserRepo) List(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	if err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at`); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateProfile persists the resolved name and email fields.
func (r *UserRepo) UpdateProfile(ctx context.Context, id int64, firstName, paternalSurname, maternalSurname, email string) (*entity.User, error) {
	const q = `UPDATE users
		SET first_name = $2, paternal_surname = $3, maternal_surname = $4, email = $5
		WHERE user_id = $1
		RETURNING ` + userColumns
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, id, firstName, paternalSurname, maternalSurname, email); err != nil {
		return nil, translateUnique(err)
	}
	return &u, nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET password = $2 WHERE user_id = $1`, id, hash)
	return err
}

// UpdateImage persists a new profile image reference.
func (r *UserRepo) UpdateImage(ctx context.Context, id int64, imagePath string) (*entity.User, error) {
	const q = `UPDATE users SET image_user = $2 WHERE user_id = $1 RETURNING ` + userColumns
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, id, imagePath); err != nil {
		return nil, err
	}
	return &u, nil
}

// Delete removes the user row permanently.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, id)
	return err
}

func translateUnique(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrDuplicateEmail
	}
	return err
}
