package entity

import "time"

// Role IDs seeded in the role table.
const (
	RoleAdmin  int64 = 1
	RoleMember int64 = 2
)

// User represents an account row in the `users` table. The password hash is
// never serialized in responses.
type User struct {
	ID              int64     `db:"user_id" json:"user_id"`
	RoleID          int64     `db:"role_id" json:"role_id"`
	FirstName       string    `db:"first_name" json:"first_name"`
	PaternalSurname string    `db:"paternal_surname" json:"paternal_surname"`
	MaternalSurname string    `db:"maternal_surname" json:"maternal_surname"`
	Email           string    `db:"email" json:"email"`
	PasswordHash    string    `db:"password" json:"-"`
	ImageUser       *string   `db:"image_user" json:"image_user,omitempty"`
	GoogleID        *string   `db:"google_id" json:"-"`
	ConfiguredPlot  bool      `db:"configured_plot" json:"configured_plot"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// External reports whether the account came from a federated identity
// provider and has no local password to verify against.
func (u *User) External() bool {
	return u.GoogleID != nil && *u.GoogleID != "" && u.PasswordHash == ""
}

// ProfileUpdate carries the optional profile fields of a PATCH; nil means
// keep the stored value.
type ProfileUpdate struct {
	FirstName       *string `json:"first_name,omitempty"`
	PaternalSurname *string `json:"paternal_surname,omitempty"`
	MaternalSurname *string `json:"maternal_surname,omitempty"`
	Email           *string `json:"email,omitempty"`
}
