package entity

// Role is a read-only row of the role table; the application never creates
// or mutates roles.
type Role struct {
	ID   int64  `db:"role_id" json:"role_id"`
	Name string `db:"role_name" json:"role_name"`
}
