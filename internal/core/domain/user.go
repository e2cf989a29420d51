package domain

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// IsLibrarian reports whether r may act on behalf of other users.
func (r Role) IsLibrarian() bool {
	return r == RoleStaff || r == RoleAdmin
}

type User struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
}

// NewUser is the input for creating an account. Password is plaintext and
// is hashed before it is stored.
type NewUser struct {
	Username string
	Email    string
	Name     string
	Password string
	Role     Role
}

// UserPatch carries the optional fields of a user update.
type UserPatch struct {
	Name     *string
	Email    *string
	Role     *Role
	IsActive *bool
	Password *string
}
