package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	// RoleCitizen is a member of the public filing complaints. Stored as "user" for client compatibility.
	RoleCitizen UserRole = "user"
	RoleOfficer UserRole = "officer"
	RoleAdmin   UserRole = "admin"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleCitizen, RoleOfficer, RoleAdmin:
		return true
	}
	return false
}

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Email        string    `db:"email" json:"email"`
	Role         UserRole  `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Profile strips credentials from the user.
func (u *User) Profile() UserProfile {
	return UserProfile{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// UserProfile is the public view of a user.
type UserProfile struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
