package models

import (
	"strings"
	"time"
)

type User struct {
	ID           int       `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Address      string    `json:"address"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Role is the canonical role vocabulary as stored in the database.
// External clients use "user"/"store_owner"/"admin"; NormalizeRole is the
// only place the two vocabularies meet.
type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleOwner      Role = "Owner"
	RoleNormalUser Role = "Normal User"
)

// NormalizeRole maps an external role value (case-insensitive, with known
// synonyms) to its canonical form. The second return value is false for
// unrecognized input.
func NormalizeRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, true
	case "owner", "store_owner":
		return RoleOwner, true
	case "user", "normal user", "customer":
		return RoleNormalUser, true
	default:
		return "", false
	}
}

// External returns the role vocabulary used by API clients.
func (r Role) External() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleOwner:
		return "store_owner"
	default:
		return "user"
	}
}

// UserListItem is a row of the admin user listing. AverageRating is only
// populated for Owner rows; everyone else reports null.
type UserListItem struct {
	ID            int       `json:"id"`
	FullName      string    `json:"fullName"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	Role          Role      `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
	AverageRating *float64  `json:"average_rating"`
}

// UserFilter carries the admin listing query parameters. Search matches
// fullName, email and address as a case-insensitive substring.
type UserFilter struct {
	Search    string
	Role      string
	SortBy    string
	SortOrder string
}

type RegisterRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type AuthResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type UpdateProfileRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type AdminUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
	Role     string `json:"role"`
}
