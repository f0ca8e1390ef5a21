package models

import (
	"strings"
)

// Role represents user roles in the system
type Role string

const (
	RoleUser  Role = "user"
	RoleOwner Role = "owner"
)

// ParseRole parses a role as returned by the API ("USER", "owner", ...).
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, IsValidRole(r)
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleUser, RoleOwner:
		return true
	default:
		return false
	}
}

// User is the session record persisted after a successful login or
// registration. It is the sole source of truth for "is logged in".
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Token    string `json:"token,omitempty"`
}

// IsOwner reports whether the user may list vehicles.
func (u *User) IsOwner() bool {
	return u != nil && u.Role == RoleOwner
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RegisterRequest represents a traveller registration request.
// Either Username or FirstName must be set.
type RegisterRequest struct {
	Username        string `json:"username,omitempty" validate:"required_without=FirstName,omitempty,min=3,max=50"`
	FirstName       string `json:"firstName,omitempty" validate:"omitempty,min=2"`
	LastName        string `json:"lastName,omitempty" validate:"omitempty,min=2"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone,omitempty" validate:"omitempty,phone"`
	Password        string `json:"password" validate:"required,strongpassword"`
	ConfirmPassword string `json:"confirmPassword,omitempty" validate:"omitempty,eqfield=Password"`
	Role            Role   `json:"role,omitempty" validate:"omitempty,role"`
}

// OwnerRegisterRequest represents a vehicle owner registration request.
type OwnerRegisterRequest struct {
	Name           string `json:"name" validate:"required,min=2"`
	CompanyName    string `json:"companyName,omitempty"`
	Phone          string `json:"phone,omitempty" validate:"omitempty,phone"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,strongpassword"`
	City           string `json:"city,omitempty"`
	AdditionalInfo string `json:"additionalInfo,omitempty"`
}

// AuthResponse is the body of a successful login or registration. Older
// API builds answer with only {token, role}.
type AuthResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Token    string `json:"token"`
}

// ErrorResponse is the body of a non-2xx API response.
type ErrorResponse struct {
	Message string `json:"message"`
}

// Claims holds the fields read from a session token.
type Claims struct {
	Subject string
	Role    Role
	Exp     int64
}
