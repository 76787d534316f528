package model

import (
	"errors"
	"time"
)

// User represents an admin account that can sign in to the panel.
type User struct {
	ID                 int64      `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	PasswordHash       string     `json:"-"`
	Role               string     `json:"role"`
	AssignedRestaurant *int64     `json:"assigned_restaurant,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	DeletedAt          *time.Time `json:"deleted_at,omitempty"`
}

// Roles.
const (
	RoleMaster = "master"
	RoleAdmin  = "admin"
)

// MinPasswordLength is the shortest password accepted for an account.
const MinPasswordLength = 8

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleMaster: 2,
		RoleAdmin:  1,
	}
	have, want := levels[role], levels[minimum]
	return have > 0 && want > 0 && have >= want
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleMaster || role == RoleAdmin
}

// ValidatePassword checks the password policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
