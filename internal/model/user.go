package model

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRolePatient      UserRole = "patient"
	UserRolePractitioner UserRole = "practitioner"
	UserRoleAdmin        UserRole = "admin"
)

type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Phone        string    `db:"phone" json:"phone,omitempty"`
	DateOfBirth  *Date     `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender       *string   `db:"gender" json:"gender,omitempty"`
	Address      *string   `db:"address" json:"address,omitempty"`
	City         *string   `db:"city" json:"city,omitempty"`
	PostalCode   *string   `db:"postal_code" json:"postal_code,omitempty"`
	Role         UserRole  `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UpdateProfileRequest carries a partial profile update; absent fields
// keep their stored value.
type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name" binding:"omitempty,min=1"`
	LastName    *string `json:"last_name" binding:"omitempty,min=1"`
	Phone       *string `json:"phone" binding:"omitempty,phone"`
	DateOfBirth *Date   `json:"date_of_birth"`
	Gender      *string `json:"gender" binding:"omitempty,oneof=male female other"`
	Address     *string `json:"address" binding:"omitempty,max=255"`
	City        *string `json:"city" binding:"omitempty,max=100"`
	PostalCode  *string `json:"postal_code" binding:"omitempty,max=20"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type UserFilters struct {
	Role  UserRole
	Page  int
	Limit int
}
