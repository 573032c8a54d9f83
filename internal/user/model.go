package user

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrBlocked            = errors.New("user is blocked")
	ErrCannotBlockAdmin   = errors.New("admin users cannot be blocked")
	ErrEmptyPassword      = errors.New("password cannot be empty")
)

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	IsBlocked    bool      `json:"isBlocked" db:"is_blocked"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Page struct {
	Users       []User `json:"users"`
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
	TotalUsers  int    `json:"totalUsers"`
}
