package domain

import (
	"errors"
	"time"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrPersistence        = errors.New("persistence failure")
	ErrTimeout            = errors.New("operation timed out")
)

// User is the stored identity. PasswordHash must never leave the service.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
