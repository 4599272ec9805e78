package core

import "errors"

var (
	// ErrNotFound is returned by every lookup whose record does not exist.
	// Callers treat it as absence, not failure.
	ErrNotFound = errors.New("not found")

	ErrUserExists   = errors.New("user already exists")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrInvalidEmail = errors.New("invalid email address")
)
