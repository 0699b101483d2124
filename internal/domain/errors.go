package domain

import "errors"

// Sentinel errors shared by repositories and services.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("already exists")
	ErrForbidden          = errors.New("forbidden")
	ErrUnsupportedFormat  = errors.New("unsupported file format")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
