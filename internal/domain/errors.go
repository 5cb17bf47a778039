package domain

import "errors"

var (
	// store
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrDuplicateName  = errors.New("name already exists")

	// input
	ErrMissingFields = errors.New("missing required fields")
	ErrInvalidInput  = errors.New("invalid input")

	// auth
	ErrInvalidCredentials = errors.New("invalid email or password")
)
