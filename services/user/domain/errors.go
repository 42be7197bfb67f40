package domain

import "errors"

// Sentinel errors for the user domain. Use errors.Is() to check these.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates a user with the same email already exists.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrInvalidUser indicates missing or malformed user data.
	ErrInvalidUser = errors.New("invalid user")

	// ErrForbidden indicates the caller may not manage users.
	ErrForbidden = errors.New("operation not permitted for role")
)
