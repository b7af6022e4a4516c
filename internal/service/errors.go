// Package service holds the business rules: account registration and
// login, OAuth identity resolution, and ownership-checked access to
// projects and tasks.  Every operation on owned data takes the caller's
// user id explicitly.
package service

import "errors"

var (
	// ErrInvalidCredentials covers every login failure: unknown email,
	// account without a password and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateEmail is returned by Register when the email is taken.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the resource belongs to another user.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation wraps input errors; the wrapped message names the field.
	ErrValidation = errors.New("validation failed")
)
