package auth

import "errors"

var (
	// ErrInvalidInput marks a validation failure: missing field, bad email
	// shape, weak password.
	ErrInvalidInput = errors.New("auth: invalid input")

	// ErrAlreadyExists marks a duplicate email, whether caught by the
	// pre-check or surfaced by the store's uniqueness constraint.
	ErrAlreadyExists = errors.New("auth: already exists")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password on login. Callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrInvalidToken covers every token rejection: bad signature,
	// malformed structure, expiry, missing subject, and a subject that no
	// longer resolves to a user.
	ErrInvalidToken = errors.New("auth: invalid token")

	ErrNotFound = errors.New("auth: not found")
)
