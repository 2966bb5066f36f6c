package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredential covers both unknown account and wrong password/code
	// so callers cannot enumerate registered emails.
	ErrInvalidCredential = errors.New("invalid credentials")
	// ErrInvalidState marks operations attempted before their prerequisite
	// state exists, e.g. confirming enrollment with no pending secret.
	ErrInvalidState = errors.New("invalid state")
	ErrInvalidToken = errors.New("invalid token")
	ErrBadRequest   = errors.New("bad request")
	// ErrUnavailable wraps infrastructure failures (repository unreachable).
	// Fatal to the request, never to the process.
	ErrUnavailable = errors.New("service unavailable")
)
