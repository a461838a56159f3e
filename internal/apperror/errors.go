package apperror

import "errors"

// Typed failures surfaced by the service layer. Controllers translate these
// to HTTP statuses in exactly one place; services never return raw strings.
var (
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrUpstream           = errors.New("upstream provider failure")
)
