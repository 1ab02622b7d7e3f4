package domain

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrBadFormat             = errors.New("bad format")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrNotFound              = errors.New("patient not found")
	ErrConflict              = errors.New("email already exists")
	ErrStorageUnavailable    = errors.New("storage unavailable")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
