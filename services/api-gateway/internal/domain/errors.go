package domain

import "errors"

var (
	ErrUnauthenticated      = errors.New("missing or malformed bearer token")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrValidatorUnavailable = errors.New("token validator unavailable")
	ErrNoRoute              = errors.New("no route matches path")
	ErrInvalidRoute         = errors.New("invalid route")
)
