package domain

import "errors"

var ErrInvalidEvent = errors.New("invalid event")
