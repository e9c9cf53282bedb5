package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNoResults      = errors.New("edition has no results yet")
)
