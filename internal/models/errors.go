package models

import "errors"

// Custom errors
var (
	ErrNotFound        = errors.New("record not found")
	ErrInvalidMatch    = errors.New("invalid match record")
	ErrInvalidFighter  = errors.New("invalid fighter record")
	ErrDataUnavailable = errors.New("fight history unavailable")
	ErrDuplicateKey    = errors.New("duplicate key violation")
)
