package services

import "errors"

var (
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrEducatorNotFound   = errors.New("educator not found")
	ErrStorageUnavailable = errors.New("storage service is not configured")
)
