package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnsupportedSchema = errors.New("unsupported snapshot schema version")
	ErrMalformedPayload  = errors.New("malformed snapshot payload")
)
