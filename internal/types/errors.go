package types

import "errors"

// Error kinds shared across the service. Callers wrap them with context and
// test with errors.Is.
var (
	ErrInvalidFormat     = errors.New("invalid format")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrMissingField      = errors.New("missing field")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrValidation        = errors.New("validation error")
	ErrRequestFailed     = errors.New("request failed")
	ErrPersistence       = errors.New("persistence error")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrTooLarge          = errors.New("payload too large")
)
