package occasions

import "errors"

var (
	ErrOccasionNotFound = errors.New("occasion not found")
	ErrInvalidKind      = errors.New("invalid occasion kind")
	ErrNegativeBudget   = errors.New("budget cannot be negative")
)
