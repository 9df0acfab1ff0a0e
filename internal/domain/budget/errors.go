package budget

import "errors"

var (
	ErrOccasionNotFound  = errors.New("occasion not found")
	ErrBudgetNotFound    = errors.New("entity budget not found")
	ErrInvalidEntityKind = errors.New("entity kind must be gift or list")
	ErrNegativeAmount    = errors.New("budget amount cannot be negative")
)
