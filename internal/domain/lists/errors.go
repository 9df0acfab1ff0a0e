package lists

import (
	"errors"
	"fmt"
)

var (
	ErrListNotFound      = errors.New("list not found")
	ErrItemNotFound      = errors.New("list item not found")
	ErrGiftNotFound      = errors.New("gift not found")
	ErrAssigneeNotFound  = errors.New("assignee not found")
	ErrDuplicateItem     = errors.New("gift already on list")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// TransitionError reports a rejected status change with both sides of
// the attempt. It unwraps to ErrInvalidTransition.
type TransitionError struct {
	Current   Status
	Requested Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %q to %q", e.Current, e.Requested)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
