package groups

import "errors"

var (
	ErrGroupNotFound        = errors.New("group not found")
	ErrGroupCodeNotFound    = errors.New("group code not found")
	ErrAlreadyInGroup       = errors.New("already in a group")
	ErrMemberNotFound       = errors.New("member not found")
	ErrNotOwner             = errors.New("not the group owner")
	ErrCannotRemoveOwner    = errors.New("cannot remove the group owner")
	ErrCodeGenerationFailed = errors.New("group code generation failed")
)
