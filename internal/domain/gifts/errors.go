package gifts

import "errors"

var (
	ErrGiftNotFound      = errors.New("gift not found")
	ErrStoreNotFound     = errors.New("store not found")
	ErrTagNotFound       = errors.New("tag not found")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrTagNameTaken      = errors.New("tag name already taken")
	ErrTagInUse          = errors.New("tag is attached to gifts")
	ErrInvalidTagColor   = errors.New("tag color must look like #rrggbb")
	ErrInvalidStatus     = errors.New("gift status must be active or archived")
	ErrInvalidPriority   = errors.New("gift priority must be between 0 and 5")
)
