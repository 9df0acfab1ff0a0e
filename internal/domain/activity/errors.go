package activity

import "errors"

var ErrInvalidAction = errors.New("action is required")
