package people

import "errors"

var ErrPersonNotFound = errors.New("person not found")
