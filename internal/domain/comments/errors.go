package comments

import "errors"

var (
	ErrCommentNotFound   = errors.New("comment not found")
	ErrParentNotFound    = errors.New("comment parent not found")
	ErrInvalidParentKind = errors.New("parent kind must be gift, list, person or occasion")
	ErrNotAuthor         = errors.New("only the author can delete a comment")
)
