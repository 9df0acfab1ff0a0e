package comments

import "context"

type Repository interface {
	// ListByParent returns comments oldest first, the reading order of a
	// thread.
	ListByParent(ctx context.Context, groupID string, parent ParentRef, filter ListFilter) ([]Comment, int64, error)
	GetByID(ctx context.Context, groupID, commentID string) (*Comment, error)
	Create(ctx context.Context, comment *Comment) error
	Delete(ctx context.Context, commentID string) (bool, error)
	// ParentExists reports whether the referenced entity lives in the
	// group.
	ParentExists(ctx context.Context, groupID string, parent ParentRef) (bool, error)
}
