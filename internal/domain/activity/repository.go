package activity

import "context"

type Repository interface {
	// ListByGroup returns entries newest first along with the total count.
	ListByGroup(ctx context.Context, groupID string, filter ListFilter) ([]Entry, int64, error)
	Create(ctx context.Context, entry *Entry) error
}
