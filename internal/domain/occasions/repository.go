package occasions

import "context"

type Repository interface {
	// ListByGroup returns occasions ordered by date ascending.
	ListByGroup(ctx context.Context, groupID string, filter OccasionFilter) ([]Occasion, int64, error)
	GetByID(ctx context.Context, groupID, occasionID string) (*Occasion, error)
	Create(ctx context.Context, occasion *Occasion) error
	Update(ctx context.Context, occasion *Occasion) error
	Delete(ctx context.Context, groupID, occasionID string) (bool, error)
}
