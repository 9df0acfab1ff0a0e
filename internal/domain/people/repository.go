package people

import "context"

type Repository interface {
	ListByGroup(ctx context.Context, groupID string) ([]Person, error)
	GetByID(ctx context.Context, groupID, personID string) (*Person, error)
	Create(ctx context.Context, person *Person) error
	Update(ctx context.Context, person *Person) error
	Delete(ctx context.Context, groupID, personID string) (bool, error)
}
