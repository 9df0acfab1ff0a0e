package budget

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	// GetOccasionBudget returns the occasion-wide budget, nil when none
	// is set. ErrOccasionNotFound when the occasion is not in the group.
	GetOccasionBudget(ctx context.Context, groupID, occasionID string) (*decimal.Decimal, error)

	// ListOccasionLines returns the pricing lines of every list tied to
	// the occasion.
	ListOccasionLines(ctx context.Context, occasionID string) ([]Line, error)

	// ListListLines returns the pricing lines of one list in the group.
	ListListLines(ctx context.Context, groupID, listID string) ([]Line, error)

	// ListGiftLines returns the pricing lines referencing a gift across
	// the occasion's lists.
	ListGiftLines(ctx context.Context, occasionID, giftID string) ([]Line, error)

	UpsertEntityBudget(ctx context.Context, entityBudget *EntityBudget) error
	ListEntityBudgets(ctx context.Context, occasionID string) ([]EntityBudget, error)
	GetEntityBudget(ctx context.Context, occasionID string, ref EntityRef) (*EntityBudget, error)
	DeleteEntityBudget(ctx context.Context, occasionID string, ref EntityRef) (bool, error)
}
