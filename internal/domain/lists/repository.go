package lists

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	ListLists(ctx context.Context, groupID string, filter ListFilter) ([]List, int64, error)
	GetListByID(ctx context.Context, groupID, listID string) (*List, error)
	CreateList(ctx context.Context, list *List) error
	UpdateList(ctx context.Context, list *List) error
	DeleteList(ctx context.Context, groupID, listID string) (bool, error)
	CountItemsByListIDs(ctx context.Context, listIDs []string) (map[string]ItemCounts, error)

	ListItems(ctx context.Context, listID string) ([]ListItem, error)
	GetItemByID(ctx context.Context, groupID, itemID string) (*ListItem, error)
	GetGiftPricing(ctx context.Context, groupID, giftID string) (*GiftPricing, error)
	CreateItem(ctx context.Context, item *ListItem) error
	UpdateItem(ctx context.Context, item *ListItem) error
	DeleteItem(ctx context.Context, itemID string) (bool, error)
}
