package gifts

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	ListGifts(ctx context.Context, groupID string, filter GiftFilter) ([]Gift, int64, error)
	GetGiftByID(ctx context.Context, groupID, giftID string) (*Gift, error)
	CreateGift(ctx context.Context, gift *Gift) error
	UpdateGift(ctx context.Context, gift *Gift) error
	DeleteGift(ctx context.Context, groupID, giftID string) (bool, error)
	CountGiftsByStatus(ctx context.Context, groupID string) (map[string]int64, error)

	GetTagIDsByGiftIDs(ctx context.Context, giftIDs []string) (map[string][]string, error)
	GetRecipientIDsByGiftIDs(ctx context.Context, giftIDs []string) (map[string][]string, error)
	ReplaceGiftTags(ctx context.Context, giftID string, tagIDs []string) error
	ReplaceGiftRecipients(ctx context.Context, giftID string, personIDs []string) error

	ListTags(ctx context.Context, groupID string) ([]Tag, error)
	GetTagByID(ctx context.Context, groupID, tagID string) (*Tag, error)
	CreateTag(ctx context.Context, tag *Tag) error
	UpdateTag(ctx context.Context, tag *Tag) error
	DeleteTag(ctx context.Context, groupID, tagID string) (bool, error)
	CountTagsByIDs(ctx context.Context, groupID string, tagIDs []string) (int64, error)
	CountTagsByName(ctx context.Context, groupID, name, excludeID string) (int64, error)
	CountGiftTagsByTagID(ctx context.Context, tagID string) (int64, error)

	ListStores(ctx context.Context, groupID string) ([]Store, error)
	GetStoreByID(ctx context.Context, groupID, storeID string) (*Store, error)
	CreateStore(ctx context.Context, store *Store) error
	UpdateStore(ctx context.Context, store *Store) error
	DeleteStore(ctx context.Context, groupID, storeID string) (bool, error)

	CountPeopleByIDs(ctx context.Context, groupID string, personIDs []string) (int64, error)
}
