package gifts

import (
	"context"
	"errors"

	giftsdomain "giftboard/internal/domain/gifts"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(giftsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) ListGifts(ctx context.Context, groupID string, filter giftsdomain.GiftFilter) ([]giftsdomain.Gift, int64, error) {
	query := r.db.WithContext(ctx).Model(&giftsdomain.Gift{}).Where("gifts.group_id = ?", groupID)
	if filter.Status != nil {
		query = query.Where("gifts.status = ?", *filter.Status)
	}
	if filter.StoreID != nil {
		query = query.Where("gifts.store_id = ?", *filter.StoreID)
	}
	joined := false
	if filter.TagID != nil {
		query = query.Joins("join gift_tags on gift_tags.gift_id = gifts.id").Where("gift_tags.tag_id = ?", *filter.TagID)
		joined = true
	}
	if filter.PersonID != nil {
		query = query.Joins("join gift_recipients on gift_recipients.gift_id = gifts.id").Where("gift_recipients.person_id = ?", *filter.PersonID)
		joined = true
	}

	countQuery := query.Session(&gorm.Session{})
	if joined {
		countQuery = countQuery.Distinct("gifts.id")
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if joined {
		query = query.Distinct()
	}

	query = query.Order("gifts.priority desc, gifts.created_at desc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var items []giftsdomain.Gift
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *PostgresRepository) GetGiftByID(ctx context.Context, groupID, giftID string) (*giftsdomain.Gift, error) {
	var gift giftsdomain.Gift
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND id = ?", groupID, giftID).
		First(&gift).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, giftsdomain.ErrGiftNotFound
		}
		return nil, err
	}
	return &gift, nil
}

func (r *PostgresRepository) CreateGift(ctx context.Context, gift *giftsdomain.Gift) error {
	return r.db.WithContext(ctx).Create(gift).Error
}

func (r *PostgresRepository) UpdateGift(ctx context.Context, gift *giftsdomain.Gift) error {
	return r.db.WithContext(ctx).
		Model(&giftsdomain.Gift{}).
		Where("id = ? AND group_id = ?", gift.ID, gift.GroupID).
		Updates(map[string]interface{}{
			"name":        gift.Name,
			"description": gift.Description,
			"url":         gift.URL,
			"price":       gift.Price,
			"sale_price":  gift.SalePrice,
			"quantity":    gift.Quantity,
			"status":      gift.Status,
			"priority":    gift.Priority,
			"store_id":    gift.StoreID,
			"updated_at":  gift.UpdatedAt,
		}).Error
}

func (r *PostgresRepository) DeleteGift(ctx context.Context, groupID, giftID string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&giftsdomain.Gift{}, "group_id = ? AND id = ?", groupID, giftID)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) CountGiftsByStatus(ctx context.Context, groupID string) (map[string]int64, error) {
	var rows []struct {
		Status string `gorm:"column:status"`
		Total  int64  `gorm:"column:total"`
	}

	if err := r.db.WithContext(ctx).
		Model(&giftsdomain.Gift{}).
		Select("status, count(*) as total").
		Where("group_id = ?", groupID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *PostgresRepository) GetTagIDsByGiftIDs(ctx context.Context, giftIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(giftIDs))
	if len(giftIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		GiftID string `gorm:"column:gift_id"`
		TagID  string `gorm:"column:tag_id"`
	}

	if err := r.db.WithContext(ctx).
		Table("gift_tags").
		Where("gift_id IN ?", giftIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.GiftID] = append(result[row.GiftID], row.TagID)
	}

	return result, nil
}

func (r *PostgresRepository) GetRecipientIDsByGiftIDs(ctx context.Context, giftIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(giftIDs))
	if len(giftIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		GiftID   string `gorm:"column:gift_id"`
		PersonID string `gorm:"column:person_id"`
	}

	if err := r.db.WithContext(ctx).
		Table("gift_recipients").
		Where("gift_id IN ?", giftIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.GiftID] = append(result[row.GiftID], row.PersonID)
	}

	return result, nil
}

func (r *PostgresRepository) ReplaceGiftTags(ctx context.Context, giftID string, tagIDs []string) error {
	if err := r.db.WithContext(ctx).Where("gift_id = ?", giftID).Delete(&giftsdomain.GiftTag{}).Error; err != nil {
		return err
	}

	if len(tagIDs) == 0 {
		return nil
	}

	links := make([]giftsdomain.GiftTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		links = append(links, giftsdomain.GiftTag{GiftID: giftID, TagID: tagID})
	}
	return r.db.WithContext(ctx).Create(&links).Error
}

func (r *PostgresRepository) ReplaceGiftRecipients(ctx context.Context, giftID string, personIDs []string) error {
	if err := r.db.WithContext(ctx).Where("gift_id = ?", giftID).Delete(&giftsdomain.GiftRecipient{}).Error; err != nil {
		return err
	}

	if len(personIDs) == 0 {
		return nil
	}

	links := make([]giftsdomain.GiftRecipient, 0, len(personIDs))
	for _, personID := range personIDs {
		links = append(links, giftsdomain.GiftRecipient{GiftID: giftID, PersonID: personID})
	}
	return r.db.WithContext(ctx).Create(&links).Error
}

func (r *PostgresRepository) ListTags(ctx context.Context, groupID string) ([]giftsdomain.Tag, error) {
	var tags []giftsdomain.Tag
	if err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("name asc").
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *PostgresRepository) GetTagByID(ctx context.Context, groupID, tagID string) (*giftsdomain.Tag, error) {
	var tag giftsdomain.Tag
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND id = ?", groupID, tagID).
		First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, giftsdomain.ErrTagNotFound
		}
		return nil, err
	}
	return &tag, nil
}

func (r *PostgresRepository) CreateTag(ctx context.Context, tag *giftsdomain.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *PostgresRepository) UpdateTag(ctx context.Context, tag *giftsdomain.Tag) error {
	return r.db.WithContext(ctx).
		Model(&giftsdomain.Tag{}).
		Where("id = ? AND group_id = ?", tag.ID, tag.GroupID).
		Updates(map[string]interface{}{
			"name":  tag.Name,
			"color": tag.Color,
		}).Error
}

func (r *PostgresRepository) DeleteTag(ctx context.Context, groupID, tagID string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&giftsdomain.Tag{}, "group_id = ? AND id = ?", groupID, tagID)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) CountTagsByIDs(ctx context.Context, groupID string, tagIDs []string) (int64, error) {
	if len(tagIDs) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&giftsdomain.Tag{}).
		Where("group_id = ? AND id IN ?", groupID, tagIDs).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) CountTagsByName(ctx context.Context, groupID, name, excludeID string) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&giftsdomain.Tag{}).
		Where("group_id = ? AND lower(name) = lower(?)", groupID, name)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) CountGiftTagsByTagID(ctx context.Context, tagID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&giftsdomain.GiftTag{}).
		Where("tag_id = ?", tagID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) ListStores(ctx context.Context, groupID string) ([]giftsdomain.Store, error) {
	var stores []giftsdomain.Store
	if err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("name asc").
		Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

func (r *PostgresRepository) GetStoreByID(ctx context.Context, groupID, storeID string) (*giftsdomain.Store, error) {
	var store giftsdomain.Store
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND id = ?", groupID, storeID).
		First(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, giftsdomain.ErrStoreNotFound
		}
		return nil, err
	}
	return &store, nil
}

func (r *PostgresRepository) CreateStore(ctx context.Context, store *giftsdomain.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}

func (r *PostgresRepository) UpdateStore(ctx context.Context, store *giftsdomain.Store) error {
	return r.db.WithContext(ctx).
		Model(&giftsdomain.Store{}).
		Where("id = ? AND group_id = ?", store.ID, store.GroupID).
		Updates(map[string]interface{}{
			"name": store.Name,
			"url":  store.URL,
		}).Error
}

func (r *PostgresRepository) DeleteStore(ctx context.Context, groupID, storeID string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&giftsdomain.Store{}, "group_id = ? AND id = ?", groupID, storeID)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) CountPeopleByIDs(ctx context.Context, groupID string, personIDs []string) (int64, error) {
	if len(personIDs) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Table("people").
		Where("group_id = ? AND id IN ?", groupID, personIDs).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
