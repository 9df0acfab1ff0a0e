package lists

import (
	"context"
	"errors"

	listsdomain "giftboard/internal/domain/lists"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(listsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) ListLists(ctx context.Context, groupID string, filter listsdomain.ListFilter) ([]listsdomain.List, int64, error) {
	query := r.db.WithContext(ctx).Model(&listsdomain.List{}).Where("group_id = ?", groupID)
	if filter.PersonID != nil {
		query = query.Where("person_id = ?", *filter.PersonID)
	}
	if filter.OccasionID != nil {
		query = query.Where("occasion_id = ?", *filter.OccasionID)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at desc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var items []listsdomain.List
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostgresRepository) GetListByID(ctx context.Context, groupID, listID string) (*listsdomain.List, error) {
	var list listsdomain.List
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND id = ?", groupID, listID).
		First(&list).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, listsdomain.ErrListNotFound
		}
		return nil, err
	}
	return &list, nil
}

func (r *PostgresRepository) CreateList(ctx context.Context, list *listsdomain.List) error {
	return r.db.WithContext(ctx).Create(list).Error
}

func (r *PostgresRepository) UpdateList(ctx context.Context, list *listsdomain.List) error {
	return r.db.WithContext(ctx).
		Model(&listsdomain.List{}).
		Where("id = ? AND group_id = ?", list.ID, list.GroupID).
		Updates(map[string]interface{}{
			"name":        list.Name,
			"person_id":   list.PersonID,
			"occasion_id": list.OccasionID,
			"updated_at":  list.UpdatedAt,
		}).Error
}

func (r *PostgresRepository) DeleteList(ctx context.Context, groupID, listID string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&listsdomain.List{}, "group_id = ? AND id = ?", groupID, listID)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) CountItemsByListIDs(ctx context.Context, listIDs []string) (map[string]listsdomain.ItemCounts, error) {
	result := make(map[string]listsdomain.ItemCounts, len(listIDs))
	if len(listIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		ListID    string `gorm:"column:list_id"`
		Total     int64  `gorm:"column:total"`
		Purchased int64  `gorm:"column:purchased"`
	}

	if err := r.db.WithContext(ctx).
		Table("list_items").
		Select("list_id, count(*) as total, count(*) filter (where status in ('purchased', 'received')) as purchased").
		Where("list_id IN ?", listIDs).
		Group("list_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.ListID] = listsdomain.ItemCounts{Total: row.Total, Purchased: row.Purchased}
	}
	return result, nil
}

func (r *PostgresRepository) ListItems(ctx context.Context, listID string) ([]listsdomain.ListItem, error) {
	var items []listsdomain.ListItem
	if err := r.db.WithContext(ctx).
		Where("list_id = ?", listID).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) GetItemByID(ctx context.Context, groupID, itemID string) (*listsdomain.ListItem, error) {
	var item listsdomain.ListItem
	err := r.db.WithContext(ctx).
		Table("list_items").
		Select("list_items.*").
		Joins("join lists on lists.id = list_items.list_id").
		Where("lists.group_id = ? AND list_items.id = ?", groupID, itemID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, listsdomain.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *PostgresRepository) GetGiftPricing(ctx context.Context, groupID, giftID string) (*listsdomain.GiftPricing, error) {
	var pricing listsdomain.GiftPricing
	err := r.db.WithContext(ctx).
		Table("gifts").
		Select("price, sale_price").
		Where("group_id = ? AND id = ?", groupID, giftID).
		Take(&pricing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, listsdomain.ErrGiftNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pricing, nil
}

func (r *PostgresRepository) CreateItem(ctx context.Context, item *listsdomain.ListItem) error {
	err := r.db.WithContext(ctx).Create(item).Error
	if isUniqueViolation(err) {
		return listsdomain.ErrDuplicateItem
	}
	// The list was read inside the same request, so a foreign key
	// failure here can only mean the gift is gone.
	if isForeignKeyViolation(err) {
		return listsdomain.ErrGiftNotFound
	}
	return err
}

func (r *PostgresRepository) UpdateItem(ctx context.Context, item *listsdomain.ListItem) error {
	err := r.db.WithContext(ctx).
		Model(&listsdomain.ListItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"status":         item.Status,
			"assigned_to":    item.AssignedTo,
			"notes":          item.Notes,
			"price":          item.Price,
			"discount_price": item.DiscountPrice,
			"quantity":       item.Quantity,
			"updated_at":     item.UpdatedAt,
		}).Error
	// assigned_to is the only updatable column with a foreign key.
	if isForeignKeyViolation(err) {
		return listsdomain.ErrAssigneeNotFound
	}
	return err
}

func (r *PostgresRepository) DeleteItem(ctx context.Context, itemID string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&listsdomain.ListItem{}, "id = ?", itemID)
	return result.RowsAffected > 0, result.Error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
