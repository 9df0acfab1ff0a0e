package activity

import (
	"context"

	activitydomain "giftboard/internal/domain/activity"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByGroup(ctx context.Context, groupID string, filter activitydomain.ListFilter) ([]activitydomain.Entry, int64, error) {
	query := r.db.WithContext(ctx).Model(&activitydomain.Entry{}).Where("group_id = ?", groupID)

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

	var entries []activitydomain.Entry
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *PostgresRepository) Create(ctx context.Context, entry *activitydomain.Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
