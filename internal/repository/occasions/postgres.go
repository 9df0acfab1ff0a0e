package occasions

import (
	"context"
	"errors"

	occasionsdomain "giftboard/internal/domain/occasions"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByGroup(ctx context.Context, groupID string, filter occasionsdomain.OccasionFilter) ([]occasionsdomain.Occasion, int64, error) {
	query := r.db.WithContext(ctx).Model(&occasionsdomain.Occasion{}).Where("group_id = ?", groupID)
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("date asc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var result []occasionsdomain.Occasion
	if err := query.Find(&result).Error; err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, groupID, occasionID string) (*occasionsdomain.Occasion, error) {
	var occasion occasionsdomain.Occasion
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND id = ?", groupID, occasionID).
		First(&occasion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, occasionsdomain.ErrOccasionNotFound
		}
		return nil, err
	}
	return &occasion, nil
}

func (r *PostgresRepository) Create(ctx context.Context, occasion *occasionsdomain.Occasion) error {
	return r.db.WithContext(ctx).Create(occasion).Error
}

func (r *PostgresRepository) Update(ctx context.Context, occasion *occasionsdomain.Occasion) error {
	return r.db.WithContext(ctx).
		Model(&occasionsdomain.Occasion{}).
		Where("id = ? AND group_id = ?", occasion.ID, occasion.GroupID).
		Updates(map[string]interface{}{
			"name":         occasion.Name,
			"kind":         occasion.Kind,
			"date":         occasion.Date,
			"budget_total": occasion.BudgetTotal,
			"updated_at":   occasion.UpdatedAt,
		}).Error
}

func (r *PostgresRepository) Delete(ctx context.Context, groupID, occasionID string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&occasionsdomain.Occasion{}, "group_id = ? AND id = ?", groupID, occasionID)
	return result.RowsAffected > 0, result.Error
}
