package dashboard

import (
	"context"
	"time"

	activitydomain "giftboard/internal/domain/activity"
	budgetdomain "giftboard/internal/domain/budget"
	"giftboard/internal/domain/lists"
	occasionsdomain "giftboard/internal/domain/occasions"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) UpcomingOccasions(ctx context.Context, groupID string, from, to time.Time, limit int) ([]occasionsdomain.Occasion, error) {
	var result []occasionsdomain.Occasion
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND date >= ? AND date <= ?", groupID, from, to).
		Order("date asc").
		Limit(limit).
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) OccasionLines(ctx context.Context, occasionID string) ([]budgetdomain.Line, error) {
	var rows []struct {
		Status        string           `gorm:"column:status"`
		Price         *decimal.Decimal `gorm:"column:price"`
		DiscountPrice *decimal.Decimal `gorm:"column:discount_price"`
		Quantity      int              `gorm:"column:quantity"`
	}

	if err := r.db.WithContext(ctx).
		Table("list_items").
		Select("list_items.status, list_items.price, list_items.discount_price, list_items.quantity").
		Joins("join lists on lists.id = list_items.list_id").
		Where("lists.occasion_id = ?", occasionID).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]budgetdomain.Line, 0, len(rows))
	for _, row := range rows {
		result = append(result, budgetdomain.Line{
			Status:        lists.Status(row.Status),
			Price:         row.Price,
			DiscountPrice: row.DiscountPrice,
			Quantity:      row.Quantity,
		})
	}
	return result, nil
}

func (r *PostgresRepository) RecentActivity(ctx context.Context, groupID string, limit int) ([]activitydomain.Entry, error) {
	var entries []activitydomain.Entry
	if err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at desc").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *PostgresRepository) GiftStatusCounts(ctx context.Context, groupID string) (map[string]int64, error) {
	var rows []struct {
		Status string `gorm:"column:status"`
		Total  int64  `gorm:"column:total"`
	}

	if err := r.db.WithContext(ctx).
		Table("gifts").
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
