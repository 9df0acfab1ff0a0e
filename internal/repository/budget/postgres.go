package budget

import (
	"context"
	"errors"

	budgetdomain "giftboard/internal/domain/budget"
	"giftboard/internal/domain/lists"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(budgetdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetOccasionBudget(ctx context.Context, groupID, occasionID string) (*decimal.Decimal, error) {
	var row struct {
		BudgetTotal *decimal.Decimal `gorm:"column:budget_total"`
	}
	err := r.db.WithContext(ctx).
		Table("occasions").
		Select("budget_total").
		Where("group_id = ? AND id = ?", groupID, occasionID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, budgetdomain.ErrOccasionNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.BudgetTotal, nil
}

// lineRow mirrors the pricing columns of list_items for scan targets.
type lineRow struct {
	Status        string           `gorm:"column:status"`
	Price         *decimal.Decimal `gorm:"column:price"`
	DiscountPrice *decimal.Decimal `gorm:"column:discount_price"`
	Quantity      int              `gorm:"column:quantity"`
}

func toLines(rows []lineRow) []budgetdomain.Line {
	result := make([]budgetdomain.Line, 0, len(rows))
	for _, row := range rows {
		result = append(result, budgetdomain.Line{
			Status:        lists.Status(row.Status),
			Price:         row.Price,
			DiscountPrice: row.DiscountPrice,
			Quantity:      row.Quantity,
		})
	}
	return result
}

func (r *PostgresRepository) ListOccasionLines(ctx context.Context, occasionID string) ([]budgetdomain.Line, error) {
	var rows []lineRow
	if err := r.db.WithContext(ctx).
		Table("list_items").
		Select("list_items.status, list_items.price, list_items.discount_price, list_items.quantity").
		Joins("join lists on lists.id = list_items.list_id").
		Where("lists.occasion_id = ?", occasionID).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toLines(rows), nil
}

func (r *PostgresRepository) ListListLines(ctx context.Context, groupID, listID string) ([]budgetdomain.Line, error) {
	var rows []lineRow
	if err := r.db.WithContext(ctx).
		Table("list_items").
		Select("list_items.status, list_items.price, list_items.discount_price, list_items.quantity").
		Joins("join lists on lists.id = list_items.list_id").
		Where("lists.group_id = ? AND list_items.list_id = ?", groupID, listID).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toLines(rows), nil
}

func (r *PostgresRepository) ListGiftLines(ctx context.Context, occasionID, giftID string) ([]budgetdomain.Line, error) {
	var rows []lineRow
	if err := r.db.WithContext(ctx).
		Table("list_items").
		Select("list_items.status, list_items.price, list_items.discount_price, list_items.quantity").
		Joins("join lists on lists.id = list_items.list_id").
		Where("lists.occasion_id = ? AND list_items.gift_id = ?", occasionID, giftID).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toLines(rows), nil
}

func (r *PostgresRepository) UpsertEntityBudget(ctx context.Context, entityBudget *budgetdomain.EntityBudget) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "occasion_id"}, {Name: "entity_kind"}, {Name: "entity_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"amount":     entityBudget.Amount,
				"updated_at": entityBudget.UpdatedAt,
			}),
		}).
		Create(entityBudget).Error
}

func (r *PostgresRepository) ListEntityBudgets(ctx context.Context, occasionID string) ([]budgetdomain.EntityBudget, error) {
	var rows []budgetdomain.EntityBudget
	if err := r.db.WithContext(ctx).
		Where("occasion_id = ?", occasionID).
		Order("entity_kind asc, created_at asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PostgresRepository) GetEntityBudget(ctx context.Context, occasionID string, ref budgetdomain.EntityRef) (*budgetdomain.EntityBudget, error) {
	var row budgetdomain.EntityBudget
	err := r.db.WithContext(ctx).
		Where("occasion_id = ? AND entity_kind = ? AND entity_id = ?", occasionID, ref.Kind, ref.ID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, budgetdomain.ErrBudgetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *PostgresRepository) DeleteEntityBudget(ctx context.Context, occasionID string, ref budgetdomain.EntityRef) (bool, error) {
	result := r.db.WithContext(ctx).
		Delete(&budgetdomain.EntityBudget{}, "occasion_id = ? AND entity_kind = ? AND entity_id = ?", occasionID, ref.Kind, ref.ID)
	return result.RowsAffected > 0, result.Error
}
