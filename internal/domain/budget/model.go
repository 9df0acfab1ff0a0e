package budget

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"giftboard/internal/domain/lists"
)

// EntityKind names the kind of entity a budget cap is attached to.
type EntityKind string

const (
	EntityGift EntityKind = "gift"
	EntityList EntityKind = "list"
)

func (k EntityKind) Valid() bool {
	return k == EntityGift || k == EntityList
}

// EntityRef identifies a budgetable entity within an occasion.
type EntityRef struct {
	Kind EntityKind
	ID   string
}

func (r EntityRef) Validate() error {
	if !r.Kind.Valid() {
		return ErrInvalidEntityKind
	}
	if r.ID == "" {
		return fmt.Errorf("entity id is required")
	}
	return nil
}

// EntityBudget caps spending for one gift or list within an occasion.
// At most one row exists per (occasion, kind, id) target.
type EntityBudget struct {
	ID         string          `gorm:"type:uuid;primaryKey"`
	OccasionID string          `gorm:"type:uuid;not null;uniqueIndex:uq_entity_budgets_target,priority:1"`
	EntityKind EntityKind      `gorm:"type:varchar(16);not null;uniqueIndex:uq_entity_budgets_target,priority:2"`
	EntityID   string          `gorm:"type:uuid;not null;uniqueIndex:uq_entity_budgets_target,priority:3"`
	Amount     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime"`
}

func (EntityBudget) TableName() string {
	return "entity_budgets"
}

func (b *EntityBudget) Ref() EntityRef {
	return EntityRef{Kind: b.EntityKind, ID: b.EntityID}
}

// Line is the pricing view of a single list item, the unit all
// budget math is computed from.
type Line struct {
	Status        lists.Status
	Price         *decimal.Decimal
	DiscountPrice *decimal.Decimal
	Quantity      int
}

// Totals holds spending grouped by commitment: Purchased covers items
// already bought (purchased or received), Planned covers the rest.
type Totals struct {
	Purchased decimal.Decimal
	Planned   decimal.Decimal
}

func (t Totals) Committed() decimal.Decimal {
	return t.Purchased.Add(t.Planned)
}

// Summary is the budget meter for one occasion or one budgeted entity.
// BudgetTotal and Remaining are nil when no budget has been set.
type Summary struct {
	BudgetTotal      *decimal.Decimal
	PurchasedAmount  decimal.Decimal
	PlannedAmount    decimal.Decimal
	Remaining        *decimal.Decimal
	PurchasedPercent decimal.Decimal
	PlannedPercent   decimal.Decimal
	RemainingPercent decimal.Decimal
	IsOverBudget     bool
}

// EntitySummary pairs an entity with its budget meter. The summary's
// BudgetTotal carries the allocated cap, nil when none was set.
type EntitySummary struct {
	Ref     EntityRef
	Summary Summary
}

// OccasionSummary is the full meter for an occasion: the occasion-wide
// summary plus one sub-summary per budgeted entity.
type OccasionSummary struct {
	OccasionID string
	Summary    Summary
	Entities   []EntitySummary
}
