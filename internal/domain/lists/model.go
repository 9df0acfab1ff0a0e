package lists

import (
	"time"

	"github.com/shopspring/decimal"
)

type List struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	GroupID    string    `gorm:"type:uuid;index;not null"`
	Name       string    `gorm:"not null"`
	PersonID   *string   `gorm:"type:uuid;index"`
	OccasionID *string   `gorm:"type:uuid;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

type ListItem struct {
	ID            string           `gorm:"type:uuid;primaryKey"`
	ListID        string           `gorm:"type:uuid;index;not null;uniqueIndex:uq_list_items_gift_list,priority:2"`
	GiftID        string           `gorm:"type:uuid;not null;uniqueIndex:uq_list_items_gift_list,priority:1"`
	Status        Status           `gorm:"type:varchar(16);not null;default:'idea'"`
	AssignedTo    *string          `gorm:"type:uuid"`
	Notes         string           `gorm:"not null;default:''"`
	Price         *decimal.Decimal `gorm:"type:numeric(12,2)"`
	DiscountPrice *decimal.Decimal `gorm:"type:numeric(12,2)"`
	Quantity      int              `gorm:"not null;default:1"`
	CreatedAt     time.Time        `gorm:"autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"autoUpdateTime"`
}

type ItemCounts struct {
	Total     int64
	Purchased int64
}

type GiftPricing struct {
	Price     *decimal.Decimal
	SalePrice *decimal.Decimal
}

type ListOverview struct {
	List   List
	Counts ItemCounts
}

type ListWithItems struct {
	List  List
	Items []ListItem
}

type ListFilter struct {
	PersonID   *string
	OccasionID *string
	Limit      int
	Offset     int
}

type CreateListInput struct {
	GroupID    string
	Name       string
	PersonID   *string
	OccasionID *string
}

type UpdateListInput struct {
	ID         string
	GroupID    string
	Name       *string
	PersonID   OptionalNullableString
	OccasionID OptionalNullableString
}

type AddItemInput struct {
	GroupID       string
	ListID        string
	GiftID        string
	Notes         string
	Price         *decimal.Decimal
	DiscountPrice *decimal.Decimal
	Quantity      int
}

type UpdateItemInput struct {
	ID            string
	GroupID       string
	Notes         *string
	Price         OptionalNullableDecimal
	DiscountPrice OptionalNullableDecimal
	Quantity      *int
}

type OptionalNullableString struct {
	Set   bool
	Value *string
}

type OptionalNullableDecimal struct {
	Set   bool
	Value *decimal.Decimal
}
