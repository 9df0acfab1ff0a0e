package gifts

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

const (
	MinPriority = 0
	MaxPriority = 5
)

type Gift struct {
	ID          string           `gorm:"type:uuid;primaryKey"`
	GroupID     string           `gorm:"type:uuid;index;not null"`
	Name        string           `gorm:"not null"`
	Description string           `gorm:"not null;default:''"`
	URL         string           `gorm:"not null;default:''"`
	Price       *decimal.Decimal `gorm:"type:numeric(12,2)"`
	SalePrice   *decimal.Decimal `gorm:"type:numeric(12,2)"`
	Quantity    int              `gorm:"not null;default:1"`
	Status      string           `gorm:"not null;default:'active'"`
	Priority    int              `gorm:"not null;default:0"`
	StoreID     *string          `gorm:"type:uuid;index"`
	CreatedAt   time.Time        `gorm:"autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime"`
}

type Store struct {
	ID      string `gorm:"type:uuid;primaryKey"`
	GroupID string `gorm:"type:uuid;index;not null"`
	Name    string `gorm:"not null"`
	URL     string `gorm:"not null;default:''"`
}

type Tag struct {
	ID      string  `gorm:"type:uuid;primaryKey"`
	GroupID string  `gorm:"type:uuid;index;not null"`
	Name    string  `gorm:"not null"`
	Color   *string `gorm:"type:text"`
}

type GiftTag struct {
	GiftID string `gorm:"type:uuid;primaryKey"`
	TagID  string `gorm:"type:uuid;primaryKey"`
}

type GiftRecipient struct {
	GiftID   string `gorm:"type:uuid;primaryKey"`
	PersonID string `gorm:"type:uuid;primaryKey"`
}

type GiftWithLinks struct {
	Gift
	TagIDs       []string
	RecipientIDs []string
}

type GiftFilter struct {
	Status   *string
	TagID    *string
	PersonID *string
	StoreID  *string
	Limit    int
	Offset   int
}

type CreateGiftInput struct {
	GroupID      string
	Name         string
	Description  string
	URL          string
	Price        *decimal.Decimal
	SalePrice    *decimal.Decimal
	Quantity     int
	Priority     int
	StoreID      *string
	TagIDs       []string
	RecipientIDs []string
}

type UpdateGiftInput struct {
	ID           string
	GroupID      string
	Name         *string
	Description  *string
	URL          *string
	Price        OptionalNullableDecimal
	SalePrice    OptionalNullableDecimal
	Quantity     *int
	Status       *string
	Priority     *int
	StoreID      OptionalNullableString
	TagIDs       OptionalStringSlice
	RecipientIDs OptionalStringSlice
}

type CreateTagInput struct {
	GroupID string
	Name    string
	Color   *string
}

type UpdateTagInput struct {
	GroupID string
	TagID   string
	Name    string
	Color   OptionalNullableString
}

type CreateStoreInput struct {
	GroupID string
	Name    string
	URL     string
}

type UpdateStoreInput struct {
	GroupID string
	StoreID string
	Name    *string
	URL     *string
}

type OptionalNullableString struct {
	Set   bool
	Value *string
}

type OptionalNullableDecimal struct {
	Set   bool
	Value *decimal.Decimal
}

type OptionalStringSlice struct {
	Set    bool
	Values []string
}
