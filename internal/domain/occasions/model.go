package occasions

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindBirthday    = "birthday"
	KindChristmas   = "christmas"
	KindAnniversary = "anniversary"
	KindHoliday     = "holiday"
	KindOther       = "other"
)

var validKinds = map[string]struct{}{
	KindBirthday:    {},
	KindChristmas:   {},
	KindAnniversary: {},
	KindHoliday:     {},
	KindOther:       {},
}

func ValidKind(kind string) bool {
	_, ok := validKinds[kind]
	return ok
}

// Occasion is a dated gifting event, optionally carrying an overall
// budget that the meter endpoints report against.
type Occasion struct {
	ID          string           `gorm:"type:uuid;primaryKey"`
	GroupID     string           `gorm:"type:uuid;index;not null"`
	Name        string           `gorm:"not null"`
	Kind        string           `gorm:"type:varchar(16);not null;default:'other'"`
	Date        time.Time        `gorm:"type:date;not null;index"`
	BudgetTotal *decimal.Decimal `gorm:"type:numeric(12,2)"`
	CreatedAt   time.Time        `gorm:"autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime"`
}

type CreateOccasionInput struct {
	GroupID     string
	Name        string
	Kind        string
	Date        time.Time
	BudgetTotal *decimal.Decimal
}

type UpdateOccasionInput struct {
	ID          string
	GroupID     string
	Name        *string
	Kind        *string
	Date        *time.Time
	BudgetTotal OptionalNullableDecimal
}

type OccasionFilter struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

type OptionalNullableDecimal struct {
	Set   bool
	Value *decimal.Decimal
}
