package people

import "time"

// Person is a gift recipient tracked by the group. People are plain
// records, they do not log in; group members link gifts and lists to
// them.
type Person struct {
	ID        string     `gorm:"type:uuid;primaryKey"`
	GroupID   string     `gorm:"type:uuid;index;not null"`
	Name      string     `gorm:"not null"`
	Birthday  *time.Time `gorm:"type:date"`
	Notes     string     `gorm:"not null;default:''"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}

type CreatePersonInput struct {
	GroupID  string
	Name     string
	Birthday *time.Time
	Notes    string
}

type UpdatePersonInput struct {
	ID       string
	GroupID  string
	Name     *string
	Birthday OptionalNullableTime
	Notes    *string
}

type OptionalNullableTime struct {
	Set   bool
	Value *time.Time
}
