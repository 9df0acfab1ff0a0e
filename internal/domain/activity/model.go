package activity

import "time"

// Entry is one row in the group's activity feed. Detail carries a small
// JSON object with action-specific context (names, old/new values).
type Entry struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	GroupID    string    `gorm:"type:uuid;not null;index:idx_activity_group_created,priority:1"`
	ActorID    string    `gorm:"type:uuid;not null"`
	Action     string    `gorm:"type:varchar(64);not null"`
	EntityKind string    `gorm:"type:varchar(32);not null"`
	EntityID   string    `gorm:"type:uuid;not null"`
	Detail     string    `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt  time.Time `gorm:"index:idx_activity_group_created,priority:2,sort:desc"`
}

func (Entry) TableName() string {
	return "activity_log"
}

type RecordInput struct {
	GroupID    string
	ActorID    string
	Action     string
	EntityKind string
	EntityID   string
	Detail     any
}

type ListFilter struct {
	Limit  int
	Offset int
}
