package comments

import "time"

// ParentKind names the kind of entity a comment thread hangs off.
type ParentKind string

const (
	ParentGift     ParentKind = "gift"
	ParentList     ParentKind = "list"
	ParentPerson   ParentKind = "person"
	ParentOccasion ParentKind = "occasion"
)

func (k ParentKind) Valid() bool {
	switch k {
	case ParentGift, ParentList, ParentPerson, ParentOccasion:
		return true
	}
	return false
}

// ParentRef identifies the entity a comment is attached to.
type ParentRef struct {
	Kind ParentKind
	ID   string
}

func (r ParentRef) Validate() error {
	if !r.Kind.Valid() {
		return ErrInvalidParentKind
	}
	if r.ID == "" {
		return ErrInvalidParentKind
	}
	return nil
}

type Comment struct {
	ID         string     `gorm:"type:uuid;primaryKey"`
	GroupID    string     `gorm:"type:uuid;index;not null"`
	ParentKind ParentKind `gorm:"type:varchar(16);not null;index:idx_comments_parent,priority:1"`
	ParentID   string     `gorm:"type:uuid;not null;index:idx_comments_parent,priority:2"`
	AuthorID   string     `gorm:"type:uuid;not null"`
	Body       string     `gorm:"not null"`
	CreatedAt  time.Time  `gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime"`
}

type CreateCommentInput struct {
	GroupID  string
	Parent   ParentRef
	AuthorID string
	Body     string
}

type ListFilter struct {
	Limit  int
	Offset int
}
