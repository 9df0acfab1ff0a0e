package comments

import (
	"context"
	"errors"

	commentsdomain "giftboard/internal/domain/comments"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByParent(ctx context.Context, groupID string, parent commentsdomain.ParentRef, filter commentsdomain.ListFilter) ([]commentsdomain.Comment, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&commentsdomain.Comment{}).
		Where("group_id = ? AND parent_kind = ? AND parent_id = ?", groupID, parent.Kind, parent.ID)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at asc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var items []commentsdomain.Comment
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, groupID, commentID string) (*commentsdomain.Comment, error) {
	var comment commentsdomain.Comment
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND id = ?", groupID, commentID).
		First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commentsdomain.ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

func (r *PostgresRepository) Create(ctx context.Context, comment *commentsdomain.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *PostgresRepository) Delete(ctx context.Context, commentID string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&commentsdomain.Comment{}, "id = ?", commentID)
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) ParentExists(ctx context.Context, groupID string, parent commentsdomain.ParentRef) (bool, error) {
	table, ok := parentTables[parent.Kind]
	if !ok {
		return false, commentsdomain.ErrInvalidParentKind
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Table(table).
		Where("group_id = ? AND id = ?", groupID, parent.ID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var parentTables = map[commentsdomain.ParentKind]string{
	commentsdomain.ParentGift:     "gifts",
	commentsdomain.ParentList:     "lists",
	commentsdomain.ParentPerson:   "people",
	commentsdomain.ParentOccasion: "occasions",
}
