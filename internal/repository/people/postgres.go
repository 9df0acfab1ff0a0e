package people

import (
	"context"
	"errors"

	peopledomain "giftboard/internal/domain/people"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByGroup(ctx context.Context, groupID string) ([]peopledomain.Person, error) {
	var result []peopledomain.Person
	if err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("name asc").
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, groupID, personID string) (*peopledomain.Person, error) {
	var person peopledomain.Person
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND id = ?", groupID, personID).
		First(&person).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, peopledomain.ErrPersonNotFound
		}
		return nil, err
	}
	return &person, nil
}

func (r *PostgresRepository) Create(ctx context.Context, person *peopledomain.Person) error {
	return r.db.WithContext(ctx).Create(person).Error
}

func (r *PostgresRepository) Update(ctx context.Context, person *peopledomain.Person) error {
	return r.db.WithContext(ctx).
		Model(&peopledomain.Person{}).
		Where("id = ? AND group_id = ?", person.ID, person.GroupID).
		Updates(map[string]interface{}{
			"name":       person.Name,
			"birthday":   person.Birthday,
			"notes":      person.Notes,
			"updated_at": person.UpdatedAt,
		}).Error
}

func (r *PostgresRepository) Delete(ctx context.Context, groupID, personID string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&peopledomain.Person{}, "group_id = ? AND id = ?", groupID, personID)
	return result.RowsAffected > 0, result.Error
}
