package groups

import (
	"context"
	"errors"
	"time"

	groupsdomain "giftboard/internal/domain/groups"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(groupsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetGroupByUser(ctx context.Context, userID string) (*groupsdomain.Group, error) {
	var group groupsdomain.Group
	err := r.db.WithContext(ctx).
		Table("groups").
		Joins("join group_members on group_members.group_id = groups.id").
		Where("group_members.user_id = ?", userID).
		Limit(1).
		First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, groupsdomain.ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *PostgresRepository) GetGroupByCode(ctx context.Context, code string) (*groupsdomain.Group, error) {
	var group groupsdomain.Group
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, groupsdomain.ErrGroupCodeNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (r *PostgresRepository) GetMemberByUser(ctx context.Context, userID string) (*groupsdomain.GroupMember, error) {
	var member groupsdomain.GroupMember
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, groupsdomain.ErrGroupNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *PostgresRepository) GetMember(ctx context.Context, groupID, userID string) (*groupsdomain.GroupMember, error) {
	var member groupsdomain.GroupMember
	if err := r.db.WithContext(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, groupsdomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context, groupID string) ([]groupsdomain.GroupMember, error) {
	var members []groupsdomain.GroupMember
	if err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("joined_at asc").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *PostgresRepository) ListMembersWithProfiles(ctx context.Context, groupID string) ([]groupsdomain.MemberProfile, error) {
	type memberRow struct {
		UserID   string    `gorm:"column:user_id"`
		Role     string    `gorm:"column:role"`
		JoinedAt time.Time `gorm:"column:joined_at"`
		Name     string    `gorm:"column:name"`
		Email    string    `gorm:"column:email"`
	}

	var rows []memberRow
	if err := r.db.WithContext(ctx).
		Table("group_members").
		Select("group_members.user_id, group_members.role, group_members.joined_at, users.name, users.email").
		Joins("left join users on users.id = group_members.user_id").
		Where("group_members.group_id = ?", groupID).
		Order("group_members.joined_at asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	members := make([]groupsdomain.MemberProfile, 0, len(rows))
	for _, row := range rows {
		members = append(members, groupsdomain.MemberProfile{
			UserID:   row.UserID,
			Name:     row.Name,
			Email:    row.Email,
			Role:     row.Role,
			JoinedAt: row.JoinedAt,
		})
	}
	return members, nil
}

func (r *PostgresRepository) CreateGroup(ctx context.Context, group *groupsdomain.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *PostgresRepository) AddMember(ctx context.Context, member *groupsdomain.GroupMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *PostgresRepository) UpdateGroupName(ctx context.Context, groupID, name string) error {
	return r.db.WithContext(ctx).Model(&groupsdomain.Group{}).Where("id = ?", groupID).Update("name", name).Error
}

func (r *PostgresRepository) UpdateGroupOwner(ctx context.Context, groupID, ownerID string) error {
	return r.db.WithContext(ctx).Model(&groupsdomain.Group{}).Where("id = ?", groupID).Update("owner_id", ownerID).Error
}

func (r *PostgresRepository) UpdateMemberRole(ctx context.Context, groupID, userID, role string) error {
	return r.db.WithContext(ctx).Model(&groupsdomain.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("role", role).Error
}

func (r *PostgresRepository) DeleteMember(ctx context.Context, groupID, userID string) error {
	return r.db.WithContext(ctx).Delete(&groupsdomain.GroupMember{}, "group_id = ? AND user_id = ?", groupID, userID).Error
}

func (r *PostgresRepository) CountMembers(ctx context.Context, groupID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&groupsdomain.GroupMember{}).Where("group_id = ?", groupID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) IsUserInGroup(ctx context.Context, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&groupsdomain.GroupMember{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&groupsdomain.Group{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
