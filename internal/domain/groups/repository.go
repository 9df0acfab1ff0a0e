package groups

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	GetGroupByUser(ctx context.Context, userID string) (*Group, error)
	GetGroupByCode(ctx context.Context, code string) (*Group, error)
	GetMemberByUser(ctx context.Context, userID string) (*GroupMember, error)
	GetMember(ctx context.Context, groupID, userID string) (*GroupMember, error)
	ListMembers(ctx context.Context, groupID string) ([]GroupMember, error)
	ListMembersWithProfiles(ctx context.Context, groupID string) ([]MemberProfile, error)
	CreateGroup(ctx context.Context, group *Group) error
	AddMember(ctx context.Context, member *GroupMember) error
	UpdateGroupName(ctx context.Context, groupID, name string) error
	UpdateGroupOwner(ctx context.Context, groupID, ownerID string) error
	UpdateMemberRole(ctx context.Context, groupID, userID, role string) error
	DeleteMember(ctx context.Context, groupID, userID string) error
	CountMembers(ctx context.Context, groupID string) (int64, error)
	IsUserInGroup(ctx context.Context, userID string) (bool, error)
	IsCodeTaken(ctx context.Context, code string) (bool, error)
}
