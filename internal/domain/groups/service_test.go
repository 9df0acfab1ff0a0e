package groups

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeGroupRepo struct {
	groups  map[string]*Group
	members map[string]*GroupMember
	codes   map[string]string
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{
		groups:  make(map[string]*Group),
		members: make(map[string]*GroupMember),
		codes:   make(map[string]string),
	}
}

func (r *fakeGroupRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeGroupRepo) GetGroupByUser(ctx context.Context, userID string) (*Group, error) {
	member, ok := r.members[userID]
	if !ok {
		return nil, ErrGroupNotFound
	}
	group, ok := r.groups[member.GroupID]
	if !ok {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

func (r *fakeGroupRepo) GetGroupByCode(ctx context.Context, code string) (*Group, error) {
	id, ok := r.codes[code]
	if !ok {
		return nil, ErrGroupCodeNotFound
	}
	group, ok := r.groups[id]
	if !ok {
		return nil, ErrGroupCodeNotFound
	}
	return group, nil
}

func (r *fakeGroupRepo) GetMemberByUser(ctx context.Context, userID string) (*GroupMember, error) {
	member, ok := r.members[userID]
	if !ok {
		return nil, ErrGroupNotFound
	}
	return member, nil
}

func (r *fakeGroupRepo) GetMember(ctx context.Context, groupID, userID string) (*GroupMember, error) {
	member, ok := r.members[userID]
	if !ok || member.GroupID != groupID {
		return nil, ErrMemberNotFound
	}
	return member, nil
}

func (r *fakeGroupRepo) ListMembers(ctx context.Context, groupID string) ([]GroupMember, error) {
	result := make([]GroupMember, 0)
	for _, member := range r.members {
		if member.GroupID == groupID {
			result = append(result, *member)
		}
	}
	return result, nil
}

func (r *fakeGroupRepo) ListMembersWithProfiles(ctx context.Context, groupID string) ([]MemberProfile, error) {
	members, _ := r.ListMembers(ctx, groupID)
	result := make([]MemberProfile, 0, len(members))
	for _, member := range members {
		result = append(result, MemberProfile{
			UserID:   member.UserID,
			Role:     member.Role,
			JoinedAt: member.JoinedAt,
		})
	}
	return result, nil
}

func (r *fakeGroupRepo) CreateGroup(ctx context.Context, group *Group) error {
	r.groups[group.ID] = group
	r.codes[group.Code] = group.ID
	return nil
}

func (r *fakeGroupRepo) AddMember(ctx context.Context, member *GroupMember) error {
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now().UTC()
	}
	r.members[member.UserID] = member
	return nil
}

func (r *fakeGroupRepo) UpdateGroupName(ctx context.Context, groupID, name string) error {
	group, ok := r.groups[groupID]
	if !ok {
		return ErrGroupNotFound
	}
	group.Name = name
	return nil
}

func (r *fakeGroupRepo) UpdateGroupOwner(ctx context.Context, groupID, ownerID string) error {
	group, ok := r.groups[groupID]
	if !ok {
		return ErrGroupNotFound
	}
	group.OwnerID = ownerID
	return nil
}

func (r *fakeGroupRepo) UpdateMemberRole(ctx context.Context, groupID, userID, role string) error {
	member, ok := r.members[userID]
	if !ok || member.GroupID != groupID {
		return ErrMemberNotFound
	}
	member.Role = role
	return nil
}

func (r *fakeGroupRepo) DeleteMember(ctx context.Context, groupID, userID string) error {
	member, ok := r.members[userID]
	if ok && member.GroupID == groupID {
		delete(r.members, userID)
	}
	return nil
}

func (r *fakeGroupRepo) CountMembers(ctx context.Context, groupID string) (int64, error) {
	var count int64
	for _, member := range r.members {
		if member.GroupID == groupID {
			count++
		}
	}
	return count, nil
}

func (r *fakeGroupRepo) IsUserInGroup(ctx context.Context, userID string) (bool, error) {
	_, ok := r.members[userID]
	return ok, nil
}

func (r *fakeGroupRepo) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	_, ok := r.codes[code]
	return ok, nil
}

func TestCreateGroupSuccess(t *testing.T) {
	repo := newFakeGroupRepo()
	svc := NewService(repo)

	result, err := svc.CreateGroup(context.Background(), "user-1", "  The Smiths  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Name != "The Smiths" {
		t.Fatalf("expected name trimmed, got %q", result.Name)
	}
	if result.OwnerID != "user-1" {
		t.Fatalf("expected owner user-1, got %q", result.OwnerID)
	}
	if len(result.Code) != 6 {
		t.Fatalf("expected code length 6, got %q", result.Code)
	}
	member, ok := repo.members["user-1"]
	if !ok {
		t.Fatalf("expected member created")
	}
	if member.Role != RoleOwner {
		t.Fatalf("expected owner role, got %q", member.Role)
	}
	if member.GroupID != result.ID {
		t.Fatalf("expected member group %s, got %s", result.ID, member.GroupID)
	}
}

func TestCreateGroupAlreadyInGroup(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.groups["grp-1"] = &Group{ID: "grp-1", Name: "Grp", Code: "AAAAAA", OwnerID: "owner"}
	repo.codes["AAAAAA"] = "grp-1"
	repo.members["user-1"] = &GroupMember{GroupID: "grp-1", UserID: "user-1", Role: RoleMember}

	svc := NewService(repo)
	_, err := svc.CreateGroup(context.Background(), "user-1", "Name")
	if !errors.Is(err, ErrAlreadyInGroup) {
		t.Fatalf("expected ErrAlreadyInGroup, got %v", err)
	}
}

func TestJoinGroupSuccess(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.groups["grp-1"] = &Group{ID: "grp-1", Name: "Grp", Code: "ZXCVBN", OwnerID: "owner"}
	repo.codes["ZXCVBN"] = "grp-1"

	svc := NewService(repo)
	result, err := svc.JoinGroup(context.Background(), "user-1", "zxcvbn")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.ID != "grp-1" {
		t.Fatalf("expected group grp-1, got %s", result.ID)
	}
	member := repo.members["user-1"]
	if member == nil || member.Role != RoleMember {
		t.Fatalf("expected member role, got %+v", member)
	}
}

func TestJoinGroupCodeNotFound(t *testing.T) {
	repo := newFakeGroupRepo()
	svc := NewService(repo)
	_, err := svc.JoinGroup(context.Background(), "user-1", "missing")
	if !errors.Is(err, ErrGroupCodeNotFound) {
		t.Fatalf("expected ErrGroupCodeNotFound, got %v", err)
	}
}

func TestLeaveGroupOwnerTransfers(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.groups["grp-1"] = &Group{ID: "grp-1", Name: "Grp", Code: "ZXCVBN", OwnerID: "owner"}
	repo.members["owner"] = &GroupMember{GroupID: "grp-1", UserID: "owner", Role: RoleOwner}
	repo.members["user-2"] = &GroupMember{GroupID: "grp-1", UserID: "user-2", Role: RoleMember}

	svc := NewService(repo)
	if err := svc.LeaveGroup(context.Background(), "owner"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.groups["grp-1"] == nil {
		t.Fatalf("group should not be deleted")
	}
	if repo.groups["grp-1"].OwnerID != "user-2" {
		t.Fatalf("expected owner reassigned to user-2, got %s", repo.groups["grp-1"].OwnerID)
	}
	member := repo.members["user-2"]
	if member == nil || member.Role != RoleOwner {
		t.Fatalf("expected user-2 to be owner, got %+v", member)
	}
	if _, ok := repo.members["owner"]; ok {
		t.Fatalf("expected owner membership deleted")
	}
}

func TestLeaveGroupOwnerTransfersToLongestStanding(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.groups["grp-1"] = &Group{ID: "grp-1", Name: "Grp", Code: "ZXCVBN", OwnerID: "owner"}
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.members["owner"] = &GroupMember{GroupID: "grp-1", UserID: "owner", Role: RoleOwner, JoinedAt: base}
	repo.members["late"] = &GroupMember{GroupID: "grp-1", UserID: "late", Role: RoleMember, JoinedAt: base.Add(2 * time.Hour)}
	repo.members["early"] = &GroupMember{GroupID: "grp-1", UserID: "early", Role: RoleMember, JoinedAt: base.Add(time.Hour)}

	svc := NewService(repo)
	if err := svc.LeaveGroup(context.Background(), "owner"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.groups["grp-1"].OwnerID != "early" {
		t.Fatalf("expected earliest member to inherit, got %s", repo.groups["grp-1"].OwnerID)
	}
}

func TestLeaveGroupOwnerSolo(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.groups["grp-1"] = &Group{ID: "grp-1", Name: "Grp", Code: "ZXCVBN", OwnerID: "owner"}
	repo.members["owner"] = &GroupMember{GroupID: "grp-1", UserID: "owner", Role: RoleOwner}

	svc := NewService(repo)
	if err := svc.LeaveGroup(context.Background(), "owner"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.groups["grp-1"]; !ok {
		t.Fatalf("expected group to remain")
	}
	if _, ok := repo.members["owner"]; ok {
		t.Fatalf("expected owner membership deleted")
	}
}

func TestUpdateGroup(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.groups["grp-1"] = &Group{ID: "grp-1", Name: "Grp", Code: "ZXCVBN", OwnerID: "user-1"}
	repo.members["user-1"] = &GroupMember{GroupID: "grp-1", UserID: "user-1", Role: RoleOwner}

	svc := NewService(repo)
	result, err := svc.UpdateGroup(context.Background(), "user-1", "New Name")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Name != "New Name" {
		t.Fatalf("expected updated name, got %q", result.Name)
	}
}

func TestListMembers(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.groups["grp-1"] = &Group{ID: "grp-1", Name: "Grp", Code: "ZXCVBN", OwnerID: "user-1"}
	repo.members["user-1"] = &GroupMember{GroupID: "grp-1", UserID: "user-1", Role: RoleOwner}
	repo.members["user-2"] = &GroupMember{GroupID: "grp-1", UserID: "user-2", Role: RoleMember}

	svc := NewService(repo)
	members, err := svc.ListMembers(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
}

func TestRemoveMemberNotOwner(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.groups["grp-1"] = &Group{ID: "grp-1", Name: "Grp", Code: "ZXCVBN", OwnerID: "owner"}
	repo.members["owner"] = &GroupMember{GroupID: "grp-1", UserID: "owner", Role: RoleOwner}
	repo.members["user-1"] = &GroupMember{GroupID: "grp-1", UserID: "user-1", Role: RoleMember}
	repo.members["user-2"] = &GroupMember{GroupID: "grp-1", UserID: "user-2", Role: RoleMember}

	svc := NewService(repo)
	err := svc.RemoveMember(context.Background(), "user-1", "user-2")
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestRemoveMemberCannotRemoveOwner(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.groups["grp-1"] = &Group{ID: "grp-1", Name: "Grp", Code: "ZXCVBN", OwnerID: "owner"}
	repo.members["owner"] = &GroupMember{GroupID: "grp-1", UserID: "owner", Role: RoleOwner}
	repo.members["user-1"] = &GroupMember{GroupID: "grp-1", UserID: "user-1", Role: RoleMember}

	svc := NewService(repo)
	err := svc.RemoveMember(context.Background(), "owner", "owner")
	if !errors.Is(err, ErrCannotRemoveOwner) {
		t.Fatalf("expected ErrCannotRemoveOwner, got %v", err)
	}
}

func TestRemoveMemberSuccess(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.groups["grp-1"] = &Group{ID: "grp-1", Name: "Grp", Code: "ZXCVBN", OwnerID: "owner"}
	repo.members["owner"] = &GroupMember{GroupID: "grp-1", UserID: "owner", Role: RoleOwner}
	repo.members["user-1"] = &GroupMember{GroupID: "grp-1", UserID: "user-1", Role: RoleMember}

	svc := NewService(repo)
	if err := svc.RemoveMember(context.Background(), "owner", "user-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.members["user-1"]; ok {
		t.Fatalf("expected member removed")
	}
}

func TestRemoveMemberOutsideGroup(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.groups["grp-1"] = &Group{ID: "grp-1", Name: "Grp", Code: "ZXCVBN", OwnerID: "owner"}
	repo.groups["grp-2"] = &Group{ID: "grp-2", Name: "Other", Code: "QWERTY", OwnerID: "stranger"}
	repo.members["owner"] = &GroupMember{GroupID: "grp-1", UserID: "owner", Role: RoleOwner}
	repo.members["stranger"] = &GroupMember{GroupID: "grp-2", UserID: "stranger", Role: RoleOwner}

	svc := NewService(repo)
	err := svc.RemoveMember(context.Background(), "owner", "stranger")
	if !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}
