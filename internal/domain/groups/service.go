package groups

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	groupCodeLength   = 6
	groupCodeAttempts = 10
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetGroupByUser(ctx context.Context, userID string) (*Group, error) {
	return s.repo.GetGroupByUser(ctx, userID)
}

func (s *Service) CreateGroup(ctx context.Context, userID, name string) (*Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	var result Group
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		inGroup, err := tx.IsUserInGroup(ctx, userID)
		if err != nil {
			return err
		}
		if inGroup {
			return ErrAlreadyInGroup
		}

		code, err := generateUniqueCode(ctx, tx)
		if err != nil {
			return err
		}

		group := Group{
			ID:      uuid.NewString(),
			Name:    name,
			Code:    code,
			OwnerID: userID,
		}
		if err := tx.CreateGroup(ctx, &group); err != nil {
			return err
		}

		member := GroupMember{
			GroupID: group.ID,
			UserID:  userID,
			Role:    RoleOwner,
		}
		if err := tx.AddMember(ctx, &member); err != nil {
			return err
		}

		result = group
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *Service) JoinGroup(ctx context.Context, userID, code string) (*Group, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("code is required")
	}

	var result Group
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		inGroup, err := tx.IsUserInGroup(ctx, userID)
		if err != nil {
			return err
		}
		if inGroup {
			return ErrAlreadyInGroup
		}

		group, err := tx.GetGroupByCode(ctx, code)
		if err != nil {
			return err
		}

		member := GroupMember{
			GroupID: group.ID,
			UserID:  userID,
			Role:    RoleMember,
		}
		if err := tx.AddMember(ctx, &member); err != nil {
			return err
		}

		result = *group
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// LeaveGroup removes the caller's membership. A departing owner hands
// the group to the longest-standing remaining member; the group row
// survives even when the last member leaves, so its data stays
// reachable through the join code.
func (s *Service) LeaveGroup(ctx context.Context, userID string) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		member, err := tx.GetMemberByUser(ctx, userID)
		if err != nil {
			return err
		}

		if member.Role == RoleOwner {
			successor, err := pickSuccessor(ctx, tx, member.GroupID, userID)
			if err != nil {
				return err
			}
			if successor != nil {
				if err := tx.UpdateGroupOwner(ctx, member.GroupID, successor.UserID); err != nil {
					return err
				}
				if err := tx.UpdateMemberRole(ctx, member.GroupID, successor.UserID, RoleOwner); err != nil {
					return err
				}
			}
		}

		return tx.DeleteMember(ctx, member.GroupID, userID)
	})
}

func (s *Service) UpdateGroup(ctx context.Context, userID, name string) (*Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	group, err := s.repo.GetGroupByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateGroupName(ctx, group.ID, name); err != nil {
		return nil, err
	}

	group.Name = name
	return group, nil
}

func (s *Service) ListMembers(ctx context.Context, userID string) ([]MemberProfile, error) {
	group, err := s.repo.GetGroupByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.repo.ListMembersWithProfiles(ctx, group.ID)
}

// RemoveMember kicks a member out of the caller's group. Only the
// owner may do this, and the owner cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, actorID, targetID string) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		actor, err := tx.GetMemberByUser(ctx, actorID)
		if err != nil {
			return err
		}
		if actor.Role != RoleOwner {
			return ErrNotOwner
		}

		target, err := tx.GetMember(ctx, actor.GroupID, targetID)
		if err != nil {
			return err
		}
		if target.Role == RoleOwner {
			return ErrCannotRemoveOwner
		}

		return tx.DeleteMember(ctx, actor.GroupID, targetID)
	})
}

func pickSuccessor(ctx context.Context, repo Repository, groupID, leavingID string) (*GroupMember, error) {
	members, err := repo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	candidates := lo.Filter(members, func(m GroupMember, _ int) bool {
		return m.UserID != leavingID
	})
	if len(candidates) == 0 {
		return nil, nil
	}

	// Longest-standing member wins, user id breaks join-time ties.
	successor := lo.MinBy(candidates, func(a, b GroupMember) bool {
		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}
		return a.UserID < b.UserID
	})
	return &successor, nil
}

func generateUniqueCode(ctx context.Context, repo Repository) (string, error) {
	for i := 0; i < groupCodeAttempts; i++ {
		code, err := generateCode(groupCodeLength)
		if err != nil {
			return "", err
		}
		taken, err := repo.IsCodeTaken(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeGenerationFailed
}

func generateCode(length int) (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	max := big.NewInt(int64(len(alphabet)))

	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[n.Int64()])
	}

	return builder.String(), nil
}
