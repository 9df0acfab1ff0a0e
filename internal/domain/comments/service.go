package comments

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"giftboard/internal/notify"
)

const maxBodyLength = 2000

type Service struct {
	repo      Repository
	publisher notify.Publisher
}

func NewService(repo Repository, publisher notify.Publisher) *Service {
	if publisher == nil {
		publisher = notify.NopPublisher{}
	}
	return &Service{repo: repo, publisher: publisher}
}

func (s *Service) ListComments(ctx context.Context, groupID string, parent ParentRef, filter ListFilter) ([]Comment, int64, error) {
	if err := parent.Validate(); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByParent(ctx, groupID, parent, filter)
}

func (s *Service) CreateComment(ctx context.Context, input CreateCommentInput) (*Comment, error) {
	if err := input.Parent.Validate(); err != nil {
		return nil, err
	}

	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, fmt.Errorf("body is required")
	}
	if len([]rune(body)) > maxBodyLength {
		return nil, fmt.Errorf("body must be at most %d characters", maxBodyLength)
	}

	exists, err := s.repo.ParentExists(ctx, input.GroupID, input.Parent)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrParentNotFound
	}

	comment := Comment{
		ID:         uuid.NewString(),
		GroupID:    input.GroupID,
		ParentKind: input.Parent.Kind,
		ParentID:   input.Parent.ID,
		AuthorID:   input.AuthorID,
		Body:       body,
	}
	if err := s.repo.Create(ctx, &comment); err != nil {
		return nil, err
	}

	s.publisher.Publish(notify.NewEvent(topicFor(comment.GroupID, input.Parent), notify.EventCommentAdded, comment.ID, comment.AuthorID, commentEventPayload{
		ParentKind: comment.ParentKind,
		ParentID:   comment.ParentID,
	}))

	return &comment, nil
}

// DeleteComment removes a comment; only its author may do so.
func (s *Service) DeleteComment(ctx context.Context, groupID, actorID, commentID string) error {
	comment, err := s.repo.GetByID(ctx, groupID, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != actorID {
		return ErrNotAuthor
	}

	deleted, err := s.repo.Delete(ctx, comment.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrCommentNotFound
	}

	s.publisher.Publish(notify.NewEvent(topicFor(groupID, ParentRef{Kind: comment.ParentKind, ID: comment.ParentID}), notify.EventDeleted, comment.ID, actorID, commentEventPayload{
		ParentKind: comment.ParentKind,
		ParentID:   comment.ParentID,
	}))

	return nil
}

// topicFor picks the narrowest topic watching the comment's parent:
// list and occasion threads have their own topics, everything else
// lands on the group feed.
func topicFor(groupID string, parent ParentRef) string {
	switch parent.Kind {
	case ParentList:
		return notify.ListTopic(parent.ID)
	case ParentOccasion:
		return notify.OccasionTopic(parent.ID)
	default:
		return notify.GroupTopic(groupID)
	}
}

type commentEventPayload struct {
	ParentKind ParentKind `json:"parent_kind"`
	ParentID   string     `json:"parent_id"`
}
