package activity

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record appends an entry to the group feed. Callers treat failures as
// non-fatal: the action already happened, the log is best effort.
func (s *Service) Record(ctx context.Context, input RecordInput) error {
	action := strings.TrimSpace(input.Action)
	if action == "" {
		return ErrInvalidAction
	}

	detail := "{}"
	if input.Detail != nil {
		raw, err := json.Marshal(input.Detail)
		if err != nil {
			return err
		}
		detail = string(raw)
	}

	entry := Entry{
		ID:         uuid.NewString(),
		GroupID:    input.GroupID,
		ActorID:    input.ActorID,
		Action:     action,
		EntityKind: input.EntityKind,
		EntityID:   input.EntityID,
		Detail:     detail,
		CreatedAt:  time.Now().UTC(),
	}
	return s.repo.Create(ctx, &entry)
}

func (s *Service) List(ctx context.Context, groupID string, filter ListFilter) ([]Entry, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.ListByGroup(ctx, groupID, filter)
}
