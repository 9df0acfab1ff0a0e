package occasions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"giftboard/internal/notify"
)

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

func (s *Service) ListOccasions(ctx context.Context, groupID string, filter OccasionFilter) ([]Occasion, int64, error) {
	return s.repo.ListByGroup(ctx, groupID, filter)
}

func (s *Service) GetOccasion(ctx context.Context, groupID, occasionID string) (*Occasion, error) {
	return s.repo.GetByID(ctx, groupID, occasionID)
}

func (s *Service) CreateOccasion(ctx context.Context, actorID string, input CreateOccasionInput) (*Occasion, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if input.Date.IsZero() {
		return nil, fmt.Errorf("date is required")
	}

	kind := input.Kind
	if kind == "" {
		kind = KindOther
	}
	if !ValidKind(kind) {
		return nil, ErrInvalidKind
	}

	budgetTotal, err := normalizeBudget(input.BudgetTotal)
	if err != nil {
		return nil, err
	}

	occasion := Occasion{
		ID:          uuid.NewString(),
		GroupID:     input.GroupID,
		Name:        name,
		Kind:        kind,
		Date:        input.Date,
		BudgetTotal: budgetTotal,
	}
	if err := s.repo.Create(ctx, &occasion); err != nil {
		return nil, err
	}

	s.publisher.Publish(notify.NewEvent(notify.GroupTopic(occasion.GroupID), notify.EventAdded, occasion.ID, actorID, occasionEventPayload{Entity: "occasion", Name: occasion.Name}))

	return &occasion, nil
}

func (s *Service) UpdateOccasion(ctx context.Context, actorID string, input UpdateOccasionInput) (*Occasion, error) {
	if input.Name == nil && input.Kind == nil && input.Date == nil && !input.BudgetTotal.Set {
		return nil, fmt.Errorf("no fields to update")
	}

	occasion, err := s.repo.GetByID(ctx, input.GroupID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("name is required")
		}
		occasion.Name = trimmed
	}
	if input.Kind != nil {
		if !ValidKind(*input.Kind) {
			return nil, ErrInvalidKind
		}
		occasion.Kind = *input.Kind
	}
	if input.Date != nil {
		if input.Date.IsZero() {
			return nil, fmt.Errorf("date is required")
		}
		occasion.Date = *input.Date
	}
	if input.BudgetTotal.Set {
		budgetTotal, err := normalizeBudget(input.BudgetTotal.Value)
		if err != nil {
			return nil, err
		}
		occasion.BudgetTotal = budgetTotal
	}
	occasion.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, occasion); err != nil {
		return nil, err
	}

	s.publisher.Publish(notify.NewEvent(notify.GroupTopic(occasion.GroupID), notify.EventUpdated, occasion.ID, actorID, occasionEventPayload{Entity: "occasion", Name: occasion.Name}))

	return occasion, nil
}

func (s *Service) DeleteOccasion(ctx context.Context, groupID, actorID, occasionID string) error {
	deleted, err := s.repo.Delete(ctx, groupID, occasionID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrOccasionNotFound
	}

	s.publisher.Publish(notify.NewEvent(notify.GroupTopic(groupID), notify.EventDeleted, occasionID, actorID, occasionEventPayload{Entity: "occasion"}))

	return nil
}

func normalizeBudget(amount *decimal.Decimal) (*decimal.Decimal, error) {
	if amount == nil {
		return nil, nil
	}
	if amount.IsNegative() {
		return nil, ErrNegativeBudget
	}
	rounded := amount.Round(2)
	return &rounded, nil
}

type occasionEventPayload struct {
	Entity string `json:"entity"`
	Name   string `json:"name,omitempty"`
}
