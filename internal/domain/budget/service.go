package budget

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"giftboard/internal/notify"
)

const defaultSummaryTTL = 30 * time.Second

// Service computes budget meters and manages per-entity budget caps.
// Occasion summaries are cached for a short TTL; mutations through this
// service invalidate the cache, mutations on list items are picked up
// when the TTL expires.
type Service struct {
	repo      Repository
	publisher notify.Publisher
	summaries *cache.Cache
}

func NewService(repo Repository, publisher notify.Publisher, summaryTTL time.Duration) *Service {
	if publisher == nil {
		publisher = notify.NopPublisher{}
	}
	if summaryTTL <= 0 {
		summaryTTL = defaultSummaryTTL
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		summaries: cache.New(summaryTTL, 2*summaryTTL),
	}
}

// OccasionSummary builds the budget meter for an occasion: the
// occasion-wide totals plus a sub-summary per budgeted entity.
func (s *Service) OccasionSummary(ctx context.Context, groupID, occasionID string) (*OccasionSummary, error) {
	key := summaryKey(groupID, occasionID)
	if cached, ok := s.summaries.Get(key); ok {
		return cached.(*OccasionSummary), nil
	}

	budgetTotal, err := s.repo.GetOccasionBudget(ctx, groupID, occasionID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.ListOccasionLines(ctx, occasionID)
	if err != nil {
		return nil, err
	}

	entityBudgets, err := s.repo.ListEntityBudgets(ctx, occasionID)
	if err != nil {
		return nil, err
	}

	entities := make([]EntitySummary, 0, len(entityBudgets))
	for _, eb := range entityBudgets {
		amount := eb.Amount
		sub, err := s.entitySummary(ctx, groupID, occasionID, eb.Ref(), &amount)
		if err != nil {
			return nil, err
		}
		entities = append(entities, sub)
	}

	summary := &OccasionSummary{
		OccasionID: occasionID,
		Summary:    BuildSummary(budgetTotal, Accumulate(lines)),
		Entities:   entities,
	}

	s.summaries.SetDefault(key, summary)

	return summary, nil
}

// EntitySummary builds the meter for one gift or list within an
// occasion. An entity without a budget row still gets its totals, with
// a nil cap.
func (s *Service) EntitySummary(ctx context.Context, groupID, occasionID string, ref EntityRef) (*EntitySummary, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetOccasionBudget(ctx, groupID, occasionID); err != nil {
		return nil, err
	}

	var amount *decimal.Decimal
	entityBudget, err := s.repo.GetEntityBudget(ctx, occasionID, ref)
	switch {
	case err == nil:
		amount = &entityBudget.Amount
	case errors.Is(err, ErrBudgetNotFound):
	default:
		return nil, err
	}

	summary, err := s.entitySummary(ctx, groupID, occasionID, ref, amount)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *Service) entitySummary(ctx context.Context, groupID, occasionID string, ref EntityRef, amount *decimal.Decimal) (EntitySummary, error) {
	var (
		lines []Line
		err   error
	)
	switch ref.Kind {
	case EntityList:
		lines, err = s.repo.ListListLines(ctx, groupID, ref.ID)
	case EntityGift:
		lines, err = s.repo.ListGiftLines(ctx, occasionID, ref.ID)
	default:
		return EntitySummary{}, ErrInvalidEntityKind
	}
	if err != nil {
		return EntitySummary{}, err
	}

	return EntitySummary{Ref: ref, Summary: BuildSummary(amount, Accumulate(lines))}, nil
}

func (s *Service) ListEntityBudgets(ctx context.Context, groupID, occasionID string) ([]EntityBudget, error) {
	if _, err := s.repo.GetOccasionBudget(ctx, groupID, occasionID); err != nil {
		return nil, err
	}
	return s.repo.ListEntityBudgets(ctx, occasionID)
}

// UpsertEntityBudget sets the cap for one entity within an occasion.
// Writing the same target twice keeps a single row and the latest
// amount.
func (s *Service) UpsertEntityBudget(ctx context.Context, groupID, actorID, occasionID string, ref EntityRef, amount decimal.Decimal) (*EntityBudget, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}
	if _, err := s.repo.GetOccasionBudget(ctx, groupID, occasionID); err != nil {
		return nil, err
	}

	var stored *EntityBudget
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		row := EntityBudget{
			ID:         uuid.NewString(),
			OccasionID: occasionID,
			EntityKind: ref.Kind,
			EntityID:   ref.ID,
			Amount:     amount.Round(2),
		}
		if err := tx.UpsertEntityBudget(ctx, &row); err != nil {
			return err
		}

		// Re-read so the caller sees the surviving row, not the
		// candidate discarded by the conflict clause.
		existing, err := tx.GetEntityBudget(ctx, occasionID, ref)
		if err != nil {
			return err
		}
		stored = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.summaries.Delete(summaryKey(groupID, occasionID))
	s.publisher.Publish(notify.NewEvent(notify.OccasionTopic(occasionID), notify.EventUpdated, stored.ID, actorID, entityBudgetPayload{
		EntityKind: stored.EntityKind,
		EntityID:   stored.EntityID,
		Amount:     stored.Amount,
	}))

	return stored, nil
}

func (s *Service) DeleteEntityBudget(ctx context.Context, groupID, actorID, occasionID string, ref EntityRef) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	if _, err := s.repo.GetOccasionBudget(ctx, groupID, occasionID); err != nil {
		return err
	}

	deleted, err := s.repo.DeleteEntityBudget(ctx, occasionID, ref)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrBudgetNotFound
	}

	s.summaries.Delete(summaryKey(groupID, occasionID))
	s.publisher.Publish(notify.NewEvent(notify.OccasionTopic(occasionID), notify.EventDeleted, ref.ID, actorID, entityBudgetPayload{
		EntityKind: ref.Kind,
		EntityID:   ref.ID,
	}))

	return nil
}

// ListSummary is the per-list meter shown inside list detail views.
func (s *Service) ListSummary(ctx context.Context, groupID, listID string, occasionID *string) (*Summary, error) {
	var amount *decimal.Decimal
	if occasionID != nil {
		ref := EntityRef{Kind: EntityList, ID: listID}
		entityBudget, err := s.repo.GetEntityBudget(ctx, *occasionID, ref)
		switch {
		case err == nil:
			amount = &entityBudget.Amount
		case errors.Is(err, ErrBudgetNotFound):
		default:
			return nil, err
		}
	}

	lines, err := s.repo.ListListLines(ctx, groupID, listID)
	if err != nil {
		return nil, err
	}

	summary := BuildSummary(amount, Accumulate(lines))
	return &summary, nil
}

func summaryKey(groupID, occasionID string) string {
	return groupID + ":" + occasionID
}

type entityBudgetPayload struct {
	EntityKind EntityKind      `json:"entity_kind"`
	EntityID   string          `json:"entity_id"`
	Amount     decimal.Decimal `json:"amount"`
}
