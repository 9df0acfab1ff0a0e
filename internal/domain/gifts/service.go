package gifts

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
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

func (s *Service) ListGifts(ctx context.Context, groupID string, filter GiftFilter) ([]GiftWithLinks, int64, error) {
	gifts, total, err := s.repo.ListGifts(ctx, groupID, filter)
	if err != nil {
		return nil, 0, err
	}

	if len(gifts) == 0 {
		return []GiftWithLinks{}, total, nil
	}

	giftIDs := lo.Map(gifts, func(gift Gift, _ int) string { return gift.ID })

	tagsByGift, err := s.repo.GetTagIDsByGiftIDs(ctx, giftIDs)
	if err != nil {
		return nil, 0, err
	}
	recipientsByGift, err := s.repo.GetRecipientIDsByGiftIDs(ctx, giftIDs)
	if err != nil {
		return nil, 0, err
	}

	items := make([]GiftWithLinks, 0, len(gifts))
	for _, gift := range gifts {
		items = append(items, GiftWithLinks{
			Gift:         gift,
			TagIDs:       tagsByGift[gift.ID],
			RecipientIDs: recipientsByGift[gift.ID],
		})
	}

	return items, total, nil
}

func (s *Service) GetGift(ctx context.Context, groupID, giftID string) (*GiftWithLinks, error) {
	gift, err := s.repo.GetGiftByID(ctx, groupID, giftID)
	if err != nil {
		return nil, err
	}

	tagsByGift, err := s.repo.GetTagIDsByGiftIDs(ctx, []string{gift.ID})
	if err != nil {
		return nil, err
	}
	recipientsByGift, err := s.repo.GetRecipientIDsByGiftIDs(ctx, []string{gift.ID})
	if err != nil {
		return nil, err
	}

	return &GiftWithLinks{
		Gift:         *gift,
		TagIDs:       tagsByGift[gift.ID],
		RecipientIDs: recipientsByGift[gift.ID],
	}, nil
}

func (s *Service) CreateGift(ctx context.Context, actorID string, input CreateGiftInput) (*GiftWithLinks, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if err := validatePrices(input.Price, input.SalePrice); err != nil {
		return nil, err
	}
	if input.Priority < MinPriority || input.Priority > MaxPriority {
		return nil, ErrInvalidPriority
	}

	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}

	tagIDs := normalizeIDs(input.TagIDs)
	if err := validateIDs(tagIDs, ErrTagNotFound); err != nil {
		return nil, err
	}
	recipientIDs := normalizeIDs(input.RecipientIDs)
	if err := validateIDs(recipientIDs, ErrRecipientNotFound); err != nil {
		return nil, err
	}

	gift := Gift{
		ID:          uuid.NewString(),
		GroupID:     input.GroupID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		URL:         strings.TrimSpace(input.URL),
		Price:       input.Price,
		SalePrice:   input.SalePrice,
		Quantity:    quantity,
		Status:      StatusActive,
		Priority:    input.Priority,
		StoreID:     input.StoreID,
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := verifyLinks(ctx, tx, input.GroupID, gift.StoreID, tagIDs, recipientIDs); err != nil {
			return err
		}
		if err := tx.CreateGift(ctx, &gift); err != nil {
			return err
		}
		if err := tx.ReplaceGiftTags(ctx, gift.ID, tagIDs); err != nil {
			return err
		}
		return tx.ReplaceGiftRecipients(ctx, gift.ID, recipientIDs)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(notify.NewEvent(notify.GroupTopic(gift.GroupID), notify.EventAdded, gift.ID, actorID, giftEventPayload{Entity: "gift", Name: gift.Name}))

	return &GiftWithLinks{Gift: gift, TagIDs: tagIDs, RecipientIDs: recipientIDs}, nil
}

func (s *Service) UpdateGift(ctx context.Context, actorID string, input UpdateGiftInput) (*GiftWithLinks, error) {
	if input.Name == nil && input.Description == nil && input.URL == nil &&
		!input.Price.Set && !input.SalePrice.Set && input.Quantity == nil &&
		input.Status == nil && input.Priority == nil && !input.StoreID.Set &&
		!input.TagIDs.Set && !input.RecipientIDs.Set {
		return nil, fmt.Errorf("no fields to update")
	}

	var (
		tagIDs       []string
		recipientIDs []string
	)
	if input.TagIDs.Set {
		tagIDs = normalizeIDs(input.TagIDs.Values)
		if err := validateIDs(tagIDs, ErrTagNotFound); err != nil {
			return nil, err
		}
	}
	if input.RecipientIDs.Set {
		recipientIDs = normalizeIDs(input.RecipientIDs.Values)
		if err := validateIDs(recipientIDs, ErrRecipientNotFound); err != nil {
			return nil, err
		}
	}

	var updated Gift
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		gift, err := tx.GetGiftByID(ctx, input.GroupID, input.ID)
		if err != nil {
			return err
		}

		if input.Name != nil {
			trimmed := strings.TrimSpace(*input.Name)
			if trimmed == "" {
				return fmt.Errorf("name is required")
			}
			gift.Name = trimmed
		}
		if input.Description != nil {
			gift.Description = strings.TrimSpace(*input.Description)
		}
		if input.URL != nil {
			gift.URL = strings.TrimSpace(*input.URL)
		}
		if input.Price.Set {
			gift.Price = input.Price.Value
		}
		if input.SalePrice.Set {
			gift.SalePrice = input.SalePrice.Value
		}
		if err := validatePrices(gift.Price, gift.SalePrice); err != nil {
			return err
		}
		if input.Quantity != nil {
			if *input.Quantity < 1 {
				return fmt.Errorf("quantity must be at least 1")
			}
			gift.Quantity = *input.Quantity
		}
		if input.Status != nil {
			if *input.Status != StatusActive && *input.Status != StatusArchived {
				return ErrInvalidStatus
			}
			gift.Status = *input.Status
		}
		if input.Priority != nil {
			if *input.Priority < MinPriority || *input.Priority > MaxPriority {
				return ErrInvalidPriority
			}
			gift.Priority = *input.Priority
		}
		if input.StoreID.Set {
			gift.StoreID = input.StoreID.Value
		}

		if err := verifyLinks(ctx, tx, input.GroupID, gift.StoreID, tagIDs, recipientIDs); err != nil {
			return err
		}

		gift.UpdatedAt = time.Now().UTC()
		if err := tx.UpdateGift(ctx, gift); err != nil {
			return err
		}

		if input.TagIDs.Set {
			if err := tx.ReplaceGiftTags(ctx, gift.ID, tagIDs); err != nil {
				return err
			}
		}
		if input.RecipientIDs.Set {
			if err := tx.ReplaceGiftRecipients(ctx, gift.ID, recipientIDs); err != nil {
				return err
			}
		}

		updated = *gift
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(notify.NewEvent(notify.GroupTopic(updated.GroupID), notify.EventUpdated, updated.ID, actorID, giftEventPayload{Entity: "gift", Name: updated.Name}))

	return s.GetGift(ctx, input.GroupID, updated.ID)
}

func (s *Service) DeleteGift(ctx context.Context, groupID, actorID, giftID string) error {
	deleted, err := s.repo.DeleteGift(ctx, groupID, giftID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrGiftNotFound
	}

	s.publisher.Publish(notify.NewEvent(notify.GroupTopic(groupID), notify.EventDeleted, giftID, actorID, giftEventPayload{Entity: "gift"}))

	return nil
}

// SetRecipients replaces the people a gift is intended for.
func (s *Service) SetRecipients(ctx context.Context, groupID, actorID, giftID string, personIDs []string) (*GiftWithLinks, error) {
	recipientIDs := normalizeIDs(personIDs)
	if err := validateIDs(recipientIDs, ErrRecipientNotFound); err != nil {
		return nil, err
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		gift, err := tx.GetGiftByID(ctx, groupID, giftID)
		if err != nil {
			return err
		}
		if err := verifyLinks(ctx, tx, groupID, nil, nil, recipientIDs); err != nil {
			return err
		}
		return tx.ReplaceGiftRecipients(ctx, gift.ID, recipientIDs)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(notify.NewEvent(notify.GroupTopic(groupID), notify.EventUpdated, giftID, actorID, giftEventPayload{Entity: "gift"}))

	return s.GetGift(ctx, groupID, giftID)
}

func (s *Service) CountGiftsByStatus(ctx context.Context, groupID string) (map[string]int64, error) {
	return s.repo.CountGiftsByStatus(ctx, groupID)
}

func (s *Service) ListTags(ctx context.Context, groupID string) ([]Tag, error) {
	return s.repo.ListTags(ctx, groupID)
}

func (s *Service) CreateTag(ctx context.Context, input CreateTagInput) (*Tag, error) {
	name, err := validateTagName(input.Name)
	if err != nil {
		return nil, err
	}

	color, err := normalizeTagColor(input.Color)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountTagsByName(ctx, input.GroupID, name, "")
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrTagNameTaken
	}

	tag := Tag{
		ID:      uuid.NewString(),
		GroupID: input.GroupID,
		Name:    name,
		Color:   color,
	}
	if err := s.repo.CreateTag(ctx, &tag); err != nil {
		return nil, err
	}

	return &tag, nil
}

func (s *Service) UpdateTag(ctx context.Context, input UpdateTagInput) (*Tag, error) {
	name, err := validateTagName(input.Name)
	if err != nil {
		return nil, err
	}

	tag, err := s.repo.GetTagByID(ctx, input.GroupID, input.TagID)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountTagsByName(ctx, input.GroupID, name, tag.ID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrTagNameTaken
	}

	tag.Name = name
	if input.Color.Set {
		color, err := normalizeTagColor(input.Color.Value)
		if err != nil {
			return nil, err
		}
		tag.Color = color
	}

	if err := s.repo.UpdateTag(ctx, tag); err != nil {
		return nil, err
	}

	return tag, nil
}

func (s *Service) DeleteTag(ctx context.Context, groupID, tagID string) error {
	inUse, err := s.repo.CountGiftTagsByTagID(ctx, tagID)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return ErrTagInUse
	}
	deleted, err := s.repo.DeleteTag(ctx, groupID, tagID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTagNotFound
	}
	return nil
}

func (s *Service) ListStores(ctx context.Context, groupID string) ([]Store, error) {
	return s.repo.ListStores(ctx, groupID)
}

func (s *Service) CreateStore(ctx context.Context, input CreateStoreInput) (*Store, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	store := Store{
		ID:      uuid.NewString(),
		GroupID: input.GroupID,
		Name:    name,
		URL:     strings.TrimSpace(input.URL),
	}
	if err := s.repo.CreateStore(ctx, &store); err != nil {
		return nil, err
	}

	return &store, nil
}

func (s *Service) UpdateStore(ctx context.Context, input UpdateStoreInput) (*Store, error) {
	if input.Name == nil && input.URL == nil {
		return nil, fmt.Errorf("no fields to update")
	}

	store, err := s.repo.GetStoreByID(ctx, input.GroupID, input.StoreID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("name is required")
		}
		store.Name = trimmed
	}
	if input.URL != nil {
		store.URL = strings.TrimSpace(*input.URL)
	}

	if err := s.repo.UpdateStore(ctx, store); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *Service) DeleteStore(ctx context.Context, groupID, storeID string) error {
	deleted, err := s.repo.DeleteStore(ctx, groupID, storeID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrStoreNotFound
	}
	return nil
}

// verifyLinks checks that every referenced store, tag and person
// belongs to the group before rows are linked to them.
func verifyLinks(ctx context.Context, repo Repository, groupID string, storeID *string, tagIDs, recipientIDs []string) error {
	if storeID != nil {
		if _, err := repo.GetStoreByID(ctx, groupID, *storeID); err != nil {
			return err
		}
	}
	if len(tagIDs) > 0 {
		count, err := repo.CountTagsByIDs(ctx, groupID, tagIDs)
		if err != nil {
			return err
		}
		if count != int64(len(tagIDs)) {
			return ErrTagNotFound
		}
	}
	if len(recipientIDs) > 0 {
		count, err := repo.CountPeopleByIDs(ctx, groupID, recipientIDs)
		if err != nil {
			return err
		}
		if count != int64(len(recipientIDs)) {
			return ErrRecipientNotFound
		}
	}
	return nil
}

func validatePrices(price, salePrice *decimal.Decimal) error {
	if price != nil && price.IsNegative() {
		return fmt.Errorf("price cannot be negative")
	}
	if salePrice != nil && salePrice.IsNegative() {
		return fmt.Errorf("sale_price cannot be negative")
	}
	return nil
}

func normalizeIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}

	trimmed := lo.FilterMap(ids, func(id string, _ int) (string, bool) {
		value := strings.TrimSpace(id)
		return value, value != ""
	})
	return lo.Uniq(trimmed)
}

func validateIDs(ids []string, notFound error) error {
	for _, id := range ids {
		if uuid.Validate(id) != nil {
			return notFound
		}
	}
	return nil
}

func validateTagName(name string) (string, error) {
	const maxLen = 50
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("name is required")
	}
	if len([]rune(name)) > maxLen {
		return "", fmt.Errorf("name must be at most %d characters", maxLen)
	}
	return name, nil
}

var tagColorRegex = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func normalizeTagColor(value *string) (*string, error) {
	if value == nil {
		return nil, nil
	}

	color := strings.ToLower(strings.TrimSpace(*value))
	if !tagColorRegex.MatchString(color) {
		return nil, ErrInvalidTagColor
	}

	return &color, nil
}

type giftEventPayload struct {
	Entity string `json:"entity"`
	Name   string `json:"name,omitempty"`
}
