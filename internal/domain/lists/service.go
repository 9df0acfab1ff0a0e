package lists

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

func (s *Service) ListLists(ctx context.Context, groupID string, filter ListFilter) ([]ListOverview, int64, error) {
	items, total, err := s.repo.ListLists(ctx, groupID, filter)
	if err != nil {
		return nil, 0, err
	}
	if len(items) == 0 {
		return []ListOverview{}, total, nil
	}

	listIDs := make([]string, 0, len(items))
	for _, list := range items {
		listIDs = append(listIDs, list.ID)
	}

	counts, err := s.repo.CountItemsByListIDs(ctx, listIDs)
	if err != nil {
		return nil, 0, err
	}

	result := make([]ListOverview, 0, len(items))
	for _, list := range items {
		result = append(result, ListOverview{
			List:   list,
			Counts: counts[list.ID],
		})
	}

	return result, total, nil
}

func (s *Service) GetList(ctx context.Context, groupID, listID string) (*ListWithItems, error) {
	list, err := s.repo.GetListByID(ctx, groupID, listID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListItems(ctx, list.ID)
	if err != nil {
		return nil, err
	}

	return &ListWithItems{List: *list, Items: items}, nil
}

func (s *Service) CreateList(ctx context.Context, actorID string, input CreateListInput) (*List, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	list := List{
		ID:         uuid.NewString(),
		GroupID:    input.GroupID,
		Name:       name,
		PersonID:   input.PersonID,
		OccasionID: input.OccasionID,
	}

	if err := s.repo.CreateList(ctx, &list); err != nil {
		return nil, err
	}

	s.publisher.Publish(notify.NewEvent(notify.GroupTopic(list.GroupID), notify.EventAdded, list.ID, actorID, listEventPayload{Entity: "list", Name: list.Name}))

	return &list, nil
}

func (s *Service) UpdateList(ctx context.Context, actorID string, input UpdateListInput) (*List, error) {
	if input.Name == nil && !input.PersonID.Set && !input.OccasionID.Set {
		return nil, fmt.Errorf("no fields to update")
	}

	list, err := s.repo.GetListByID(ctx, input.GroupID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("name is required")
		}
		list.Name = trimmed
	}
	if input.PersonID.Set {
		list.PersonID = input.PersonID.Value
	}
	if input.OccasionID.Set {
		list.OccasionID = input.OccasionID.Value
	}
	list.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateList(ctx, list); err != nil {
		return nil, err
	}

	s.publisher.Publish(notify.NewEvent(notify.GroupTopic(list.GroupID), notify.EventUpdated, list.ID, actorID, listEventPayload{Entity: "list", Name: list.Name}))

	return list, nil
}

func (s *Service) DeleteList(ctx context.Context, groupID, actorID, listID string) error {
	deleted, err := s.repo.DeleteList(ctx, groupID, listID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrListNotFound
	}

	s.publisher.Publish(notify.NewEvent(notify.GroupTopic(groupID), notify.EventDeleted, listID, actorID, listEventPayload{Entity: "list"}))

	return nil
}

func (s *Service) GetItem(ctx context.Context, groupID, itemID string) (*ListItem, error) {
	return s.repo.GetItemByID(ctx, groupID, itemID)
}

func (s *Service) AddItem(ctx context.Context, actorID string, input AddItemInput) (*ListItem, error) {
	if input.GiftID == "" {
		return nil, fmt.Errorf("gift_id is required")
	}

	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}
	if err := validatePrices(input.Price, input.DiscountPrice); err != nil {
		return nil, err
	}

	list, err := s.repo.GetListByID(ctx, input.GroupID, input.ListID)
	if err != nil {
		return nil, err
	}

	price := input.Price
	discount := input.DiscountPrice
	if price == nil && discount == nil {
		// An item added without pricing inherits the gift's price and sale price.
		pricing, err := s.repo.GetGiftPricing(ctx, input.GroupID, input.GiftID)
		if err != nil {
			return nil, err
		}
		price = pricing.Price
		discount = pricing.SalePrice
	}

	item := ListItem{
		ID:            uuid.NewString(),
		ListID:        list.ID,
		GiftID:        input.GiftID,
		Status:        StatusIdea,
		Notes:         strings.TrimSpace(input.Notes),
		Price:         price,
		DiscountPrice: discount,
		Quantity:      quantity,
	}

	if err := s.repo.CreateItem(ctx, &item); err != nil {
		return nil, err
	}

	s.publisher.Publish(notify.NewEvent(notify.ListTopic(item.ListID), notify.EventAdded, item.ID, actorID, itemEventPayload{GiftID: item.GiftID, Status: item.Status}))

	return &item, nil
}

func (s *Service) UpdateItem(ctx context.Context, actorID string, input UpdateItemInput) (*ListItem, error) {
	if input.Notes == nil && !input.Price.Set && !input.DiscountPrice.Set && input.Quantity == nil {
		return nil, fmt.Errorf("no fields to update")
	}
	if input.Quantity != nil && *input.Quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}

	item, err := s.repo.GetItemByID(ctx, input.GroupID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Notes != nil {
		item.Notes = strings.TrimSpace(*input.Notes)
	}
	if input.Price.Set {
		item.Price = input.Price.Value
	}
	if input.DiscountPrice.Set {
		item.DiscountPrice = input.DiscountPrice.Value
	}
	if input.Quantity != nil {
		item.Quantity = *input.Quantity
	}
	if err := validatePrices(item.Price, item.DiscountPrice); err != nil {
		return nil, err
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	s.publisher.Publish(notify.NewEvent(notify.ListTopic(item.ListID), notify.EventUpdated, item.ID, actorID, itemEventPayload{GiftID: item.GiftID, Status: item.Status}))

	return item, nil
}

// UpdateItemStatus applies a single lifecycle step. The current status is
// re-read inside the transaction so concurrent requests validate against
// the latest persisted value. The boolean reports whether anything
// changed: repeating the current status succeeds silently and emits no
// event.
func (s *Service) UpdateItemStatus(ctx context.Context, groupID, actorID, itemID string, requested Status) (*ListItem, bool, error) {
	var (
		updated   ListItem
		oldStatus Status
		changed   bool
	)

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		item, err := tx.GetItemByID(ctx, groupID, itemID)
		if err != nil {
			return err
		}

		oldStatus = item.Status
		next, err := Transition(item.Status, requested)
		if err != nil {
			return err
		}

		if next == item.Status {
			updated = *item
			return nil
		}

		item.Status = next
		item.UpdatedAt = time.Now().UTC()
		if err := tx.UpdateItem(ctx, item); err != nil {
			return err
		}

		updated = *item
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if changed {
		s.publisher.Publish(notify.NewEvent(notify.ListTopic(updated.ListID), notify.EventStatusChanged, updated.ID, actorID, statusChangePayload{
			GiftID:    updated.GiftID,
			OldStatus: oldStatus,
			NewStatus: updated.Status,
		}))
	}

	return &updated, changed, nil
}

// AssignItem sets or clears the member responsible for an item. The
// boolean reports whether the assignment actually changed.
func (s *Service) AssignItem(ctx context.Context, groupID, actorID, itemID string, assigneeID *string) (*ListItem, bool, error) {
	item, err := s.repo.GetItemByID(ctx, groupID, itemID)
	if err != nil {
		return nil, false, err
	}

	if equalOptional(item.AssignedTo, assigneeID) {
		return item, false, nil
	}

	item.AssignedTo = assigneeID
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, false, err
	}

	s.publisher.Publish(notify.NewEvent(notify.ListTopic(item.ListID), notify.EventAssigned, item.ID, actorID, assignEventPayload{GiftID: item.GiftID, AssignedTo: assigneeID}))

	return item, true, nil
}

func (s *Service) DeleteItem(ctx context.Context, groupID, actorID, itemID string) error {
	item, err := s.repo.GetItemByID(ctx, groupID, itemID)
	if err != nil {
		return err
	}

	deleted, err := s.repo.DeleteItem(ctx, item.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrItemNotFound
	}

	s.publisher.Publish(notify.NewEvent(notify.ListTopic(item.ListID), notify.EventDeleted, item.ID, actorID, itemEventPayload{GiftID: item.GiftID, Status: item.Status}))

	return nil
}

func validatePrices(price, discount *decimal.Decimal) error {
	if price != nil && price.IsNegative() {
		return fmt.Errorf("price cannot be negative")
	}
	if discount != nil && discount.IsNegative() {
		return fmt.Errorf("discount_price cannot be negative")
	}
	return nil
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

type listEventPayload struct {
	Entity string `json:"entity"`
	Name   string `json:"name,omitempty"`
}

type itemEventPayload struct {
	GiftID string `json:"gift_id"`
	Status Status `json:"status"`
}

type statusChangePayload struct {
	GiftID    string `json:"gift_id"`
	OldStatus Status `json:"old_status"`
	NewStatus Status `json:"new_status"`
}

type assignEventPayload struct {
	GiftID     string  `json:"gift_id"`
	AssignedTo *string `json:"assigned_to"`
}
