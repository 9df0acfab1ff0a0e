package people

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

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

func (s *Service) ListPeople(ctx context.Context, groupID string) ([]Person, error) {
	return s.repo.ListByGroup(ctx, groupID)
}

func (s *Service) GetPerson(ctx context.Context, groupID, personID string) (*Person, error) {
	return s.repo.GetByID(ctx, groupID, personID)
}

func (s *Service) CreatePerson(ctx context.Context, actorID string, input CreatePersonInput) (*Person, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	person := Person{
		ID:       uuid.NewString(),
		GroupID:  input.GroupID,
		Name:     name,
		Birthday: input.Birthday,
		Notes:    strings.TrimSpace(input.Notes),
	}
	if err := s.repo.Create(ctx, &person); err != nil {
		return nil, err
	}

	s.publisher.Publish(notify.NewEvent(notify.GroupTopic(person.GroupID), notify.EventAdded, person.ID, actorID, personEventPayload{Entity: "person", Name: person.Name}))

	return &person, nil
}

func (s *Service) UpdatePerson(ctx context.Context, actorID string, input UpdatePersonInput) (*Person, error) {
	if input.Name == nil && !input.Birthday.Set && input.Notes == nil {
		return nil, fmt.Errorf("no fields to update")
	}

	person, err := s.repo.GetByID(ctx, input.GroupID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("name is required")
		}
		person.Name = trimmed
	}
	if input.Birthday.Set {
		person.Birthday = input.Birthday.Value
	}
	if input.Notes != nil {
		person.Notes = strings.TrimSpace(*input.Notes)
	}
	person.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, person); err != nil {
		return nil, err
	}

	s.publisher.Publish(notify.NewEvent(notify.GroupTopic(person.GroupID), notify.EventUpdated, person.ID, actorID, personEventPayload{Entity: "person", Name: person.Name}))

	return person, nil
}

func (s *Service) DeletePerson(ctx context.Context, groupID, actorID, personID string) error {
	deleted, err := s.repo.Delete(ctx, groupID, personID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrPersonNotFound
	}

	s.publisher.Publish(notify.NewEvent(notify.GroupTopic(groupID), notify.EventDeleted, personID, actorID, personEventPayload{Entity: "person"}))

	return nil
}

type personEventPayload struct {
	Entity string `json:"entity"`
	Name   string `json:"name,omitempty"`
}
