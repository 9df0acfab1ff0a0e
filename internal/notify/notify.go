package notify

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventAdded         EventType = "ADDED"
	EventUpdated       EventType = "UPDATED"
	EventDeleted       EventType = "DELETED"
	EventStatusChanged EventType = "STATUS_CHANGED"
	EventAssigned      EventType = "ASSIGNED"
	EventCommentAdded  EventType = "COMMENT_ADDED"
)

type Event struct {
	Topic string    `json:"topic"`
	Type  EventType `json:"event"`
	Data  EventData `json:"data"`
}

type EventData struct {
	EntityID  string          `json:"entity_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	UserID    string          `json:"user_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Publisher delivers events best-effort: implementations must not block
// request handling and must not return delivery failures to callers.
type Publisher interface {
	Publish(event Event)
}

type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}

func GroupTopic(groupID string) string {
	return "group:" + groupID
}

func ListTopic(listID string) string {
	return "list:" + listID
}

func OccasionTopic(occasionID string) string {
	return "occasion:" + occasionID
}

func NewEvent(topic string, eventType EventType, entityID, userID string, payload any) Event {
	data := EventData{
		EntityID:  entityID,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}

	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			data.Payload = raw
		}
	}

	return Event{
		Topic: topic,
		Type:  eventType,
		Data:  data,
	}
}
