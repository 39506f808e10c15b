package services

import (
	"context"
	"time"

	"clouddrive/internal/models"
)

// EventPublisher delivers change notifications to a user's live sessions.
type EventPublisher interface {
	Publish(ctx context.Context, event *models.Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, *models.Event) {}

// NoopPublisher drops every event.
func NoopPublisher() EventPublisher {
	return noopPublisher{}
}

func newEvent(eventType, userID string, data interface{}) *models.Event {
	return &models.Event{
		Type:      eventType,
		UserID:    userID,
		Data:      data,
		Timestamp: time.Now(),
	}
}
