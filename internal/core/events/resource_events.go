package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store mutation event types, published by the resource services.
const (
	ResourceCreated = "resource.created"
	ResourceUpdated = "resource.updated"
	ResourceDeleted = "resource.deleted"
)

// NewResourceEvent builds a mutation event for one record of a collection.
func NewResourceEvent(eventType, collection string, recordID any) Event {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"collection": collection,
			"record_id":  recordID,
		},
	}
}

// AuditLogger subscribes a handler that logs every store mutation.
func AuditLogger(bus *EventBus) {
	log := func(event Event) {
		data, _ := event.Payload().(map[string]interface{})
		bus.logger.Info("store mutation",
			"event_type", event.EventType(),
			"collection", fmt.Sprint(data["collection"]),
			"record_id", data["record_id"])
	}
	for _, eventType := range []string{ResourceCreated, ResourceUpdated, ResourceDeleted} {
		bus.Subscribe(eventType, func(_ context.Context, event Event) error {
			log(event)
			return nil
		})
	}
}
