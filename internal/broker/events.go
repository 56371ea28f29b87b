package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"restock-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishPurchaseRecorded publishes a PurchaseRecorded event
func (ep *EventPublisher) PublishPurchaseRecorded(ctx context.Context, event *models.PurchaseRecordedEvent) error {
	key := fmt.Sprintf("product-%s", event.ProductID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPurchaseUpdated publishes a PurchaseUpdated event
func (ep *EventPublisher) PublishPurchaseUpdated(ctx context.Context, event *models.PurchaseUpdatedEvent) error {
	key := fmt.Sprintf("product-%s", event.ProductID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPurchaseDeleted publishes a PurchaseDeleted event
func (ep *EventPublisher) PublishPurchaseDeleted(ctx context.Context, event *models.PurchaseDeletedEvent) error {
	key := fmt.Sprintf("product-%s", event.ProductID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishProductDeleted publishes a ProductDeleted event
func (ep *EventPublisher) PublishProductDeleted(ctx context.Context, event *models.ProductDeletedEvent) error {
	key := fmt.Sprintf("product-%s", event.ProductID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishDataImported publishes a DataImported event
func (ep *EventPublisher) PublishDataImported(ctx context.Context, event *models.DataImportedEvent) error {
	return ep.producer.PublishEvent(ctx, "import", event)
}

// EventHandler routes incoming events to registered handlers
type EventHandler struct {
	onPurchaseRecorded func(context.Context, *models.PurchaseRecordedEvent) error
	onPurchaseUpdated  func(context.Context, *models.PurchaseUpdatedEvent) error
	onPurchaseDeleted  func(context.Context, *models.PurchaseDeletedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnPurchaseRecorded registers a handler for PurchaseRecorded events
func (eh *EventHandler) OnPurchaseRecorded(handler func(context.Context, *models.PurchaseRecordedEvent) error) {
	eh.onPurchaseRecorded = handler
}

// OnPurchaseUpdated registers a handler for PurchaseUpdated events
func (eh *EventHandler) OnPurchaseUpdated(handler func(context.Context, *models.PurchaseUpdatedEvent) error) {
	eh.onPurchaseUpdated = handler
}

// OnPurchaseDeleted registers a handler for PurchaseDeleted events
func (eh *EventHandler) OnPurchaseDeleted(handler func(context.Context, *models.PurchaseDeletedEvent) error) {
	eh.onPurchaseDeleted = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypePurchaseRecorded:
		if eh.onPurchaseRecorded != nil {
			var event models.PurchaseRecordedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PurchaseRecorded event: %w", err)
			}
			return eh.onPurchaseRecorded(ctx, &event)
		}

	case models.EventTypePurchaseUpdated:
		if eh.onPurchaseUpdated != nil {
			var event models.PurchaseUpdatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PurchaseUpdated event: %w", err)
			}
			return eh.onPurchaseUpdated(ctx, &event)
		}

	case models.EventTypePurchaseDeleted:
		if eh.onPurchaseDeleted != nil {
			var event models.PurchaseDeletedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PurchaseDeleted event: %w", err)
			}
			return eh.onPurchaseDeleted(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
