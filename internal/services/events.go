package services

import (
	"context"
	"strings"
	"time"

	"tricy/internal/models"
	"tricy/pkg/logger"
)

// EventPublisher puts domain events on the message bus.
type EventPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, msg any) error
}

// RealtimeNotifier pushes messages to connected websocket clients and
// reports how many received them.
type RealtimeNotifier interface {
	SendUserNotification(userID string, notificationType string, data map[string]interface{}) int
	SendBookingUpdate(bookingID string, updateType string, data map[string]interface{}) int
}

type DomainEvent struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// EventDispatcher fans domain events out to the bus and websocket rooms.
// Delivery is best effort: failures are logged and never returned.
type EventDispatcher interface {
	Publish(ctx context.Context, event string, data any)
	BookingChanged(ctx context.Context, event string, booking *models.Booking)
}

type eventDispatcher struct {
	publisher EventPublisher
	realtime  RealtimeNotifier
	logger    *logger.Logger
	now       func() time.Time
}

// NewEventDispatcher accepts nil for either sink.
func NewEventDispatcher(publisher EventPublisher, realtime RealtimeNotifier, log *logger.Logger) EventDispatcher {
	if log == nil {
		log = logger.NewNop()
	}
	return &eventDispatcher{
		publisher: publisher,
		realtime:  realtime,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (d *eventDispatcher) Publish(ctx context.Context, event string, data any) {
	if d.publisher == nil {
		return
	}

	key := RoutingKey(event)
	msg := DomainEvent{Type: event, OccurredAt: d.now(), Data: data}
	if err := d.publisher.PublishJSON(ctx, key, msg); err != nil {
		d.logger.WithError(err).WithField("routing_key", key).Warn("Failed to publish event")
	}
}

func (d *eventDispatcher) BookingChanged(ctx context.Context, event string, booking *models.Booking) {
	if booking == nil {
		return
	}

	if d.realtime != nil {
		d.realtime.SendBookingUpdate(booking.BookingID, event, bookingPayload(booking))
	}
	d.Publish(ctx, event, booking)
}

// RoutingKey turns an event name such as booking_accepted into the topic
// key booking.accepted.
func RoutingKey(event string) string {
	return strings.Replace(event, "_", ".", 1)
}

func bookingPayload(b *models.Booking) map[string]interface{} {
	payload := map[string]interface{}{
		"booking_id": b.BookingID,
		"user_id":    b.UserID,
		"status":     string(b.Status),
		"fare":       b.Fare,
	}
	if b.AssignedAt != nil {
		payload["assigned_at"] = b.AssignedAt
	}
	if b.CompletedAt != nil {
		payload["completed_at"] = b.CompletedAt
	}
	return payload
}
