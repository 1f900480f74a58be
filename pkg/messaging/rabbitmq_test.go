package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublishing(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.FixedZone("PHT", 8*3600))

	pub, err := newPublishing(map[string]string{"booking_id": "b1"}, "tricy", now)
	require.NoError(t, err)

	assert.Equal(t, "application/json", pub.ContentType)
	assert.Equal(t, amqp.Persistent, pub.DeliveryMode)
	assert.Equal(t, "tricy", pub.AppId)
	assert.NotEmpty(t, pub.MessageId)
	assert.Equal(t, time.UTC, pub.Timestamp.Location())

	var body map[string]string
	require.NoError(t, json.Unmarshal(pub.Body, &body))
	assert.Equal(t, "b1", body["booking_id"])
}

func TestNewPublishingRejectsUnencodable(t *testing.T) {
	_, err := newPublishing(map[string]any{"ch": make(chan int)}, "", time.Now())
	assert.Error(t, err)
}

func TestPublishAfterClose(t *testing.T) {
	p := &Publisher{config: &RabbitMQConfig{Exchange: "x"}, closed: true}

	err := p.PublishJSON(context.Background(), "notification.booking", map[string]string{})
	assert.ErrorIs(t, err, ErrPublisherClosed)
}
