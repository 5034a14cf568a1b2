package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceCore/pkg/logger"
)

type published struct {
	key string
	msg amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	published  []published
	publishErr error
	closed     bool
}

func (c *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	if !durable {
		return amqp.Queue{}, errors.New("queue must be durable")
	}
	c.declared = append(c.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	if exchange != "" {
		return errors.New("expected default exchange")
	}
	c.published = append(c.published, published{key: key, msg: msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestPublisher_DeclaresQueuesAndPublishesJSON(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewPublisherWithChannel(ch, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{QueueBookingConfirmed, QueuePricePendingApproval}, ch.declared)

	serviceID := int64(7)
	err = p.PublishBookingConfirmed(context.Background(), BookingConfirmed{
		BookingID:  42,
		UserID:     100,
		VendorID:   1,
		ServiceID:  &serviceID,
		EventDate:  "2026-03-15",
		GuestCount: 150,
		OccurredAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, QueueBookingConfirmed, got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(got.msg.Body, &decoded))
	assert.Equal(t, float64(42), decoded["booking_id"])
	assert.Equal(t, "2026-03-15", decoded["event_date"])

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewPublisherWithChannel(ch, logger.NewNop())
	require.NoError(t, err)

	ch.publishErr = errors.New("channel closed")
	err = p.PublishPricePendingApproval(context.Background(), PricePendingApproval{PriceID: 1})
	require.ErrorIs(t, err, ErrPublish)
}

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	assert.NoError(t, p.PublishBookingConfirmed(context.Background(), BookingConfirmed{}))
	assert.NoError(t, p.PublishPricePendingApproval(context.Background(), PricePendingApproval{}))
}
