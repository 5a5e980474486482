package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"vaccinebooking/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookingEvent(t *testing.T) {
	payID := "pay_1"
	b := domain.NewBooking(7, domain.KindCart, []domain.BookingItem{
		{VaccineID: 1, VaccineName: "Hep B", NoOfDoses: 2, ItemCost: decimal.NewFromInt(40)},
	})
	b.ID = 42
	b.PaymentID = &payID
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("IST", 19800))

	ev := NewBookingEvent(TypeBookingPlaced, b, at)

	assert.Equal(t, "CART_42", ev.ReferenceID)
	assert.Equal(t, "pay_1", ev.PaymentID)
	assert.Equal(t, 2, ev.NoOfDoses)
	assert.Equal(t, time.UTC, ev.OccurredAt.Location())

	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"booking.placed"`)
	assert.Contains(t, string(raw), `"totalCost":"40"`)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), BookingEvent{Type: TypeBookingCreated}))
}

func TestAMQPPublisher_RedialsWhenDisconnected(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	dials := 0
	p := &AMQPPublisher{
		log: log,
		connect: func() (*amqp.Connection, *amqp.Channel, error) {
			dials++
			return nil, nil, errors.New("connection refused")
		},
	}

	err := p.Publish(context.Background(), BookingEvent{Type: TypeBookingPlaced})
	assert.ErrorContains(t, err, "connection refused")
	err = p.Publish(context.Background(), BookingEvent{Type: TypeBookingPlaced})
	assert.Error(t, err)
	assert.Equal(t, 2, dials, "every publish without a live channel re-dials")
}

func TestAMQPPublisher_ClosedDoesNotRedial(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	dials := 0
	p := &AMQPPublisher{
		log: log,
		connect: func() (*amqp.Connection, *amqp.Channel, error) {
			dials++
			return nil, nil, errors.New("unreachable")
		},
	}

	require.NoError(t, p.Close())
	err := p.Publish(context.Background(), BookingEvent{Type: TypeBookingPlaced})

	assert.ErrorIs(t, err, ErrPublisherClosed)
	assert.Equal(t, 0, dials)
	assert.NoError(t, p.Close())
}
