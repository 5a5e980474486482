// Package events publishes booking lifecycle events for downstream consumers.
package events

import (
	"context"
	"time"

	"vaccinebooking/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	TypeBookingCreated = "booking.created"
	TypeBookingPlaced  = "booking.placed"
)

type BookingEvent struct {
	Type        string             `json:"type"`
	BookingID   int64              `json:"bookingId"`
	UserID      int64              `json:"userId"`
	Kind        domain.BookingKind `json:"kind"`
	ReferenceID string             `json:"referenceId"`
	TotalCost   decimal.Decimal    `json:"totalCost"`
	NoOfDoses   int                `json:"noOfDoses"`
	PaymentID   string             `json:"paymentId,omitempty"`
	OccurredAt  time.Time          `json:"occurredAt"`
}

func NewBookingEvent(eventType string, b *domain.Booking, at time.Time) BookingEvent {
	ev := BookingEvent{
		Type:        eventType,
		BookingID:   b.ID,
		UserID:      b.UserID,
		Kind:        b.Kind,
		ReferenceID: b.ReferenceID(),
		TotalCost:   b.TotalCost,
		NoOfDoses:   b.TotalNoOfDoses,
		OccurredAt:  at.UTC(),
	}
	if b.PaymentID != nil {
		ev.PaymentID = *b.PaymentID
	}
	return ev
}

type Publisher interface {
	Publish(ctx context.Context, ev BookingEvent) error
}

// NoopPublisher drops every event. Used when AMQP_URL is not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, BookingEvent) error { return nil }
