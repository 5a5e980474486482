package payment

import (
	"context"
	"time"

	"vaccinebooking/internal/domain"
)

type bookingStore interface {
	Get(ctx context.Context, id int64) (*domain.Booking, bool, error)
	MarkPaymentCompleted(ctx context.Context, id int64, paymentID string, paidAt time.Time) (bool, error)
}

type linkStore interface {
	Create(ctx context.Context, rec *domain.PaymentLinkRecord) error
	LatestByReference(ctx context.Context, referenceID string) (*domain.PaymentLinkRecord, bool, error)
	MarkPaidIdempotent(ctx context.Context, referenceID, paymentID string, paidAt time.Time) (bool, error)
}

type gateway interface {
	CreatePaymentLink(ctx context.Context, req domain.PaymentLinkRequest) (*domain.PaymentLink, error)
	FetchPayment(ctx context.Context, paymentID string) (*domain.GatewayPayment, error)
}

type confirmationSender interface {
	SendConfirmation(ctx context.Context, bookingID int64, isCartOrder bool) error
}

type inventoryDebiter interface {
	DebitPending(ctx context.Context, b *domain.Booking) (debited, failed int)
}
