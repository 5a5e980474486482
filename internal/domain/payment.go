package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	GatewayStatusCaptured   = "captured"
	GatewayStatusAuthorized = "authorized"
)

type PaymentLinkRequest struct {
	Amount         int64
	Currency       string
	ReferenceID    string
	Description    string
	NotifySMS      bool
	NotifyEmail    bool
	CallbackURL    string
	CallbackMethod string
	Notes          map[string]string
}

type PaymentLink struct {
	ID          string `json:"id"`
	ShortURL    string `json:"short_url"`
	ReferenceID string `json:"reference_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
}

// GatewayPayment is a payment as reported by the gateway's fetch endpoint.
type GatewayPayment struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Settled reports whether the gateway holds the funds.
func (p *GatewayPayment) Settled() bool {
	return p.Status == GatewayStatusCaptured || p.Status == GatewayStatusAuthorized
}

type ReconciliationResult struct {
	Message        string          `json:"message"`
	BookingID      int64           `json:"bookingId"`
	ReferenceID    string          `json:"referenceId"`
	Kind           BookingKind     `json:"kind"`
	PaymentID      string          `json:"paymentId"`
	PaymentStatus  PaymentStatus   `json:"paymentStatus"`
	Status         BookingStatus   `json:"status"`
	ItemsProcessed int             `json:"itemsProcessed"`
	TotalCost      decimal.Decimal `json:"totalCost"`
}

type PaymentLinkStatus string

const (
	PaymentLinkCreated PaymentLinkStatus = "created"
	PaymentLinkPaid    PaymentLinkStatus = "paid"
)

// PaymentLinkRecord is the local copy of a link issued for a booking. The
// gateway refuses a second link with the same reference id, so an unpaid
// record is handed out again instead of creating a new one.
type PaymentLinkRecord struct {
	ID          int64
	BookingID   int64
	LinkID      string
	ReferenceID string
	ShortURL    string
	Amount      int64
	Currency    string
	Status      PaymentLinkStatus
	PaymentID   *string
	PaidAt      *time.Time
	CreatedAt   time.Time
}

func (r *PaymentLinkRecord) Link() *PaymentLink {
	return &PaymentLink{
		ID:          r.LinkID,
		ShortURL:    r.ShortURL,
		ReferenceID: r.ReferenceID,
		Amount:      r.Amount,
		Currency:    r.Currency,
		Status:      string(r.Status),
	}
}
