package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending BookingStatus = "pending"
	BookingBooked  BookingStatus = "booked"
	BookingPlaced  BookingStatus = "placed"
	BookingFailed  BookingStatus = "failed"
)

type PaymentStatus string

const (
	PaymentNone      PaymentStatus = "none"
	PaymentCompleted PaymentStatus = "completed"
)

// BookingKind tags a booking as a single-vaccine order or a cart order.
// It decides the payment reference prefix and the finalization path.
type BookingKind string

const (
	KindSingle BookingKind = "single"
	KindCart   BookingKind = "cart"
)

const (
	ReferencePrefixSingle = "ORDER_"
	ReferencePrefixCart   = "CART_"
)

func (k BookingKind) Valid() bool {
	return k == KindSingle || k == KindCart
}

func (k BookingKind) ReferencePrefix() string {
	if k == KindCart {
		return ReferencePrefixCart
	}
	return ReferencePrefixSingle
}

// ConsumedBatch is one step of a FEFO allocation. ID is the persisted row id
// and stays zero until the owning booking is stored.
type ConsumedBatch struct {
	ID         int64 `json:"-"`
	BatchID    int64 `json:"batchId"`
	DosesTaken int   `json:"dosesTaken"`
	Debited    bool  `json:"debited"`
}

type BookingItem struct {
	VaccineID   int64           `json:"vaccineId"`
	VaccineName string          `json:"vaccineName"`
	NoOfDoses   int             `json:"noOfDoses"`
	ItemCost    decimal.Decimal `json:"itemCost"`
	Batches     []ConsumedBatch `json:"batches,omitempty"`
}

type Booking struct {
	ID               int64           `json:"id"`
	UserID           int64           `json:"userId"`
	PrimaryVaccineID int64           `json:"vaccineId"`
	TotalNoOfDoses   int             `json:"noOfDoses"`
	TotalCost        decimal.Decimal `json:"totalCost"`
	Status           BookingStatus   `json:"status"`
	Kind             BookingKind     `json:"kind"`
	Items            []BookingItem   `json:"items"`
	PaymentID        *string         `json:"paymentId,omitempty"`
	PaymentStatus    PaymentStatus   `json:"paymentStatus"`
	PaidAt           *time.Time      `json:"paidAt,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// NewBooking builds an unsaved booking in status booked. Totals are derived
// from items so TotalCost always equals the sum of item costs.
func NewBooking(userID int64, kind BookingKind, items []BookingItem) *Booking {
	b := &Booking{
		UserID:        userID,
		Kind:          kind,
		Items:         items,
		Status:        BookingBooked,
		PaymentStatus: PaymentNone,
		TotalCost:     decimal.Zero,
	}
	if len(items) > 0 {
		b.PrimaryVaccineID = items[0].VaccineID
	}
	for _, it := range items {
		b.TotalNoOfDoses += it.NoOfDoses
		b.TotalCost = b.TotalCost.Add(it.ItemCost)
	}
	return b
}

func (b *Booking) IsCartOrder() bool {
	return b.Kind == KindCart
}

func (b *Booking) IsPaid() bool {
	return b.PaymentStatus == PaymentCompleted
}

// ReferenceID is the id echoed by the payment gateway, e.g. ORDER_17 or CART_42.
func (b *Booking) ReferenceID() string {
	return b.Kind.ReferencePrefix() + strconv.FormatInt(b.ID, 10)
}

func (b *Booking) VaccineNames() string {
	names := make([]string, 0, len(b.Items))
	for _, it := range b.Items {
		names = append(names, it.VaccineName)
	}
	return strings.Join(names, ", ")
}

// PendingBatches reports how many consumed batches still wait for a remote decrement.
func (b *Booking) PendingBatches() int {
	n := 0
	for _, it := range b.Items {
		for _, cb := range it.Batches {
			if !cb.Debited {
				n++
			}
		}
	}
	return n
}
