package booking

import (
	"time"

	"vaccinebooking/internal/domain"

	"github.com/shopspring/decimal"
)

type CreateBookingRequest struct {
	UserID    int64 `json:"userId" validate:"required,gt=0"`
	VaccineID int64 `json:"vaccineId" validate:"required,gt=0"`
	NoOfDoses int   `json:"noOfDoses" validate:"required,gt=0"`
}

type CartItem struct {
	VaccineID int64 `json:"vaccineId" validate:"required,gt=0"`
	NoOfDoses int   `json:"noOfDoses" validate:"required,gt=0"`
}

type CreateCartBookingRequest struct {
	UserID int64      `json:"userId" validate:"required,gt=0"`
	Items  []CartItem `json:"items" validate:"required,min=1,dive"`
}

// BookingDetails is a booking row of the admin listing with its vaccine name resolved.
type BookingDetails struct {
	ID            int64                `json:"id"`
	UserID        int64                `json:"userId"`
	VaccineID     int64                `json:"vaccineId"`
	VaccineName   string               `json:"vaccineName"`
	NoOfDoses     int                  `json:"noOfDoses"`
	TotalCost     decimal.Decimal      `json:"totalCost"`
	Status        domain.BookingStatus `json:"status"`
	Kind          domain.BookingKind   `json:"kind"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
	CreatedAt     time.Time            `json:"createdAt"`
	CartItems     []domain.BookingItem `json:"cartItems"`
}

// OrderDetails is a booking plus the contact data of its owner. User is nil
// when the identity service could not be reached.
type OrderDetails struct {
	*domain.Booking
	User      *domain.UserContact  `json:"user"`
	CartItems []domain.BookingItem `json:"cartItems"`
}
