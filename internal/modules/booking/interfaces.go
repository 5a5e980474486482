package booking

import (
	"context"

	"vaccinebooking/internal/domain"
)

// BookingStore is the persistence contract the aggregator needs.
type BookingStore interface {
	Create(ctx context.Context, b *domain.Booking) error
	Get(ctx context.Context, id int64) (*domain.Booking, bool, error)
	FindAllBookings(ctx context.Context) ([]*domain.Booking, error)
	FindByUser(ctx context.Context, userID int64) ([]*domain.Booking, error)
	ClaimBatchDebit(ctx context.Context, batchRowID int64) (bool, error)
	ReleaseBatchDebit(ctx context.Context, batchRowID int64) error
}

type BatchSource interface {
	ListBatches(ctx context.Context, vaccineID int64) ([]domain.InventoryBatch, error)
}

type InventoryClient interface {
	BatchSource
	GetVaccine(ctx context.Context, vaccineID int64) (*domain.Vaccine, error)
	Decrement(ctx context.Context, vaccineID, batchID int64, quantity int) error
}

type IdentityClient interface {
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

type VaccineNameLookup interface {
	Name(ctx context.Context, vaccineID int64) (string, error)
}
