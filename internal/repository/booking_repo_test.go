package repository

import (
	"context"
	"testing"
	"time"

	"vaccinebooking/internal/database"
	"vaccinebooking/internal/domain"
	"vaccinebooking/internal/pkg/apperror"

	"github.com/shopspring/decimal"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	db, err := database.Connect(":memory:", log)
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func cartBooking(userID int64) *domain.Booking {
	return domain.NewBooking(userID, domain.KindCart, []domain.BookingItem{
		{
			VaccineID: 1, VaccineName: "Hep B", NoOfDoses: 7, ItemCost: decimal.NewFromInt(90),
			Batches: []domain.ConsumedBatch{{BatchID: 11, DosesTaken: 5}, {BatchID: 12, DosesTaken: 2}},
		},
		{
			VaccineID: 2, VaccineName: "MMR", NoOfDoses: 1, ItemCost: decimal.NewFromInt(25),
			Batches: []domain.ConsumedBatch{{BatchID: 21, DosesTaken: 1}},
		},
	})
}

func TestBookingRepository_CreateAndGet(t *testing.T) {
	repo := NewBookingRepository(setupDB(t))
	ctx := context.Background()

	b := cartBooking(7)
	require.NoError(t, repo.Create(ctx, b))
	require.NotZero(t, b.ID)
	require.Len(t, b.Items, 2)
	assert.NotZero(t, b.Items[0].Batches[0].ID)

	got, found, err := repo.Get(ctx, b.ID)
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, domain.KindCart, got.Kind)
	assert.True(t, got.IsCartOrder())
	assert.Equal(t, domain.BookingBooked, got.Status)
	assert.Equal(t, domain.PaymentNone, got.PaymentStatus)
	assert.Equal(t, int64(1), got.PrimaryVaccineID)
	assert.Equal(t, 8, got.TotalNoOfDoses)
	assert.True(t, decimal.NewFromInt(115).Equal(got.TotalCost))
	assert.Equal(t, "Hep B", got.Items[0].VaccineName)
	assert.Equal(t, "MMR", got.Items[1].VaccineName)
	assert.Equal(t, 3, got.PendingBatches())
}

func TestBookingRepository_GetMissing(t *testing.T) {
	repo := NewBookingRepository(setupDB(t))

	got, found, err := repo.Get(context.Background(), 404)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestBookingRepository_MarkPaymentCompletedIsConditional(t *testing.T) {
	repo := NewBookingRepository(setupDB(t))
	ctx := context.Background()

	b := cartBooking(7)
	require.NoError(t, repo.Create(ctx, b))
	paidAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	changed, err := repo.MarkPaymentCompleted(ctx, b.ID, "pay_1", paidAt)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkPaymentCompleted(ctx, b.ID, "pay_2", paidAt.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, changed)

	got, _, err := repo.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPlaced, got.Status)
	assert.Equal(t, domain.PaymentCompleted, got.PaymentStatus)
	require.NotNil(t, got.PaymentID)
	assert.Equal(t, "pay_1", *got.PaymentID)
}

func TestBookingRepository_PaymentIDIsUnique(t *testing.T) {
	repo := NewBookingRepository(setupDB(t))
	ctx := context.Background()

	first, second := cartBooking(1), cartBooking(2)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	_, err := repo.MarkPaymentCompleted(ctx, first.ID, "pay_dup", time.Now())
	require.NoError(t, err)
	_, err = repo.MarkPaymentCompleted(ctx, second.ID, "pay_dup", time.Now())
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestBookingRepository_ClaimBatchDebit(t *testing.T) {
	repo := NewBookingRepository(setupDB(t))
	ctx := context.Background()

	b := cartBooking(7)
	require.NoError(t, repo.Create(ctx, b))
	first := b.Items[0].Batches[0].ID
	other := b.Items[1].Batches[0].ID

	claimed, err := repo.ClaimBatchDebit(ctx, first)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.ClaimBatchDebit(ctx, first)
	require.NoError(t, err)
	assert.False(t, claimed, "a claimed batch must not be claimed twice")

	claimed, err = repo.ClaimBatchDebit(ctx, other)
	require.NoError(t, err)
	assert.True(t, claimed)
	require.NoError(t, repo.ReleaseBatchDebit(ctx, other))

	got, _, err := repo.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].Batches[0].Debited)
	assert.False(t, got.Items[0].Batches[1].Debited)
	assert.False(t, got.Items[1].Batches[0].Debited)
	assert.Equal(t, 2, got.PendingBatches())

	claimed, err = repo.ClaimBatchDebit(ctx, other)
	require.NoError(t, err)
	assert.True(t, claimed, "a released batch can be claimed again")
}

func TestBookingRepository_FindByUserAndAll(t *testing.T) {
	repo := NewBookingRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, cartBooking(7)))
	require.NoError(t, repo.Create(ctx, cartBooking(8)))
	require.NoError(t, repo.Create(ctx, cartBooking(7)))

	mine, err := repo.FindByUser(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, b := range mine {
		assert.Equal(t, int64(7), b.UserID)
		assert.Len(t, b.Items, 2)
	}

	all, err := repo.FindAllBookings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Less(t, all[0].ID, all[2].ID)
}

func TestPaymentLinkRepository_MarkPaidIdempotent(t *testing.T) {
	repo := NewPaymentLinkRepository(setupDB(t))
	ctx := context.Background()

	changed, err := repo.MarkPaidIdempotent(ctx, "ORDER_9", "pay_1", time.Now())
	require.NoError(t, err)
	assert.False(t, changed)

	rec := &domain.PaymentLinkRecord{
		BookingID: 9, LinkID: "plink_1", ReferenceID: "ORDER_9",
		ShortURL: "https://rzp.io/i/abc", Amount: 9000, Currency: "INR",
		Status: domain.PaymentLinkCreated,
	}
	require.NoError(t, repo.Create(ctx, rec))

	changed, err = repo.MarkPaidIdempotent(ctx, "ORDER_9", "pay_1", time.Now())
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkPaidIdempotent(ctx, "ORDER_9", "pay_1", time.Now())
	require.NoError(t, err)
	assert.False(t, changed)

	got, found, err := repo.LatestByReference(ctx, "ORDER_9")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.PaymentLinkPaid, got.Status)
	assert.Equal(t, "pay_1", *got.PaymentID)
}

func TestPaymentLinkRepository_DuplicateLinkID(t *testing.T) {
	repo := NewPaymentLinkRepository(setupDB(t))
	ctx := context.Background()

	rec := func() *domain.PaymentLinkRecord {
		return &domain.PaymentLinkRecord{BookingID: 1, LinkID: "plink_same", ReferenceID: "ORDER_1", Status: domain.PaymentLinkCreated}
	}
	require.NoError(t, repo.Create(ctx, rec()))
	assert.ErrorIs(t, repo.Create(ctx, rec()), apperror.ErrConflict)
}
