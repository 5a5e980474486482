package repository

import (
	"context"
	"errors"
	"time"

	"vaccinebooking/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID            int64              `gorm:"column:id;primaryKey"`
	UserID        int64              `gorm:"column:user_id;index"`
	VaccineID     int64              `gorm:"column:vaccine_id"`
	NoOfDoses     int                `gorm:"column:no_of_doses"`
	TotalCost     decimal.Decimal    `gorm:"column:total_cost;type:decimal(12,2)"`
	Status        string             `gorm:"column:status"`
	Kind          string             `gorm:"column:kind;default:single"`
	PaymentID     *string            `gorm:"column:payment_id;uniqueIndex"`
	PaymentStatus string             `gorm:"column:payment_status;default:none"`
	PaidAt        *time.Time         `gorm:"column:paid_at"`
	CreatedAt     time.Time          `gorm:"column:created_at"`
	UpdatedAt     time.Time          `gorm:"column:updated_at"`
	Items         []bookingItemModel `gorm:"foreignKey:BookingID"`
}

func (bookingModel) TableName() string { return "bookings" }

type bookingItemModel struct {
	ID          int64                   `gorm:"column:id;primaryKey"`
	BookingID   int64                   `gorm:"column:booking_id;index"`
	Position    int                     `gorm:"column:position"`
	VaccineID   int64                   `gorm:"column:vaccine_id"`
	VaccineName string                  `gorm:"column:vaccine_name"`
	NoOfDoses   int                     `gorm:"column:no_of_doses"`
	ItemCost    decimal.Decimal         `gorm:"column:item_cost;type:decimal(12,2)"`
	Batches     []bookingItemBatchModel `gorm:"foreignKey:BookingItemID"`
}

func (bookingItemModel) TableName() string { return "booking_items" }

type bookingItemBatchModel struct {
	ID            int64 `gorm:"column:id;primaryKey"`
	BookingItemID int64 `gorm:"column:booking_item_id;index"`
	BatchID       int64 `gorm:"column:batch_id"`
	DosesTaken    int   `gorm:"column:doses_taken"`
	Debited       bool  `gorm:"column:debited;default:false"`
}

func (bookingItemBatchModel) TableName() string { return "booking_item_batches" }

func toDomainBooking(m bookingModel) *domain.Booking {
	items := make([]domain.BookingItem, 0, len(m.Items))
	for _, im := range m.Items {
		batches := make([]domain.ConsumedBatch, 0, len(im.Batches))
		for _, bm := range im.Batches {
			batches = append(batches, domain.ConsumedBatch{
				ID:         bm.ID,
				BatchID:    bm.BatchID,
				DosesTaken: bm.DosesTaken,
				Debited:    bm.Debited,
			})
		}
		items = append(items, domain.BookingItem{
			VaccineID:   im.VaccineID,
			VaccineName: im.VaccineName,
			NoOfDoses:   im.NoOfDoses,
			ItemCost:    im.ItemCost,
			Batches:     batches,
		})
	}

	return &domain.Booking{
		ID:               m.ID,
		UserID:           m.UserID,
		PrimaryVaccineID: m.VaccineID,
		TotalNoOfDoses:   m.NoOfDoses,
		TotalCost:        m.TotalCost,
		Status:           domain.BookingStatus(m.Status),
		Kind:             domain.BookingKind(m.Kind),
		Items:            items,
		PaymentID:        m.PaymentID,
		PaymentStatus:    domain.PaymentStatus(m.PaymentStatus),
		PaidAt:           m.PaidAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	items := make([]bookingItemModel, 0, len(b.Items))
	for i, it := range b.Items {
		batches := make([]bookingItemBatchModel, 0, len(it.Batches))
		for _, cb := range it.Batches {
			batches = append(batches, bookingItemBatchModel{
				ID:         cb.ID,
				BatchID:    cb.BatchID,
				DosesTaken: cb.DosesTaken,
				Debited:    cb.Debited,
			})
		}
		items = append(items, bookingItemModel{
			Position:    i,
			VaccineID:   it.VaccineID,
			VaccineName: it.VaccineName,
			NoOfDoses:   it.NoOfDoses,
			ItemCost:    it.ItemCost,
			Batches:     batches,
		})
	}

	return bookingModel{
		ID:            b.ID,
		UserID:        b.UserID,
		VaccineID:     b.PrimaryVaccineID,
		NoOfDoses:     b.TotalNoOfDoses,
		TotalCost:     b.TotalCost,
		Status:        string(b.Status),
		Kind:          string(b.Kind),
		PaymentID:     b.PaymentID,
		PaymentStatus: string(b.PaymentStatus),
		PaidAt:        b.PaidAt,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
		Items:         items,
	}
}

// Create stores the booking with its items and batch breakdown in one
// transaction and copies the assigned ids back into b.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return mapError(err)
	}
	*b = *toDomainBooking(m)
	return nil
}

// Get returns found=false with a nil error when no booking has the id.
func (r *BookingRepository) Get(ctx context.Context, id int64) (*domain.Booking, bool, error) {
	var m bookingModel
	err := r.withItems(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, mapError(err)
	}
	return toDomainBooking(m), true, nil
}

func (r *BookingRepository) FindAllBookings(ctx context.Context) ([]*domain.Booking, error) {
	var rows []bookingModel
	if err := r.withItems(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, mapError(err)
	}
	return toDomainBookings(rows), nil
}

func (r *BookingRepository) FindByUser(ctx context.Context, userID int64) ([]*domain.Booking, error) {
	var rows []bookingModel
	err := r.withItems(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, mapError(err)
	}
	return toDomainBookings(rows), nil
}

// ClaimBatchDebit marks a consumed batch debited unless it already is.
// claimed reports whether this call made the change.
func (r *BookingRepository) ClaimBatchDebit(ctx context.Context, batchRowID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&bookingItemBatchModel{}).
		Where("id = ? AND debited = ?", batchRowID, false).
		Update("debited", true)
	if res.Error != nil {
		return false, mapError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ReleaseBatchDebit undoes a claim whose remote decrement failed.
func (r *BookingRepository) ReleaseBatchDebit(ctx context.Context, batchRowID int64) error {
	err := r.db.WithContext(ctx).
		Model(&bookingItemBatchModel{}).
		Where("id = ?", batchRowID).
		Update("debited", false).Error
	return mapError(err)
}

// MarkPaymentCompleted moves the booking to placed/completed unless it is
// already completed. changed reports whether this call did the transition.
func (r *BookingRepository) MarkPaymentCompleted(ctx context.Context, id int64, paymentID string, paidAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&bookingModel{}).
		Where("id = ? AND payment_status <> ?", id, string(domain.PaymentCompleted)).
		Updates(map[string]interface{}{
			"status":         string(domain.BookingPlaced),
			"payment_status": string(domain.PaymentCompleted),
			"payment_id":     paymentID,
			"paid_at":        paidAt,
			"updated_at":     paidAt,
		})
	if res.Error != nil {
		return false, mapError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *BookingRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Items.Batches", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

func toDomainBookings(rows []bookingModel) []*domain.Booking {
	out := make([]*domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainBooking(m))
	}
	return out
}
