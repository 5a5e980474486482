package repository

import (
	"context"
	"errors"
	"time"

	"vaccinebooking/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentLinkRepository struct {
	db *gorm.DB
}

func NewPaymentLinkRepository(db *gorm.DB) *PaymentLinkRepository {
	return &PaymentLinkRepository{db: db}
}

type paymentLinkModel struct {
	ID          int64      `gorm:"column:id;primaryKey"`
	BookingID   int64      `gorm:"column:booking_id;index"`
	LinkID      string     `gorm:"column:link_id;uniqueIndex"`
	ReferenceID string     `gorm:"column:reference_id;index"`
	ShortURL    string     `gorm:"column:short_url"`
	Amount      int64      `gorm:"column:amount"`
	Currency    string     `gorm:"column:currency"`
	Status      string     `gorm:"column:status"`
	PaymentID   *string    `gorm:"column:payment_id"`
	PaidAt      *time.Time `gorm:"column:paid_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (paymentLinkModel) TableName() string { return "payment_links" }

func toDomainPaymentLink(m paymentLinkModel) *domain.PaymentLinkRecord {
	return &domain.PaymentLinkRecord{
		ID:          m.ID,
		BookingID:   m.BookingID,
		LinkID:      m.LinkID,
		ReferenceID: m.ReferenceID,
		ShortURL:    m.ShortURL,
		Amount:      m.Amount,
		Currency:    m.Currency,
		Status:      domain.PaymentLinkStatus(m.Status),
		PaymentID:   m.PaymentID,
		PaidAt:      m.PaidAt,
		CreatedAt:   m.CreatedAt,
	}
}

func (r *PaymentLinkRepository) Create(ctx context.Context, rec *domain.PaymentLinkRecord) error {
	m := paymentLinkModel{
		BookingID:   rec.BookingID,
		LinkID:      rec.LinkID,
		ReferenceID: rec.ReferenceID,
		ShortURL:    rec.ShortURL,
		Amount:      rec.Amount,
		Currency:    rec.Currency,
		Status:      string(rec.Status),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return mapError(err)
	}
	*rec = *toDomainPaymentLink(m)
	return nil
}

// LatestByReference returns the newest link for the reference id, if any.
func (r *PaymentLinkRepository) LatestByReference(ctx context.Context, referenceID string) (*domain.PaymentLinkRecord, bool, error) {
	var m paymentLinkModel
	err := r.db.WithContext(ctx).
		Where("reference_id = ?", referenceID).
		Order("id DESC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, mapError(err)
	}
	return toDomainPaymentLink(m), true, nil
}

// MarkPaidIdempotent records the payment on the newest link of the reference.
// It reports false when there is no link or it was already paid.
func (r *PaymentLinkRepository) MarkPaidIdempotent(ctx context.Context, referenceID, paymentID string, paidAt time.Time) (bool, error) {
	var changed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m paymentLinkModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("reference_id = ?", referenceID).
			Order("id DESC").
			First(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if m.Status == string(domain.PaymentLinkPaid) {
			return nil
		}
		res := tx.Model(&paymentLinkModel{}).Where("id = ?", m.ID).Updates(map[string]interface{}{
			"status":     string(domain.PaymentLinkPaid),
			"payment_id": paymentID,
			"paid_at":    paidAt,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("payment link row not updated")
		}
		changed = true
		return nil
	})
	return changed, mapError(err)
}
