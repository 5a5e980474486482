package repository

import (
	"errors"
	"strings"

	"vaccinebooking/internal/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// mapError turns driver errors into apperror kinds. Unique violations become
// conflicts; everything else is a repository error.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return apperror.Conflict(err.Error())
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(err.Error())
	}
	return apperror.Repository(err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// AutoMigrate creates or updates every table this service owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&bookingModel{},
		&bookingItemModel{},
		&bookingItemBatchModel{},
		&paymentLinkModel{},
	)
}
