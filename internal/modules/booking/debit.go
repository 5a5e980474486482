package booking

import (
	"context"

	"vaccinebooking/internal/domain"

	"github.com/sirupsen/logrus"
)

type Decrementer interface {
	Decrement(ctx context.Context, vaccineID, batchID int64, quantity int) error
}

// BatchMarker records which consumed batches were pushed to the inventory.
// ClaimBatchDebit flips a batch to debited only if it was not already and
// reports whether this call did it.
type BatchMarker interface {
	ClaimBatchDebit(ctx context.Context, batchRowID int64) (bool, error)
	ReleaseBatchDebit(ctx context.Context, batchRowID int64) error
}

// InventoryDebiter pushes consumed batches of a stored booking to the remote
// inventory. Each batch is claimed in the store before the remote call, so a
// batch is decremented at most once even when creation and payment
// finalization both try it.
type InventoryDebiter struct {
	inventory Decrementer
	store     BatchMarker
	log       logrus.FieldLogger
}

func NewInventoryDebiter(inventory Decrementer, store BatchMarker, log logrus.FieldLogger) *InventoryDebiter {
	return &InventoryDebiter{inventory: inventory, store: store, log: log}
}

// DebitPending returns how many batches were debited and how many failed.
// Failures are logged and never returned: the booking stays as it is.
func (d *InventoryDebiter) DebitPending(ctx context.Context, b *domain.Booking) (debited, failed int) {
	for i := range b.Items {
		item := &b.Items[i]
		for j := range item.Batches {
			cb := &item.Batches[j]
			if cb.Debited {
				continue
			}
			log := d.log.WithFields(logrus.Fields{
				"booking_id": b.ID,
				"vaccine_id": item.VaccineID,
				"batch_id":   cb.BatchID,
				"doses":      cb.DosesTaken,
			})

			claimed, err := d.store.ClaimBatchDebit(ctx, cb.ID)
			if err != nil {
				failed++
				log.WithError(err).Warn("could not claim batch for debit; skipped")
				continue
			}
			if !claimed {
				// someone else already debited it
				cb.Debited = true
				continue
			}

			if err := d.inventory.Decrement(ctx, item.VaccineID, cb.BatchID, cb.DosesTaken); err != nil {
				failed++
				log.WithError(err).Warn("inventory decrement failed; booking kept without debit")
				if rerr := d.store.ReleaseBatchDebit(ctx, cb.ID); rerr != nil {
					log.WithError(rerr).Error("batch left marked debited after failed decrement")
				}
				continue
			}
			cb.Debited = true
			debited++
		}
	}
	return debited, failed
}
