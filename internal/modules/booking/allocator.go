package booking

import (
	"context"
	"sort"
	"time"

	"vaccinebooking/internal/domain"
	"vaccinebooking/internal/pkg/apperror"

	"github.com/shopspring/decimal"
)

// costScale is the number of decimal places stored for item and booking costs.
const costScale = 2

const (
	insufficientStockMessage     = "Booking Failed"
	insufficientStockExplanation = "Not enough total stock in all inventories"
)

// Allocator prices a dose request against the remote inventory batches of a
// vaccine. It never mutates inventory.
type Allocator struct {
	batches BatchSource
}

func NewAllocator(batches BatchSource) *Allocator {
	return &Allocator{batches: batches}
}

func (a *Allocator) Allocate(ctx context.Context, vaccineID int64, requestedDoses int) (*domain.AllocationResult, error) {
	if requestedDoses <= 0 {
		return nil, apperror.Validation("noOfDoses must be greater than zero")
	}
	batches, err := a.batches.ListBatches(ctx, vaccineID)
	if err != nil {
		return nil, err
	}
	return AllocateFEFO(batches, requestedDoses)
}

// AllocateFEFO consumes batches first-expiry-first. Ties keep input order and
// batches without an expiry date go last. Either every requested dose is
// covered or the call fails with InsufficientStock and no result. The cost is
// rounded to whole paise so stored item costs always add up to the total.
func AllocateFEFO(batches []domain.InventoryBatch, requestedDoses int) (*domain.AllocationResult, error) {
	if requestedDoses <= 0 {
		return nil, apperror.Validation("noOfDoses must be greater than zero")
	}

	sorted := make([]domain.InventoryBatch, len(batches))
	copy(sorted, batches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return expiresBefore(sorted[i].ExpiryDate, sorted[j].ExpiryDate)
	})

	remaining := requestedDoses
	res := &domain.AllocationResult{TotalCost: decimal.Zero}
	for _, b := range sorted {
		if remaining == 0 {
			break
		}
		if b.QuantityAvailable <= 0 {
			continue
		}
		take := min(remaining, b.QuantityAvailable)
		res.TotalCost = res.TotalCost.Add(b.UnitPrice.Mul(decimal.NewFromInt(int64(take))))
		res.ConsumedBatches = append(res.ConsumedBatches, domain.ConsumedBatch{
			BatchID:    b.BatchID,
			DosesTaken: take,
		})
		remaining -= take
	}

	if remaining > 0 {
		return nil, apperror.InsufficientStock(insufficientStockMessage, insufficientStockExplanation)
	}
	res.TotalCost = res.TotalCost.Round(costScale)
	return res, nil
}

func expiresBefore(a, b time.Time) bool {
	if a.IsZero() {
		return false
	}
	if b.IsZero() {
		return true
	}
	return a.Before(b)
}
