package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Vaccine is the nominal view the inventory service advertises for a vaccine.
type Vaccine struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type InventoryBatch struct {
	BatchID           int64
	QuantityAvailable int
	UnitPrice         decimal.Decimal
	ExpiryDate        time.Time
}

type AllocationResult struct {
	TotalCost       decimal.Decimal
	ConsumedBatches []ConsumedBatch
}

func (r *AllocationResult) Doses() int {
	n := 0
	for _, cb := range r.ConsumedBatches {
		n += cb.DosesTaken
	}
	return n
}
