package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"vaccinebooking/internal/domain"
	"vaccinebooking/internal/pkg/apperror"

	"github.com/shopspring/decimal"
)

type InventoryClient struct {
	c *Client
}

func NewInventoryClient(c *Client) *InventoryClient {
	return &InventoryClient{c: c}
}

type vaccinePayload struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// GetVaccine returns the nominal vaccine record. A 404 becomes NotFound.
func (ic *InventoryClient) GetVaccine(ctx context.Context, vaccineID int64) (*domain.Vaccine, error) {
	var env envelope[vaccinePayload]
	err := ic.c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/vaccine/%d", vaccineID), nil, &env)
	if IsNotFound(err) {
		return nil, apperror.NotFound(fmt.Sprintf("vaccine %d does not exist", vaccineID))
	}
	if err != nil {
		return nil, err
	}
	return &domain.Vaccine{
		ID:       vaccineID,
		Name:     env.Data.Name,
		Price:    env.Data.Price,
		Quantity: env.Data.Quantity,
	}, nil
}

type batchPayload struct {
	ID         int64           `json:"id"`
	BatchID    int64           `json:"batchId"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	ExpiryDate expiryDate      `json:"expiryDate"`
}

// ListBatches returns every inventory batch of the vaccine in the order the
// inventory service sent them.
func (ic *InventoryClient) ListBatches(ctx context.Context, vaccineID int64) ([]domain.InventoryBatch, error) {
	var env envelope[[]batchPayload]
	err := ic.c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/vaccine/%d/inventories", vaccineID), nil, &env)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]domain.InventoryBatch, 0, len(env.Data))
	for _, p := range env.Data {
		id := p.BatchID
		if id == 0 {
			id = p.ID
		}
		qty := p.Quantity
		if qty < 0 {
			qty = 0
		}
		out = append(out, domain.InventoryBatch{
			BatchID:           id,
			QuantityAvailable: qty,
			UnitPrice:         p.Price,
			ExpiryDate:        time.Time(p.ExpiryDate),
		})
	}
	return out, nil
}

type decrementRequest struct {
	Quantity int   `json:"quantity"`
	BatchID  int64 `json:"batchId"`
}

// Decrement lowers one batch of the vaccine by quantity.
func (ic *InventoryClient) Decrement(ctx context.Context, vaccineID, batchID int64, quantity int) error {
	return ic.c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/vaccine/%d/inventories", vaccineID),
		decrementRequest{Quantity: quantity, BatchID: batchID}, nil)
}

// expiryDate accepts RFC 3339 timestamps and plain dates. Empty or null stays zero.
type expiryDate time.Time

func (d *expiryDate) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || strings.TrimSpace(*s) == "" {
		*d = expiryDate(time.Time{})
		return nil
	}
	v := strings.TrimSpace(*s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			*d = expiryDate(t)
			return nil
		}
	}
	return fmt.Errorf("invalid expiryDate %q", v)
}
