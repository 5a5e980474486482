package remote

import (
	"context"
	"net/http"
)

type ReminderClient struct {
	c *Client
}

func NewReminderClient(c *Client) *ReminderClient {
	return &ReminderClient{c: c}
}

type confirmationRequest struct {
	OrderID     int64 `json:"orderId"`
	IsCartOrder bool  `json:"isCartOrder"`
}

// SendConfirmation asks the reminder service to mail the booking confirmation.
func (rc *ReminderClient) SendConfirmation(ctx context.Context, bookingID int64, isCartOrder bool) error {
	return rc.c.do(ctx, http.MethodPost, "/api/v1/send-confirmation-from-order",
		confirmationRequest{OrderID: bookingID, IsCartOrder: isCartOrder}, nil)
}
