package remote

import (
	"context"
	"net/http"
	"net/url"

	"vaccinebooking/internal/domain"
	"vaccinebooking/internal/pkg/apperror"
)

type RazorpayClient struct {
	c *Client
}

func NewRazorpayClient(c *Client) *RazorpayClient {
	return &RazorpayClient{c: c}
}

type paymentLinkNotify struct {
	SMS   bool `json:"sms"`
	Email bool `json:"email"`
}

type paymentLinkBody struct {
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	ReferenceID    string            `json:"reference_id"`
	Description    string            `json:"description,omitempty"`
	Notify         paymentLinkNotify `json:"notify"`
	ReminderEnable bool              `json:"reminder_enable"`
	Notes          map[string]string `json:"notes,omitempty"`
	CallbackURL    string            `json:"callback_url,omitempty"`
	CallbackMethod string            `json:"callback_method,omitempty"`
}

func (rc *RazorpayClient) CreatePaymentLink(ctx context.Context, req domain.PaymentLinkRequest) (*domain.PaymentLink, error) {
	body := paymentLinkBody{
		Amount:         req.Amount,
		Currency:       req.Currency,
		ReferenceID:    req.ReferenceID,
		Description:    req.Description,
		Notify:         paymentLinkNotify{SMS: req.NotifySMS, Email: req.NotifyEmail},
		ReminderEnable: true,
		Notes:          req.Notes,
	}
	if req.CallbackURL != "" {
		body.CallbackURL = req.CallbackURL
		body.CallbackMethod = req.CallbackMethod
	}

	var link domain.PaymentLink
	if err := rc.c.do(ctx, http.MethodPost, "/v1/payment_links", body, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// FetchPayment reads the current state of a payment. Unknown ids become NotFound.
func (rc *RazorpayClient) FetchPayment(ctx context.Context, paymentID string) (*domain.GatewayPayment, error) {
	var p domain.GatewayPayment
	err := rc.c.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(paymentID), nil, &p)
	if IsNotFound(err) {
		return nil, apperror.NotFound("payment " + paymentID + " does not exist")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
