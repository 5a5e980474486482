package payment

import (
	"strings"

	"vaccinebooking/internal/domain"
)

// ReconcileRequest is the gateway callback. The flat fields come from the
// redirect query or a custom JSON post; Payload carries the gateway's own
// webhook envelope.
type ReconcileRequest struct {
	PaymentID   string `form:"payment_id" json:"payment_id"`
	OrderID     string `form:"order_id" json:"order_id"`
	ReferenceID string `form:"reference_id" json:"reference_id"`

	RazorpayPaymentID   string `form:"razorpay_payment_id" json:"razorpay_payment_id"`
	RazorpayReferenceID string `form:"razorpay_payment_link_reference_id" json:"razorpay_payment_link_reference_id"`

	Payload *webhookPayload `form:"-" json:"payload"`
}

type webhookPayload struct {
	Payment struct {
		Entity struct {
			ID string `json:"id"`
		} `json:"entity"`
	} `json:"payment"`
	PaymentLink struct {
		Entity struct {
			ReferenceID string `json:"reference_id"`
		} `json:"entity"`
	} `json:"payment_link"`
}

// Resolve picks the payment id and reference id. reference_id wins over
// order_id, which is turned into ORDER_<order_id>.
func (r ReconcileRequest) Resolve() (paymentID, referenceID string) {
	paymentID = firstNonEmpty(r.PaymentID, r.RazorpayPaymentID)
	referenceID = firstNonEmpty(r.ReferenceID, r.RazorpayReferenceID)
	if r.Payload != nil {
		paymentID = firstNonEmpty(paymentID, r.Payload.Payment.Entity.ID)
		referenceID = firstNonEmpty(referenceID, r.Payload.PaymentLink.Entity.ReferenceID)
	}
	if referenceID == "" {
		if orderID := strings.TrimSpace(r.OrderID); orderID != "" {
			referenceID = domain.ReferencePrefixSingle + orderID
		}
	}
	return paymentID, referenceID
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
