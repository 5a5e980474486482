package payment

import (
	"testing"

	"vaccinebooking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name    string
		req     ReconcileRequest
		payment string
		ref     string
	}{
		{"reference wins", ReconcileRequest{PaymentID: "pay_1", OrderID: "9", ReferenceID: "CART_4"}, "pay_1", "CART_4"},
		{"order id becomes single reference", ReconcileRequest{PaymentID: "pay_1", OrderID: " 9 "}, "pay_1", "ORDER_9"},
		{"redirect params", ReconcileRequest{RazorpayPaymentID: "pay_2", RazorpayReferenceID: "CART_5"}, "pay_2", "CART_5"},
		{"nothing", ReconcileRequest{}, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payment, ref := tc.req.Resolve()
			assert.Equal(t, tc.payment, payment)
			assert.Equal(t, tc.ref, ref)
		})
	}
}

func TestResolve_WebhookPayload(t *testing.T) {
	req := ReconcileRequest{Payload: &webhookPayload{}}
	req.Payload.Payment.Entity.ID = "pay_3"
	req.Payload.PaymentLink.Entity.ReferenceID = "CART_6"

	payment, ref := req.Resolve()

	assert.Equal(t, "pay_3", payment)
	assert.Equal(t, "CART_6", ref)
}

func TestParseReference(t *testing.T) {
	ref, err := ParseReference("CART_42")
	require.NoError(t, err)
	assert.Equal(t, Reference{BookingID: 42, Kind: domain.KindCart}, ref)

	ref, err = ParseReference("ORDER_17")
	require.NoError(t, err)
	assert.Equal(t, Reference{BookingID: 17, Kind: domain.KindSingle}, ref)
	assert.Equal(t, "ORDER_17", ref.String())

	ref, err = ParseReference("17")
	require.NoError(t, err)
	assert.Equal(t, domain.KindSingle, ref.Kind)

	for _, bad := range []string{"", "CART_", "CART_x", "ORDER_-1", "INV_3", "ORDER_+17", "ORDER_017", "CART_042", "+17", "0"} {
		_, err := ParseReference(bad)
		assert.Error(t, err, bad)
	}
}
