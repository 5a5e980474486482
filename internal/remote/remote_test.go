package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vaccinebooking/internal/domain"
	"vaccinebooking/internal/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient("test", srv.URL, 2*time.Second, opts...)
}

func TestInventoryClient_ListBatches(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/vaccine/3/inventories", r.URL.Path)
		_, _ = io.WriteString(w, `{"data":[
			{"id":11,"quantity":5,"price":"10.50","expiryDate":"2026-05-01T00:00:00.000Z"},
			{"batchId":12,"quantity":-2,"price":20,"expiryDate":"2026-06-01"},
			{"id":13,"quantity":4,"price":15,"expiryDate":null}
		]}`)
	})

	batches, err := NewInventoryClient(c).ListBatches(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, batches, 3)

	assert.Equal(t, int64(11), batches[0].BatchID)
	assert.True(t, decimal.RequireFromString("10.5").Equal(batches[0].UnitPrice))
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), batches[0].ExpiryDate.UTC())

	assert.Equal(t, int64(12), batches[1].BatchID)
	assert.Equal(t, 0, batches[1].QuantityAvailable)
	assert.True(t, batches[2].ExpiryDate.IsZero())
}

func TestInventoryClient_GetVaccineNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"no such vaccine"}`, http.StatusNotFound)
	})

	_, err := NewInventoryClient(c).GetVaccine(context.Background(), 99)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestInventoryClient_Decrement(t *testing.T) {
	var got decrementRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/vaccine/3/inventories", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, NewInventoryClient(c).Decrement(context.Background(), 3, 12, 2))
	assert.Equal(t, decrementRequest{Quantity: 2, BatchID: 12}, got)
}

func TestInventoryClient_ServerErrorKeepsStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := NewInventoryClient(c).Decrement(context.Background(), 3, 12, 2)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, "boom", se.Body)
}

func TestIdentityClient_GetUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/users/5" {
			_, _ = io.WriteString(w, `{"data":{"email":"a@b.c","mobileNumber":"9876543210"}}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	ic := NewIdentityClient(c)

	u, err := ic.GetUser(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, &domain.User{ID: 5, Email: "a@b.c", MobileNumber: "9876543210"}, u)

	_, err = ic.GetUser(context.Background(), 6)
	assert.ErrorIs(t, err, apperror.ErrUserNotFound)
}

func TestIdentityClient_FindUserByEmail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/email/a@b.c", r.URL.Path)
		_, _ = io.WriteString(w, `{"data":{"id":5,"email":"a@b.c"}}`)
	})

	u, err := NewIdentityClient(c).FindUserByEmail(context.Background(), "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, int64(5), u.ID)
}

func TestReminderClient_SendConfirmation(t *testing.T) {
	var got confirmationRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/send-confirmation-from-order", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	})

	require.NoError(t, NewReminderClient(c).SendConfirmation(context.Background(), 42, true))
	assert.Equal(t, confirmationRequest{OrderID: 42, IsCartOrder: true}, got)
}

func TestRazorpayClient_CreatePaymentLink(t *testing.T) {
	var got paymentLinkBody
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "/v1/payment_links", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"id":"plink_1","short_url":"https://rzp.io/i/x","reference_id":"ORDER_17","amount":9000,"currency":"INR","status":"created"}`)
	}, WithBasicAuth("rzp_test", "secret"))

	link, err := NewRazorpayClient(c).CreatePaymentLink(context.Background(), domain.PaymentLinkRequest{
		Amount: 9000, Currency: "INR", ReferenceID: "ORDER_17",
		NotifySMS: true, NotifyEmail: true,
		CallbackURL: "https://app/payment", CallbackMethod: "get",
		Notes: map[string]string{"order_id": "17"},
	})
	require.NoError(t, err)

	assert.Equal(t, "https://rzp.io/i/x", link.ShortURL)
	assert.Equal(t, int64(9000), got.Amount)
	assert.Equal(t, "ORDER_17", got.ReferenceID)
	assert.True(t, got.Notify.SMS)
	assert.True(t, got.Notify.Email)
	assert.Equal(t, "get", got.CallbackMethod)
	assert.Equal(t, "17", got.Notes["order_id"])
}

func TestRazorpayClient_FetchPayment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/payments/pay_1" {
			_, _ = io.WriteString(w, `{"id":"pay_1","status":"captured","amount":9000,"currency":"INR"}`)
			return
		}
		http.Error(w, `{"error":{"code":"BAD_REQUEST_ERROR"}}`, http.StatusNotFound)
	})
	rc := NewRazorpayClient(c)

	p, err := rc.FetchPayment(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.True(t, p.Settled())

	_, err = rc.FetchPayment(context.Background(), "pay_missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
