package billing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("sk_test_123", srv.URL, zap.NewNop())
}

func TestCreateCheckoutSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "subscription", r.PostForm.Get("mode"))
		assert.Equal(t, "price_basic", r.PostForm.Get("line_items[0][price]"))
		assert.Equal(t, "u-1", r.PostForm.Get("client_reference_id"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cs_1","customer":"cus_1","subscription":"sub_1"}`))
	})

	s, err := c.CreateCheckoutSession(context.Background(), CheckoutParams{
		PriceID:         "price_basic",
		ClientReference: "u-1",
		SuccessURL:      "http://app/subscription/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:       "http://app/subscription/",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", s.ID)
	assert.Equal(t, "cus_1", s.Customer)
	assert.Equal(t, "sub_1", s.Subscription)
}

func TestCheckoutSessionGet(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/checkout/sessions/cs_1", r.URL.Path)
		w.Write([]byte(`{"id":"cs_1","customer":"cus_1","subscription":"sub_1"}`))
	})

	s, err := c.CheckoutSession(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Equal(t, "sub_1", s.Subscription)
}

func TestListCardPaymentMethods(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_methods", r.URL.Path)
		assert.Equal(t, "cus_1", r.URL.Query().Get("customer"))
		assert.Equal(t, "card", r.URL.Query().Get("type"))
		w.Write([]byte(`{"data":[{"id":"pm_1","card":{"brand":"visa","last4":"4242"}}]}`))
	})

	pms, err := c.ListCardPaymentMethods(context.Background(), "cus_1")
	require.NoError(t, err)
	require.Len(t, pms, 1)
	assert.Equal(t, "visa", pms[0].Card.Brand)
	assert.Equal(t, "4242", pms[0].Card.Last4)
}

func TestSubscriptionPriceFromItems(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/subscriptions/sub_1", r.URL.Path)
		w.Write([]byte(`{"id":"sub_1","items":{"data":[{"price":{"id":"price_basic"}}]}}`))
	})

	sub, err := c.Subscription(context.Background(), "sub_1")
	require.NoError(t, err)
	assert.Equal(t, "price_basic", sub.PriceID)
}

func TestCancelSubscription(t *testing.T) {
	var gotMethod string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.Write([]byte(`{"id":"sub_1","status":"canceled"}`))
	})

	require.NoError(t, c.CancelSubscription(context.Background(), "sub_1"))
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestCardErrorDecoded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	})

	err := c.AttachPaymentMethod(context.Background(), "pm_1", "cus_1")
	var ce *CardError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "card_declined", ce.Code)
	assert.Equal(t, "Your card was declined.", ce.Message)
}

func TestAPIErrorDecoded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Invalid API Key"}}`))
	})

	_, err := c.Price(context.Background(), "price_basic")
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusUnauthorized, ae.Status)
	assert.Equal(t, "invalid_request_error", ae.Type)

	var ce *CardError
	assert.False(t, errors.As(err, &ce))
}
