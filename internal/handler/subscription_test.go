package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tabegoro/tabegoro/internal/billing"
	"github.com/tabegoro/tabegoro/internal/config"
	"github.com/tabegoro/tabegoro/internal/model"
	"github.com/tabegoro/tabegoro/internal/repository"
)

// fakeProvider scripts provider responses per operation.
type fakeProvider struct {
	session    billing.CheckoutSession
	sessionErr error
	intent     billing.SetupIntent
	intentErr  error
	customer   billing.Customer
	cards      []billing.PaymentMethod
	sub        billing.Subscription
	price      billing.Price
	attachErr  error
	cancelErr  error

	cancelled []string
	attached  []string
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, _ billing.CheckoutParams) (billing.CheckoutSession, error) {
	return f.session, f.sessionErr
}
func (f *fakeProvider) CheckoutSession(_ context.Context, _ string) (billing.CheckoutSession, error) {
	return f.session, f.sessionErr
}
func (f *fakeProvider) CreateSetupIntent(_ context.Context, _ string) (billing.SetupIntent, error) {
	return f.intent, f.intentErr
}
func (f *fakeProvider) Customer(_ context.Context, _ string) (billing.Customer, error) {
	return f.customer, nil
}
func (f *fakeProvider) ListCardPaymentMethods(_ context.Context, _ string) ([]billing.PaymentMethod, error) {
	return f.cards, nil
}
func (f *fakeProvider) PaymentMethod(_ context.Context, id string) (billing.PaymentMethod, error) {
	for _, pm := range f.cards {
		if pm.ID == id {
			return pm, nil
		}
	}
	return billing.PaymentMethod{ID: id}, nil
}
func (f *fakeProvider) AttachPaymentMethod(_ context.Context, id, _ string) error {
	if f.attachErr != nil {
		return f.attachErr
	}
	f.attached = append(f.attached, id)
	return nil
}
func (f *fakeProvider) SetDefaultPaymentMethod(_ context.Context, _, _ string) error { return nil }
func (f *fakeProvider) Subscription(_ context.Context, _ string) (billing.Subscription, error) {
	return f.sub, nil
}
func (f *fakeProvider) Price(_ context.Context, _ string) (billing.Price, error) {
	return f.price, nil
}
func (f *fakeProvider) CancelSubscription(_ context.Context, id string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = append(f.cancelled, id)
	return nil
}

// fakeStore records billing-store writes.
type fakeStore struct {
	users     map[string]model.User
	confirmed map[string]repository.CheckoutResult
	cleared   []string
	cards     []string
}

func newFakeStore(users ...model.User) *fakeStore {
	s := &fakeStore{
		users:     map[string]model.User{},
		confirmed: map[string]repository.CheckoutResult{},
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeStore) GetByID(_ context.Context, id string) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}
func (s *fakeStore) ConfirmCheckout(_ context.Context, userID string, res repository.CheckoutResult) error {
	s.confirmed[userID] = res
	return nil
}
func (s *fakeStore) ClearSubscription(_ context.Context, userID string) error {
	s.cleared = append(s.cleared, userID)
	return nil
}
func (s *fakeStore) UpdateCard(_ context.Context, userID, name, brand, last4 string) error {
	s.cards = append(s.cards, userID+":"+name+":"+brand+":"+last4)
	return nil
}

func subCtx(t *testing.T, method, target, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set("user_id", userID)
	}
	return c, rec
}

func newSubscriptionHandler(store *fakeStore, provider *fakeProvider) *SubscriptionHandler {
	cfg := config.Config{
		PayPublicKey: "pk_test_1",
		PayPriceID:   "price_basic",
		Location:     time.UTC,
	}
	return NewSubscriptionHandler(cfg, store, store, provider, zap.NewNop())
}

func TestCheckoutSuccessPersistsEverything(t *testing.T) {
	store := newFakeStore(model.User{ID: "u-1", Username: "taro"})
	provider := &fakeProvider{
		session:  billing.CheckoutSession{ID: "cs_1", Customer: "cus_1", Subscription: "sub_1"},
		intent:   billing.SetupIntent{ID: "seti_1", ClientSecret: "seti_secret"},
		customer: billing.Customer{ID: "cus_1", Name: "Taro Yamada"},
		cards:    []billing.PaymentMethod{{ID: "pm_1", Card: billing.Card{Brand: "visa", Last4: "4242"}}},
		sub:      billing.Subscription{ID: "sub_1", PriceID: "price_basic"},
		price:    billing.Price{ID: "price_basic", UnitAmount: 300},
	}
	h := newSubscriptionHandler(store, provider)

	c, rec := subCtx(t, http.MethodPost, "/v1/subscription/success", `{"session_id":"cs_1"}`, "u-1")
	require.NoError(t, h.Success(c))
	require.Equal(t, http.StatusOK, rec.Code)

	res, ok := store.confirmed["u-1"]
	require.True(t, ok, "checkout should have been confirmed")
	assert.Equal(t, "cus_1", res.CustomerID)
	assert.Equal(t, "sub_1", res.SubscriptionID)
	assert.Equal(t, "seti_secret", res.SetupIntent)
	assert.Equal(t, "Taro Yamada", res.CardName)
	assert.Equal(t, "visa", res.CardBrand)
	assert.Equal(t, "4242", res.CardLast4)
	assert.Equal(t, 300, res.Amount)
	assert.Equal(t, 28, res.TaxIncluded)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "seti_secret", body["client_secret"])
	assert.Equal(t, "/mypage/", body["redirect"])
}

func TestCheckoutSuccessProviderFailureLeavesUserUntouched(t *testing.T) {
	store := newFakeStore(model.User{ID: "u-1"})
	provider := &fakeProvider{
		session:   billing.CheckoutSession{ID: "cs_1", Customer: "cus_1", Subscription: "sub_1"},
		intentErr: &billing.APIError{Status: 500, Type: "api_error", Message: "boom"},
	}
	h := newSubscriptionHandler(store, provider)

	c, rec := subCtx(t, http.MethodPost, "/v1/subscription/success", `{"session_id":"cs_1"}`, "u-1")
	require.NoError(t, h.Success(c))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Empty(t, store.confirmed)
	assert.Contains(t, rec.Body.String(), "/subscription/")
}

func TestCheckoutSuccessRequiresSessionID(t *testing.T) {
	store := newFakeStore(model.User{ID: "u-1"})
	h := newSubscriptionHandler(store, &fakeProvider{})

	c, rec := subCtx(t, http.MethodPost, "/v1/subscription/success", `{}`, "u-1")
	require.NoError(t, h.Success(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCheckoutSessionRejectsExistingSubscriber(t *testing.T) {
	store := newFakeStore(model.User{ID: "u-1", IsPaymentStatus: true})
	h := newSubscriptionHandler(store, &fakeProvider{})

	c, rec := subCtx(t, http.MethodPost, "/v1/subscription/checkout", "", "u-1")
	require.NoError(t, h.CreateCheckoutSession(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCheckoutCancelledChangesNothing(t *testing.T) {
	store := newFakeStore(model.User{ID: "u-1"})
	provider := &fakeProvider{}
	h := newSubscriptionHandler(store, provider)

	c, rec := subCtx(t, http.MethodGet, "/v1/subscription/cancel", "", "u-1")
	require.NoError(t, h.CheckoutCancelled(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/subscription/", body["redirect"])
	assert.Empty(t, store.confirmed)
	assert.Empty(t, store.cleared)
	assert.Empty(t, provider.cancelled)
}

func TestCancelClearsLocalStateAfterProvider(t *testing.T) {
	store := newFakeStore(model.User{ID: "u-1", IsPaymentStatus: true, PaySubscriptionID: "sub_1"})
	provider := &fakeProvider{}
	h := newSubscriptionHandler(store, provider)

	c, rec := subCtx(t, http.MethodDelete, "/v1/subscription", "", "u-1")
	require.NoError(t, h.Cancel(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"sub_1"}, provider.cancelled)
	assert.Equal(t, []string{"u-1"}, store.cleared)
}

func TestCancelProviderFailureKeepsLocalState(t *testing.T) {
	store := newFakeStore(model.User{ID: "u-1", IsPaymentStatus: true, PaySubscriptionID: "sub_1"})
	provider := &fakeProvider{cancelErr: &billing.APIError{Status: 503, Type: "api_error"}}
	h := newSubscriptionHandler(store, provider)

	c, rec := subCtx(t, http.MethodDelete, "/v1/subscription", "", "u-1")
	require.NoError(t, h.Cancel(c))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Empty(t, store.cleared)
}

func TestUpdateCardDeclinedSurfacesCardMessage(t *testing.T) {
	store := newFakeStore(model.User{
		ID: "u-1", IsPaymentStatus: true,
		PayCustomerID: "cus_1", PaySubscriptionID: "sub_1",
	})
	provider := &fakeProvider{
		attachErr: &billing.CardError{Code: "card_declined", Message: "Your card was declined."},
	}
	h := newSubscriptionHandler(store, provider)

	c, rec := subCtx(t, http.MethodPut, "/v1/subscription/card", `{"payment_method_id":"pm_2","card_name":"Taro Yamada"}`, "u-1")
	require.NoError(t, h.UpdateCard(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Your card was declined.")
	assert.Empty(t, store.cards)
}

func TestUpdateCardHappyPath(t *testing.T) {
	store := newFakeStore(model.User{
		ID: "u-1", IsPaymentStatus: true,
		PayCustomerID: "cus_1", PaySubscriptionID: "sub_1",
	})
	provider := &fakeProvider{
		cards: []billing.PaymentMethod{{ID: "pm_2", Card: billing.Card{Brand: "mastercard", Last4: "5100"}}},
	}
	h := newSubscriptionHandler(store, provider)

	c, rec := subCtx(t, http.MethodPut, "/v1/subscription/card", `{"payment_method_id":"pm_2","card_name":"Taro Yamada"}`, "u-1")
	require.NoError(t, h.UpdateCard(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, store.cards, 1)
	assert.Equal(t, "u-1:Taro Yamada:mastercard:5100", store.cards[0])
}

func TestUpdateCardStoresTheSubmittedHolderName(t *testing.T) {
	store := newFakeStore(model.User{
		ID: "u-1", IsPaymentStatus: true,
		PayCustomerID: "cus_1", PaySubscriptionID: "sub_1",
	})
	// The provider customer carries a different name; the one typed into
	// the form must win.
	provider := &fakeProvider{
		customer: billing.Customer{ID: "cus_1", Name: "Taro Yamada"},
		cards:    []billing.PaymentMethod{{ID: "pm_2", Card: billing.Card{Brand: "visa", Last4: "4242"}}},
	}
	h := newSubscriptionHandler(store, provider)

	c, rec := subCtx(t, http.MethodPut, "/v1/subscription/card", `{"payment_method_id":"pm_2","card_name":"  Hanako Suzuki  "}`, "u-1")
	require.NoError(t, h.UpdateCard(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, store.cards, 1)
	assert.Equal(t, "u-1:Hanako Suzuki:visa:4242", store.cards[0])
}

func TestUpdateCardRequiresHolderName(t *testing.T) {
	store := newFakeStore(model.User{
		ID: "u-1", IsPaymentStatus: true,
		PayCustomerID: "cus_1", PaySubscriptionID: "sub_1",
	})
	provider := &fakeProvider{}
	h := newSubscriptionHandler(store, provider)

	c, rec := subCtx(t, http.MethodPut, "/v1/subscription/card", `{"payment_method_id":"pm_2"}`, "u-1")
	require.NoError(t, h.UpdateCard(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "card_name required")
	assert.Empty(t, provider.attached)
	assert.Empty(t, store.cards)
}

func TestUpdateCardRequiresPaidMember(t *testing.T) {
	store := newFakeStore(model.User{ID: "u-1"})
	h := newSubscriptionHandler(store, &fakeProvider{})

	c, rec := subCtx(t, http.MethodPut, "/v1/subscription/card", `{"payment_method_id":"pm_2"}`, "u-1")
	require.NoError(t, h.UpdateCard(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "/subscription/")
}

func TestConfigReturnsPublicKeyAndCard(t *testing.T) {
	store := newFakeStore(model.User{
		ID: "u-1", IsPaymentStatus: true,
		PayCardName: "Taro Yamada", PayCardBrand: "visa", PayCardLast4: "4242",
	})
	h := newSubscriptionHandler(store, &fakeProvider{})

	c, rec := subCtx(t, http.MethodGet, "/v1/subscription/config", "", "u-1")
	require.NoError(t, h.Config(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "pk_test_1", body["public_key"])
	assert.Equal(t, true, body["is_paying"])
	assert.Equal(t, "4242", body["card_last4"])
}

func TestConfigAnonymousGetsOnlyPublicKey(t *testing.T) {
	store := newFakeStore(model.User{ID: "u-1", IsPaymentStatus: true})
	h := newSubscriptionHandler(store, &fakeProvider{})

	c, rec := subCtx(t, http.MethodGet, "/v1/subscription/config", "", "")
	require.NoError(t, h.Config(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "pk_test_1", body["public_key"])
	_, hasPaying := body["is_paying"]
	assert.False(t, hasPaying)
}
