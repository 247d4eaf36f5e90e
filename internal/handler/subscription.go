package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/tabegoro/tabegoro/internal/billing"
	"github.com/tabegoro/tabegoro/internal/config"
	"github.com/tabegoro/tabegoro/internal/metrics"
	"github.com/tabegoro/tabegoro/internal/model"
	"github.com/tabegoro/tabegoro/internal/repository"
)

// SubscriptionUsers is the slice of the user store the subscription flow
// reads from.
type SubscriptionUsers interface {
	GetByID(ctx context.Context, id string) (model.User, error)
}

// SubscriptionStore is the slice of the billing store the subscription
// flow writes through. ConfirmCheckout must apply all of its effects in
// one transaction.
type SubscriptionStore interface {
	ConfirmCheckout(ctx context.Context, userID string, res repository.CheckoutResult) error
	ClearSubscription(ctx context.Context, userID string) error
	UpdateCard(ctx context.Context, userID, cardName, cardBrand, cardLast4 string) error
}

// SubscriptionHandler bridges members to the payment provider: checkout,
// confirmation, card replacement and cancellation.
type SubscriptionHandler struct {
	Cfg      config.Config
	Users    SubscriptionUsers
	Store    SubscriptionStore
	Provider billing.Provider
	Log      *zap.Logger
}

func NewSubscriptionHandler(cfg config.Config, users SubscriptionUsers, store SubscriptionStore, provider billing.Provider, log *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{Cfg: cfg, Users: users, Store: store, Provider: provider, Log: log}
}

// providerError maps a payment-provider failure onto an HTTP response.
// Card problems are the user's to fix (400 with the provider's message);
// everything else is reported as a bad gateway with a pointer back to the
// subscription page so local state is never left half-updated silently.
func (h *SubscriptionHandler) providerError(c echo.Context, op string, err error) error {
	metrics.ProviderErrorCounter.WithLabelValues(op).Inc()
	var cardErr *billing.CardError
	if errors.As(err, &cardErr) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": cardErr.Message})
	}
	h.Log.Error("payment provider call failed", zap.String("operation", op), zap.Error(err))
	return c.JSON(http.StatusBadGateway, echo.Map{
		"error":    "payment service is temporarily unavailable",
		"redirect": "/subscription/",
	})
}

func (h *SubscriptionHandler) loadUser(c echo.Context) (model.User, bool) {
	uid, err := getUserID(c)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required", "redirect": "/login/"})
		return model.User{}, false
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required", "redirect": "/login/"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
		}
		return model.User{}, false
	}
	return u, true
}

// Config hands the browser what it needs to render the plan page: the
// provider public key, plus the member's current subscription state when a
// valid token is presented.
func (h *SubscriptionHandler) Config(c echo.Context) error {
	uid := viewerID(c)
	if uid == "" {
		return c.JSON(http.StatusOK, echo.Map{"public_key": h.Cfg.PayPublicKey})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusOK, echo.Map{"public_key": h.Cfg.PayPublicKey})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"public_key": h.Cfg.PayPublicKey,
		"is_paying":  u.IsPaymentStatus,
		"card_name":  u.PayCardName,
		"card_brand": u.PayCardBrand,
		"card_last4": u.PayCardLast4,
	})
}

// CreateCheckoutSession opens a provider-hosted checkout for the fixed
// subscription plan and returns the session id for the browser redirect.
func (h *SubscriptionHandler) CreateCheckoutSession(c echo.Context) error {
	u, ok := h.loadUser(c)
	if !ok {
		return nil
	}
	if u.IsPaymentStatus {
		return c.JSON(http.StatusConflict, echo.Map{"error": "already subscribed", "redirect": "/mypage/"})
	}

	base := requestBase(c)
	sess, err := h.Provider.CreateCheckoutSession(c.Request().Context(), billing.CheckoutParams{
		PriceID:         h.Cfg.PayPriceID,
		ClientReference: u.ID,
		SuccessURL:      base + "/v1/subscription/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:       base + "/v1/subscription/cancel",
	})
	if err != nil {
		return h.providerError(c, "create_checkout_session", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"session_id": sess.ID})
}

// CheckoutCancelled is where the provider sends the browser back when the
// member abandons checkout. Nothing was charged and nothing changes locally;
// the member is pointed back at the plan page.
func (h *SubscriptionHandler) CheckoutCancelled(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "checkout was cancelled, no charge was made",
		"redirect": "/subscription/",
	})
}

type checkoutSuccessReq struct {
	SessionID string `json:"session_id"`
}

// Success finalizes a completed checkout. Everything gathered from the
// provider (customer, subscription, setup intent, card, price) is persisted
// together with the confirmed order in a single transaction; any provider
// failure aborts before local state is touched.
func (h *SubscriptionHandler) Success(c echo.Context) error {
	u, ok := h.loadUser(c)
	if !ok {
		return nil
	}

	var req checkoutSuccessReq
	_ = c.Bind(&req)
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = strings.TrimSpace(c.QueryParam("session_id"))
	}
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_id required"})
	}

	ctx := c.Request().Context()

	sess, err := h.Provider.CheckoutSession(ctx, sessionID)
	if err != nil {
		return h.providerError(c, "retrieve_checkout_session", err)
	}
	if sess.Customer == "" || sess.Subscription == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "checkout session is not complete"})
	}

	intent, err := h.Provider.CreateSetupIntent(ctx, sess.Customer)
	if err != nil {
		return h.providerError(c, "create_setup_intent", err)
	}
	customer, err := h.Provider.Customer(ctx, sess.Customer)
	if err != nil {
		return h.providerError(c, "retrieve_customer", err)
	}
	cards, err := h.Provider.ListCardPaymentMethods(ctx, sess.Customer)
	if err != nil {
		return h.providerError(c, "list_payment_methods", err)
	}
	var brand, last4 string
	if len(cards) > 0 {
		brand = cards[0].Card.Brand
		last4 = cards[0].Card.Last4
	}
	sub, err := h.Provider.Subscription(ctx, sess.Subscription)
	if err != nil {
		return h.providerError(c, "retrieve_subscription", err)
	}
	price, err := h.Provider.Price(ctx, sub.PriceID)
	if err != nil {
		return h.providerError(c, "retrieve_price", err)
	}

	dbCtx, cancel := reqCtx(c)
	defer cancel()
	err = h.Store.ConfirmCheckout(dbCtx, u.ID, repository.CheckoutResult{
		CustomerID:     sess.Customer,
		SubscriptionID: sess.Subscription,
		SetupIntent:    intent.ClientSecret,
		CardName:       customer.Name,
		CardBrand:      brand,
		CardLast4:      last4,
		Amount:         price.UnitAmount,
		TaxIncluded:    model.TaxPortion(price.UnitAmount),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "confirm failed"})
	}

	metrics.CheckoutsConfirmedCounter.Inc()
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "subscription activated",
		"client_secret": intent.ClientSecret,
		"redirect":      "/mypage/",
	})
}

type updateCardReq struct {
	PaymentMethodID string `json:"payment_method_id"`
	CardName        string `json:"card_name"`
}

// UpdateCard replaces the card behind the subscription: the new payment
// method is attached to the customer, made the subscription default, and
// its display data cached locally in one UPDATE. The holder name comes
// from the form, not from the provider customer. A provider error leaves
// local state untouched.
func (h *SubscriptionHandler) UpdateCard(c echo.Context) error {
	u, ok := h.loadUser(c)
	if !ok {
		return nil
	}
	if !u.IsPaymentStatus || u.PayCustomerID == "" || u.PaySubscriptionID == "" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "paid membership required", "redirect": "/subscription/"})
	}

	var req updateCardReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.PaymentMethodID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_method_id required"})
	}
	pmID := strings.TrimSpace(req.PaymentMethodID)
	cardName := strings.TrimSpace(req.CardName)
	if cardName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "card_name required"})
	}

	ctx := c.Request().Context()

	if err := h.Provider.AttachPaymentMethod(ctx, pmID, u.PayCustomerID); err != nil {
		return h.providerError(c, "attach_payment_method", err)
	}
	if err := h.Provider.SetDefaultPaymentMethod(ctx, u.PaySubscriptionID, pmID); err != nil {
		return h.providerError(c, "set_default_payment_method", err)
	}
	pm, err := h.Provider.PaymentMethod(ctx, pmID)
	if err != nil {
		return h.providerError(c, "retrieve_payment_method", err)
	}

	dbCtx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Store.UpdateCard(dbCtx, u.ID, cardName, pm.Card.Brand, pm.Card.Last4); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "card updated", "redirect": "/mypage/"})
}

// Cancel ends the subscription with the provider first, then clears the
// member's local billing state and paid flag.
func (h *SubscriptionHandler) Cancel(c echo.Context) error {
	u, ok := h.loadUser(c)
	if !ok {
		return nil
	}
	if !u.IsPaymentStatus || u.PaySubscriptionID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no active subscription"})
	}

	if err := h.Provider.CancelSubscription(c.Request().Context(), u.PaySubscriptionID); err != nil {
		return h.providerError(c, "cancel_subscription", err)
	}

	dbCtx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Store.ClearSubscription(dbCtx, u.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "subscription cancelled", "redirect": "/"})
}

// requestBase reconstructs the external base URL for provider redirects.
func requestBase(c echo.Context) string {
	scheme := c.Scheme()
	if fwd := c.Request().Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + c.Request().Host
}
