package billing

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client implements Provider against the provider's REST API: form-encoded
// requests authenticated with the secret key, JSON responses.
type Client struct {
	secretKey string
	baseURL   string
	httpc     *http.Client
	log       *zap.Logger
}

var _ Provider = (*Client)(nil)

// NewClient builds a provider client. baseURL has no trailing slash
// (e.g. "https://api.stripe.com").
func NewClient(secretKey, baseURL string, log *zap.Logger) *Client {
	return &Client{
		secretKey: secretKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		httpc:     &http.Client{Timeout: 30 * time.Second},
		log:       log,
	}
}

// apiError is the provider's error envelope.
type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do executes one API call. For GET the form is encoded into the query
// string, otherwise into the body. Non-2xx responses are decoded into
// CardError or APIError.
func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	u := c.baseURL + path
	var body io.Reader
	if len(form) > 0 {
		if method == http.MethodGet {
			u += "?" + form.Encode()
		} else {
			body = strings.NewReader(form.Encode())
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var e apiError
		_ = json.Unmarshal(raw, &e)
		c.log.Warn("provider call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("type", e.Error.Type),
			zap.String("code", e.Error.Code),
		)
		if e.Error.Type == "card_error" {
			return &CardError{Code: e.Error.Code, Message: e.Error.Message}
		}
		return &APIError{
			Status:  resp.StatusCode,
			Type:    e.Error.Type,
			Code:    e.Error.Code,
			Message: e.Error.Message,
		}
	}

	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}

// CreateCheckoutSession requests a hosted checkout session in subscription
// mode for the fixed price.
func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("line_items[0][price]", p.PriceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("payment_method_types[0]", "card")
	form.Set("success_url", p.SuccessURL)
	form.Set("cancel_url", p.CancelURL)
	if p.ClientReference != "" {
		form.Set("client_reference_id", p.ClientReference)
	}
	var s CheckoutSession
	err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", form, &s)
	return s, err
}

// CheckoutSession retrieves a finalized checkout session by id.
func (c *Client) CheckoutSession(ctx context.Context, id string) (CheckoutSession, error) {
	var s CheckoutSession
	err := c.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(id), nil, &s)
	return s, err
}

// CreateSetupIntent registers a card payment-setup intent for the customer.
func (c *Client) CreateSetupIntent(ctx context.Context, customerID string) (SetupIntent, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("payment_method_types[0]", "card")
	var si SetupIntent
	err := c.do(ctx, http.MethodPost, "/v1/setup_intents", form, &si)
	return si, err
}

func (c *Client) Customer(ctx context.Context, id string) (Customer, error) {
	var cu Customer
	err := c.do(ctx, http.MethodGet, "/v1/customers/"+url.PathEscape(id), nil, &cu)
	return cu, err
}

// ListCardPaymentMethods returns the customer's stored cards, default first.
func (c *Client) ListCardPaymentMethods(ctx context.Context, customerID string) ([]PaymentMethod, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("type", "card")
	var list struct {
		Data []PaymentMethod `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/payment_methods", form, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

func (c *Client) PaymentMethod(ctx context.Context, id string) (PaymentMethod, error) {
	var pm PaymentMethod
	err := c.do(ctx, http.MethodGet, "/v1/payment_methods/"+url.PathEscape(id), nil, &pm)
	return pm, err
}

// AttachPaymentMethod associates a payment method with a customer.
func (c *Client) AttachPaymentMethod(ctx context.Context, id, customerID string) error {
	form := url.Values{}
	form.Set("customer", customerID)
	return c.do(ctx, http.MethodPost, "/v1/payment_methods/"+url.PathEscape(id)+"/attach", form, nil)
}

// SetDefaultPaymentMethod makes the payment method the subscription's
// default for future invoices.
func (c *Client) SetDefaultPaymentMethod(ctx context.Context, subscriptionID, paymentMethodID string) error {
	form := url.Values{}
	form.Set("default_payment_method", paymentMethodID)
	return c.do(ctx, http.MethodPost, "/v1/subscriptions/"+url.PathEscape(subscriptionID), form, nil)
}

// Subscription retrieves a subscription; the price id is taken from the
// first line item.
func (c *Client) Subscription(ctx context.Context, id string) (Subscription, error) {
	var raw struct {
		ID    string `json:"id"`
		Items struct {
			Data []struct {
				Price struct {
					ID string `json:"id"`
				} `json:"price"`
			} `json:"data"`
		} `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/subscriptions/"+url.PathEscape(id), nil, &raw); err != nil {
		return Subscription{}, err
	}
	sub := Subscription{ID: raw.ID}
	if len(raw.Items.Data) > 0 {
		sub.PriceID = raw.Items.Data[0].Price.ID
	}
	return sub, nil
}

func (c *Client) Price(ctx context.Context, id string) (Price, error) {
	var p Price
	err := c.do(ctx, http.MethodGet, "/v1/prices/"+url.PathEscape(id), nil, &p)
	return p, err
}

// CancelSubscription deletes the subscription on the provider, ending
// recurring billing immediately.
func (c *Client) CancelSubscription(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/subscriptions/"+url.PathEscape(id), nil, nil)
}
