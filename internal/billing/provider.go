// Package billing talks to the external subscription/payment provider. The
// provider hosts checkout, stores cards and runs recurring billing; this
// package only synchronizes local state with it. Calls are synchronous with
// no retry policy: a provider error is reported once and the operation is
// abandoned.
package billing

import "context"

// CheckoutSession is a hosted checkout created by the provider. Customer and
// Subscription are populated once the session has completed.
type CheckoutSession struct {
	ID           string `json:"id"`
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
}

// SetupIntent registers a payment-setup intent on the provider; the client
// secret is cached locally for the card-update form.
type SetupIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// Customer mirrors the provider's customer object; only the display name is
// consumed.
type Customer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Card is the display subset of a stored card.
type Card struct {
	Brand string `json:"brand"`
	Last4 string `json:"last4"`
}

// PaymentMethod is a stored payment instrument of type "card".
type PaymentMethod struct {
	ID   string `json:"id"`
	Card Card   `json:"card"`
}

// Subscription mirrors the provider's subscription object; PriceID
// identifies the plan the customer is billed on.
type Subscription struct {
	ID      string
	PriceID string
}

// Price carries the gross unit amount billed per period, in the smallest
// currency unit.
type Price struct {
	ID         string `json:"id"`
	UnitAmount int    `json:"unit_amount"`
}

// CheckoutParams configures a new hosted checkout session for the fixed
// subscription price. ClientReference carries the local user id across the
// redirect.
type CheckoutParams struct {
	PriceID         string
	ClientReference string
	SuccessURL      string
	CancelURL       string
}

// Provider is the surface of the external payment service the application
// depends on. The production implementation is Client; tests substitute a
// fake.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (CheckoutSession, error)
	CheckoutSession(ctx context.Context, id string) (CheckoutSession, error)
	CreateSetupIntent(ctx context.Context, customerID string) (SetupIntent, error)
	Customer(ctx context.Context, id string) (Customer, error)
	ListCardPaymentMethods(ctx context.Context, customerID string) ([]PaymentMethod, error)
	PaymentMethod(ctx context.Context, id string) (PaymentMethod, error)
	AttachPaymentMethod(ctx context.Context, id, customerID string) error
	SetDefaultPaymentMethod(ctx context.Context, subscriptionID, paymentMethodID string) error
	Subscription(ctx context.Context, id string) (Subscription, error)
	Price(ctx context.Context, id string) (Price, error)
	CancelSubscription(ctx context.Context, id string) error
}
