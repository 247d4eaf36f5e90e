package model

import "time"

// User represents a member account. IDs are opaque generated strings
// (UUIDs). The payment flags and pay_* columns are owned by the
// subscription bridge: IsPaymentStatus is true only while the user holds an
// active paid subscription, and the provider identifier fields cache the
// external customer, subscription, setup-intent and card display data.
type User struct {
	ID                string    // users.id
	Username          string    // users.username (unique)
	Email             string    // users.email (unique)
	PasswordHash      string    // users.password_hash
	Zipcode           string    // users.zipcode
	Prefecture        string    // users.prefecture
	City              string    // users.city
	Address1          string    // users.address1
	Address2          string    // users.address2
	Tel               string    // users.tel
	IsPaymentStatus   bool      // users.is_payment_status
	IsActive          bool      // users.is_active
	IsAdmin           bool      // users.is_admin
	PayCustomerID     string    // users.pay_customer_id
	PaySubscriptionID string    // users.pay_subscription_id
	PaySetupIntent    string    // users.pay_setup_intent
	PayCardName       string    // users.pay_card_name
	PayCardBrand      string    // users.pay_card_brand
	PayCardLast4      string    // users.pay_card_last4
	CreatedAt         time.Time // users.created_at
	UpdatedAt         time.Time // users.updated_at
}
