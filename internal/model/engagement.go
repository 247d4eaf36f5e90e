package model

import "time"

// Favorite marks a shop as saved by a user. (user_id, shop_id) is unique so
// toggling is a create-or-delete round trip.
type Favorite struct {
	ID        uint64    // favorites.id
	UserID    string    // favorites.user_id
	ShopID    uint64    // favorites.shop_id
	CreatedAt time.Time // favorites.created_at
}

// Review is a star rating (1-5) plus comment left by a user on a shop. One
// review per (user, shop). UserID is nil when the author account has been
// deleted; the review itself survives.
type Review struct {
	ID        uint64    // reviews.id
	UserID    *string   // reviews.user_id (nullable)
	ShopID    uint64    // reviews.shop_id
	Stars     int       // reviews.stars (1..5)
	Comment   string    // reviews.comment
	CreatedAt time.Time // reviews.created_at
}

// Reservation is a time-slotted booking placed by a paying member. The id is
// generated from the creation timestamp (utils.TimestampID). ReservedTime is
// one of the shop's 30-minute slots as "HH:MM".
type Reservation struct {
	ID           string    // reservations.id
	UserID       string    // reservations.user_id
	ShopID       uint64    // reservations.shop_id
	ReservedDate time.Time // reservations.reserved_date
	ReservedTime string    // reservations.reserved_time
	PartySize    int       // reservations.party_size (1..10)
	CreatedAt    time.Time // reservations.created_at
	UpdatedAt    time.Time // reservations.updated_at
}

// Order is an append-only audit record of a confirmed subscription checkout.
// Amount is the gross billed amount and TaxIncluded the 10% tax portion
// backed out of it. Memo is free text only administrators write.
type Order struct {
	ID          string    // orders.id (timestamp derived)
	UserID      string    // orders.user_id
	IsConfirmed bool      // orders.is_confirmed
	Amount      int       // orders.amount
	TaxIncluded int       // orders.tax_included
	Memo        string    // orders.memo
	CreatedAt   time.Time // orders.created_at
	UpdatedAt   time.Time // orders.updated_at
}
