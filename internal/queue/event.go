// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published when a table reservation is
// successfully placed. It carries enough information for downstream
// consumers to log or notify without querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID string `json:"reservation_id"`
	UserID        string `json:"user_id"`
	ShopID        uint64 `json:"shop_id"`
	ShopName      string `json:"shop_name"`
	ReservedDate  string `json:"reserved_date"`
	ReservedTime  string `json:"reserved_time"`
	PartySize     int    `json:"party_size"`
	ConfirmedAt   string `json:"confirmed_at"`
}
