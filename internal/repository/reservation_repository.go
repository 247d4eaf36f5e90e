package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/tabegoro/tabegoro/internal/model"
	"github.com/tabegoro/tabegoro/internal/utils"
)

// ReservationRepo provides CRUD operations for table reservations. IDs are
// derived from the creation timestamp so they sort chronologically.
type ReservationRepo struct{ db *sql.DB }

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// Create inserts a reservation with a generated timestamp ID and returns
// the ID.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) (string, error) {
	id := utils.TimestampID(time.Now())
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reservations (id, user_id, shop_id, reserved_date, reserved_time, party_size)
		 VALUES (?,?,?,?,?,?)`,
		id, res.UserID, res.ShopID, res.ReservedDate.Format("2006-01-02"), res.ReservedTime, res.PartySize)
	if err != nil {
		return "", err
	}
	res.ID = id
	return id, nil
}

// ReservationDetail is a reservation joined with its shop for display.
type ReservationDetail struct {
	ID           string `json:"id"`
	ShopID       uint64 `json:"shop_id"`
	ShopName     string `json:"shop_name"`
	ShopAddress  string `json:"shop_address"`
	ShopTel      string `json:"shop_tel"`
	ReservedDate string `json:"reserved_date"`
	ReservedTime string `json:"reserved_time"`
	PartySize    int    `json:"party_size"`
	CreatedAt    string `json:"created_at"`
}

// ListByUser returns the user's reservations with shop details, soonest
// visit first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID string) ([]ReservationDetail, error) {
	const q = `SELECT rv.id, rv.shop_id, s.name, s.address, s.tel,
			DATE_FORMAT(rv.reserved_date, '%Y-%m-%d'), rv.reserved_time, rv.party_size,
			DATE_FORMAT(rv.created_at, '%Y-%m-%d %T')
		FROM reservations rv
		JOIN shops s ON s.id = rv.shop_id
		WHERE rv.user_id = ?
		ORDER BY rv.reserved_date ASC, rv.reserved_time ASC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReservationDetail, 0)
	for rows.Next() {
		var d ReservationDetail
		if err := rows.Scan(
			&d.ID, &d.ShopID, &d.ShopName, &d.ShopAddress, &d.ShopTel,
			&d.ReservedDate, &d.ReservedTime, &d.PartySize, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetForUser loads one reservation, enforcing ownership. Returns
// sql.ErrNoRows when the reservation does not exist and ErrForbidden when
// it belongs to another user.
func (r *ReservationRepo) GetForUser(ctx context.Context, reservationID, userID string) (*ReservationDetail, error) {
	const q = `SELECT rv.id, rv.user_id, rv.shop_id, s.name, s.address, s.tel,
			DATE_FORMAT(rv.reserved_date, '%Y-%m-%d'), rv.reserved_time, rv.party_size,
			DATE_FORMAT(rv.created_at, '%Y-%m-%d %T')
		FROM reservations rv
		JOIN shops s ON s.id = rv.shop_id
		WHERE rv.id = ?`
	var (
		d       ReservationDetail
		ownerID string
	)
	err := r.db.QueryRowContext(ctx, q, reservationID).Scan(
		&d.ID, &ownerID, &d.ShopID, &d.ShopName, &d.ShopAddress, &d.ShopTel,
		&d.ReservedDate, &d.ReservedTime, &d.PartySize, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if ownerID != userID {
		return nil, ErrForbidden
	}
	return &d, nil
}

// Delete cancels a reservation after verifying ownership. Returns
// sql.ErrNoRows when absent and ErrForbidden for another user's booking.
func (r *ReservationRepo) Delete(ctx context.Context, reservationID, userID string) error {
	var ownerID string
	err := r.db.QueryRowContext(ctx,
		"SELECT user_id FROM reservations WHERE id=? LIMIT 1", reservationID).Scan(&ownerID)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx, "DELETE FROM reservations WHERE id=?", reservationID)
	return err
}
