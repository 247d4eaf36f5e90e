package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/tabegoro/tabegoro/internal/model"
)

// HolidayRepo manages one-off closing dates maintained by administrators.
type HolidayRepo struct{ db *sql.DB }

func NewHolidayRepo(db *sql.DB) *HolidayRepo { return &HolidayRepo{db: db} }

// ErrHolidayExists signals the (shop, date) pair is already registered.
var ErrHolidayExists = errors.New("holiday already registered")

// ListForShop returns every irregular holiday of the shop, ascending.
func (r *HolidayRepo) ListForShop(ctx context.Context, shopID uint64) ([]model.IrregularHoliday, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, shop_id, holiday_on FROM irregular_holidays WHERE shop_id=? ORDER BY holiday_on", shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.IrregularHoliday, 0)
	for rows.Next() {
		var h model.IrregularHoliday
		if err := rows.Scan(&h.ID, &h.ShopID, &h.Date); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Create registers a closing date for the shop.
func (r *HolidayRepo) Create(ctx context.Context, shopID uint64, date time.Time) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO irregular_holidays (shop_id, holiday_on) VALUES (?,?)",
		shopID, date.Format("2006-01-02"))
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrHolidayExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Delete drops a closing date. Returns sql.ErrNoRows when absent.
func (r *HolidayRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM irregular_holidays WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
