package repository

import (
	"context"
	"database/sql"
)

// SummaryRepo aggregates membership and revenue figures for the
// management dashboard.
type SummaryRepo struct{ db *sql.DB }

func NewSummaryRepo(db *sql.DB) *SummaryRepo { return &SummaryRepo{db: db} }

// Totals holds the headline dashboard numbers. Administrator accounts are
// excluded from the member counts.
type Totals struct {
	ActiveMembers int64 `json:"active_members"`
	PayingMembers int64 `json:"paying_members"`
	Revenue       int64 `json:"revenue"`
}

// MonthlyRow is one month of confirmed subscription revenue.
type MonthlyRow struct {
	Month   string `json:"month"`
	Payers  int64  `json:"payers"`
	Revenue int64  `json:"revenue"`
}

// Totals returns overall member counts and confirmed revenue.
func (r *SummaryRepo) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE is_active=1 AND is_admin=0").Scan(&t.ActiveMembers)
	if err != nil {
		return t, err
	}
	err = r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE is_active=1 AND is_admin=0 AND is_payment_status=1").Scan(&t.PayingMembers)
	if err != nil {
		return t, err
	}
	var revenue sql.NullInt64
	err = r.db.QueryRowContext(ctx,
		"SELECT SUM(amount) FROM orders WHERE is_confirmed=1").Scan(&revenue)
	if err != nil {
		return t, err
	}
	t.Revenue = revenue.Int64
	return t, nil
}

// Monthly breaks confirmed revenue down per calendar month, newest first.
func (r *SummaryRepo) Monthly(ctx context.Context) ([]MonthlyRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DATE_FORMAT(created_at, '%Y-%m') AS month,
			COUNT(DISTINCT user_id),
			SUM(amount)
		 FROM orders
		 WHERE is_confirmed=1
		 GROUP BY month
		 ORDER BY month DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]MonthlyRow, 0)
	for rows.Next() {
		var m MonthlyRow
		if err := rows.Scan(&m.Month, &m.Payers, &m.Revenue); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
