package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/tabegoro/tabegoro/internal/model"
	"github.com/tabegoro/tabegoro/internal/utils"
)

// OrderRepo persists subscription billing state: the pay_* columns on the
// user plus the append-only orders audit trail.
type OrderRepo struct{ db *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// CheckoutResult carries everything gathered from the payment provider
// after a completed checkout.
type CheckoutResult struct {
	CustomerID     string
	SubscriptionID string
	SetupIntent    string
	CardName       string
	CardBrand      string
	CardLast4      string
	Amount         int
	TaxIncluded    int
}

// ConfirmCheckout applies a completed checkout atomically: the user's
// provider identifiers, card display data and paid flag are written and a
// confirmed order is appended, all in one transaction. If any step fails
// the user record is left untouched.
func (r *OrderRepo) ConfirmCheckout(ctx context.Context, userID string, res CheckoutResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx,
		`UPDATE users SET
			pay_customer_id=?, pay_subscription_id=?, pay_setup_intent=?,
			pay_card_name=?, pay_card_brand=?, pay_card_last4=?,
			is_payment_status=1
		 WHERE id=?`,
		res.CustomerID, res.SubscriptionID, res.SetupIntent,
		res.CardName, res.CardBrand, res.CardLast4,
		userID)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		var one int
		if err := tx.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id=? LIMIT 1", userID).Scan(&one); err != nil {
			return err
		}
	}

	orderID := utils.TimestampID(time.Now())
	_, err = tx.ExecContext(ctx,
		"INSERT INTO orders (id, user_id, is_confirmed, amount, tax_included, memo) VALUES (?,?,1,?,?, '')",
		orderID, userID, res.Amount, res.TaxIncluded)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ClearSubscription resets the user's provider identifiers and paid flag
// after the remote subscription was cancelled. The card display columns are
// wiped with the rest.
func (r *OrderRepo) ClearSubscription(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET
			pay_customer_id='', pay_subscription_id='', pay_setup_intent='',
			pay_card_name='', pay_card_brand='', pay_card_last4='',
			is_payment_status=0
		 WHERE id=?`, userID)
	return err
}

// UpdateCard refreshes the cached card display data in one UPDATE.
func (r *OrderRepo) UpdateCard(ctx context.Context, userID, cardName, cardBrand, cardLast4 string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET pay_card_name=?, pay_card_brand=?, pay_card_last4=? WHERE id=?",
		cardName, cardBrand, cardLast4, userID)
	return err
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, is_confirmed, amount, tax_included, memo, created_at, updated_at
		 FROM orders WHERE user_id=? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Order, 0)
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.IsConfirmed, &o.Amount, &o.TaxIncluded, &o.Memo, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
