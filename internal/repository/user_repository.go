package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tabegoro/tabegoro/internal/model"
	"github.com/tabegoro/tabegoro/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id,username,email,password_hash,zipcode,prefecture,city,address1,address2,tel,
	is_payment_status,is_active,is_admin,
	pay_customer_id,pay_subscription_id,pay_setup_intent,pay_card_name,pay_card_brand,pay_card_last4,
	created_at,updated_at`

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.Zipcode, &u.Prefecture, &u.City, &u.Address1, &u.Address2, &u.Tel,
		&u.IsPaymentStatus, &u.IsActive, &u.IsAdmin,
		&u.PayCustomerID, &u.PaySubscriptionID, &u.PaySetupIntent,
		&u.PayCardName, &u.PayCardBrand, &u.PayCardLast4,
		&u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

// Create inserts a user with a generated UUID and returns its ID.
func (r *UserRepo) Create(ctx context.Context, username, email, password string, cost int) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return "", err
	}
	id := utils.NewUserID()
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, username, email, password_hash) VALUES (?,?,?,?)",
		id, username, email, hash)
	if err != nil {
		if isDuplicateKey(err) {
			return "", ErrEmailExists
		}
		return "", err
	}
	return id, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// UpdateProfile replaces the user's editable account fields.
func (r *UserRepo) UpdateProfile(ctx context.Context, id, username, zipcode, prefecture, city, address1, address2, tel string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET username=?, zipcode=?, prefecture=?, city=?, address1=?, address2=?, tel=? WHERE id=?`,
		strings.TrimSpace(username), zipcode, prefecture, city, address1, address2, tel, id)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// UPDATE with identical values also reports zero rows; confirm
		// the user actually exists before treating this as not found.
		var one int
		if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id=? LIMIT 1", id).Scan(&one); err != nil {
			return err
		}
	}
	return nil
}

// IsPaying reports the user's current paid-subscription flag. It is read on
// every gated request rather than carried in the access token, so that a
// cancellation takes effect immediately.
func (r *UserRepo) IsPaying(ctx context.Context, id string) (bool, error) {
	var paying bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT is_payment_status FROM users WHERE id=? AND is_active=1 LIMIT 1", id).Scan(&paying)
	return paying, err
}
