package repository

import (
	"context"
	"database/sql"
)

// FavoriteRepo persists saved shops. The (user, shop) pair is unique so a
// favorite is toggled by deleting the existing row or inserting a new one.
type FavoriteRepo struct{ db *sql.DB }

func NewFavoriteRepo(db *sql.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

// Toggle flips the favorite state and reports the resulting state
// (true = now favorited).
func (r *FavoriteRepo) Toggle(ctx context.Context, userID string, shopID uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM favorites WHERE user_id=? AND shop_id=?", userID, shopID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO favorites (user_id, shop_id) VALUES (?,?)", userID, shopID)
	if err != nil {
		// A concurrent toggle can race the delete; treat the duplicate
		// as already-favorited.
		if isDuplicateKey(err) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// IsFavorited reports whether the user saved the shop.
func (r *FavoriteRepo) IsFavorited(ctx context.Context, userID string, shopID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM favorites WHERE user_id=? AND shop_id=? LIMIT 1", userID, shopID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FavoriteShopRow is one entry of a user's saved-shop list.
type FavoriteShopRow struct {
	ShopID     uint64 `json:"shop_id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	Image      string `json:"image"`
	Category   string `json:"category"`
	PriceRange string `json:"price_range"`
}

// ListByUser returns the user's saved shops, most recently saved first.
// Unpublished shops stay hidden even when previously favorited.
func (r *FavoriteRepo) ListByUser(ctx context.Context, userID string) ([]FavoriteShopRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.id, s.name, s.address, s.image, COALESCE(c.name, ''), s.price_range
		 FROM favorites f
		 JOIN shops s ON s.id = f.shop_id
		 LEFT JOIN categories c ON c.id = s.category_id
		 WHERE f.user_id = ? AND s.is_published = 1
		 ORDER BY f.created_at DESC, f.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]FavoriteShopRow, 0)
	for rows.Next() {
		var d FavoriteShopRow
		if err := rows.Scan(&d.ShopID, &d.Name, &d.Address, &d.Image, &d.Category, &d.PriceRange); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
