package repository

import (
	"context"
	"database/sql"
	"time"
)

// ReviewRepo persists star ratings. The unique (user, shop) index enforces
// one review per user per shop at the database level.
type ReviewRepo struct{ db *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Create inserts a review and returns its ID. ErrDuplicateReview is
// returned when the user already reviewed the shop.
func (r *ReviewRepo) Create(ctx context.Context, userID string, shopID uint64, stars int, comment string) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO reviews (user_id, shop_id, stars, comment) VALUES (?,?,?,?)",
		userID, shopID, stars, comment)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrDuplicateReview
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ReviewRow is a review annotated with its author's display name. Username
// is nil when the author account was deleted.
type ReviewRow struct {
	ID        uint64    `json:"id"`
	Username  *string   `json:"username"`
	Stars     int       `json:"stars"`
	Comment   string    `json:"comment"`
	Mine      bool      `json:"mine"`
	CreatedAt time.Time `json:"created_at"`
}

// ListForShop returns the shop's reviews newest first. When viewerID is
// non-empty the viewer's own review is flagged so clients can offer edit
// and delete affordances only there.
func (r *ReviewRepo) ListForShop(ctx context.Context, shopID uint64, viewerID string) ([]ReviewRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT rv.id, u.username, rv.user_id, rv.stars, rv.comment, rv.created_at
		 FROM reviews rv
		 LEFT JOIN users u ON u.id = rv.user_id
		 WHERE rv.shop_id = ?
		 ORDER BY rv.created_at DESC, rv.id DESC`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReviewRow, 0)
	for rows.Next() {
		var (
			d        ReviewRow
			username sql.NullString
			authorID sql.NullString
		)
		if err := rows.Scan(&d.ID, &username, &authorID, &d.Stars, &d.Comment, &d.CreatedAt); err != nil {
			return nil, err
		}
		if username.Valid {
			name := username.String
			d.Username = &name
		}
		d.Mine = viewerID != "" && authorID.Valid && authorID.String == viewerID
		out = append(out, d)
	}
	return out, rows.Err()
}

// Stats returns the shop's review count and average stars (0 when none).
func (r *ReviewRepo) Stats(ctx context.Context, shopID uint64) (int64, float64, error) {
	var (
		count int64
		avg   sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*), AVG(stars) FROM reviews WHERE shop_id=?", shopID).Scan(&count, &avg)
	if err != nil {
		return 0, 0, err
	}
	return count, avg.Float64, nil
}

// Update rewrites the caller's review. ErrForbidden when the review belongs
// to someone else, sql.ErrNoRows when it does not exist.
func (r *ReviewRepo) Update(ctx context.Context, reviewID uint64, userID string, stars int, comment string) error {
	ownerID, err := r.ownerOf(ctx, reviewID)
	if err != nil {
		return err
	}
	if ownerID == nil || *ownerID != userID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx,
		"UPDATE reviews SET stars=?, comment=? WHERE id=?", stars, comment, reviewID)
	return err
}

// Delete removes the caller's review under the same ownership rules as
// Update.
func (r *ReviewRepo) Delete(ctx context.Context, reviewID uint64, userID string) error {
	ownerID, err := r.ownerOf(ctx, reviewID)
	if err != nil {
		return err
	}
	if ownerID == nil || *ownerID != userID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx, "DELETE FROM reviews WHERE id=?", reviewID)
	return err
}

func (r *ReviewRepo) ownerOf(ctx context.Context, reviewID uint64) (*string, error) {
	var ownerID sql.NullString
	err := r.db.QueryRowContext(ctx,
		"SELECT user_id FROM reviews WHERE id=? LIMIT 1", reviewID).Scan(&ownerID)
	if err != nil {
		return nil, err
	}
	if !ownerID.Valid {
		return nil, nil
	}
	id := ownerID.String
	return &id, nil
}
