package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/tabegoro/tabegoro/internal/model"
)

// ShopRepo provides catalog access for restaurants: public reads plus the
// administrative CRUD surface. Tag assignments live in the shop_tags join
// table and are replaced wholesale on update.
type ShopRepo struct{ db *sql.DB }

func NewShopRepo(db *sql.DB) *ShopRepo { return &ShopRepo{db: db} }

const shopColumns = `id,name,mail,zipcode,address,tel,description,price_range,seating_capacity,
	opening_hours,weekly_holidays,holiday_note,reserve_start,reserve_end,image,category_id,is_published,
	created_at,updated_at`

func scanShop(row *sql.Row) (model.Shop, error) {
	var s model.Shop
	err := row.Scan(
		&s.ID, &s.Name, &s.Mail, &s.Zipcode, &s.Address, &s.Tel, &s.Description,
		&s.PriceRange, &s.SeatingCapacity, &s.OpeningHours, &s.WeeklyHolidays, &s.HolidayNote,
		&s.ReserveStart, &s.ReserveEnd, &s.Image, &s.CategoryID, &s.IsPublished,
		&s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// GetByID fetches a shop regardless of publication state.
func (r *ShopRepo) GetByID(ctx context.Context, id uint64) (model.Shop, error) {
	return scanShop(r.db.QueryRowContext(ctx,
		"SELECT "+shopColumns+" FROM shops WHERE id=? LIMIT 1", id))
}

// GetPublishedByID fetches a shop only if it is published. Unpublished
// shops are indistinguishable from missing ones on the public surface.
func (r *ShopRepo) GetPublishedByID(ctx context.Context, id uint64) (model.Shop, error) {
	return scanShop(r.db.QueryRowContext(ctx,
		"SELECT "+shopColumns+" FROM shops WHERE id=? AND is_published=1 LIMIT 1", id))
}

// CategoryName resolves the shop's category name; empty when unset.
func (r *ShopRepo) CategoryName(ctx context.Context, categoryID *uint64) (string, error) {
	if categoryID == nil {
		return "", nil
	}
	var name string
	err := r.db.QueryRowContext(ctx,
		"SELECT name FROM categories WHERE id=? LIMIT 1", *categoryID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return name, err
}

// TagsForShop returns the shop's tags ordered by name.
func (r *ShopRepo) TagsForShop(ctx context.Context, shopID uint64) ([]model.Tag, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.name, t.slug
		 FROM shop_tags st
		 JOIN tags t ON t.id = st.tag_id
		 WHERE st.shop_id = ?
		 ORDER BY t.name`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tags := make([]model.Tag, 0)
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// IrregularHolidays returns the shop's one-off closing dates from the given
// day forward, ascending.
func (r *ShopRepo) IrregularHolidays(ctx context.Context, shopID uint64, from time.Time) ([]model.IrregularHoliday, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, shop_id, holiday_on FROM irregular_holidays
		 WHERE shop_id = ? AND holiday_on >= ?
		 ORDER BY holiday_on`, shopID, from.Format("2006-01-02"))
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

// ClosedOn reports whether the shop has an irregular holiday on the date.
func (r *ShopRepo) ClosedOn(ctx context.Context, shopID uint64, date time.Time) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM irregular_holidays WHERE shop_id=? AND holiday_on=? LIMIT 1",
		shopID, date.Format("2006-01-02")).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AdminShopRow is the compact listing used on the management index.
type AdminShopRow struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Category    string `json:"category"`
	IsPublished bool   `json:"is_published"`
}

// ListAll returns every shop, unpublished included, newest first.
func (r *ShopRepo) ListAll(ctx context.Context) ([]AdminShopRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.id, s.name, s.address, COALESCE(c.name, ''), s.is_published
		 FROM shops s
		 LEFT JOIN categories c ON c.id = s.category_id
		 ORDER BY s.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]AdminShopRow, 0)
	for rows.Next() {
		var row AdminShopRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Address, &row.Category, &row.IsPublished); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Create inserts a shop and its tag assignments in one transaction and
// returns the new id.
func (r *ShopRepo) Create(ctx context.Context, s *model.Shop, tagIDs []uint64) (uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO shops (name, mail, zipcode, address, tel, description, price_range,
			seating_capacity, opening_hours, weekly_holidays, holiday_note,
			reserve_start, reserve_end, image, category_id, is_published)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.Name, s.Mail, s.Zipcode, s.Address, s.Tel, s.Description, s.PriceRange,
		s.SeatingCapacity, s.OpeningHours, s.WeeklyHolidays, s.HolidayNote,
		s.ReserveStart, s.ReserveEnd, s.Image, s.CategoryID, s.IsPublished)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := replaceTagsTx(ctx, tx, uint64(id), tagIDs); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// Update rewrites all editable shop fields and replaces tag assignments.
// Returns sql.ErrNoRows when the shop does not exist.
func (r *ShopRepo) Update(ctx context.Context, s *model.Shop, tagIDs []uint64) error {
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

	var one int
	if err := tx.QueryRowContext(ctx, "SELECT 1 FROM shops WHERE id=? LIMIT 1", s.ID).Scan(&one); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE shops SET name=?, mail=?, zipcode=?, address=?, tel=?, description=?,
			price_range=?, seating_capacity=?, opening_hours=?, weekly_holidays=?, holiday_note=?,
			reserve_start=?, reserve_end=?, image=?, category_id=?, is_published=?
		 WHERE id=?`,
		s.Name, s.Mail, s.Zipcode, s.Address, s.Tel, s.Description,
		s.PriceRange, s.SeatingCapacity, s.OpeningHours, s.WeeklyHolidays, s.HolidayNote,
		s.ReserveStart, s.ReserveEnd, s.Image, s.CategoryID, s.IsPublished,
		s.ID)
	if err != nil {
		return err
	}
	if err := replaceTagsTx(ctx, tx, s.ID, tagIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes a shop; dependent rows cascade. Returns sql.ErrNoRows
// when the shop does not exist.
func (r *ShopRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM shops WHERE id=?", id)
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

func replaceTagsTx(ctx context.Context, tx *sql.Tx, shopID uint64, tagIDs []uint64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM shop_tags WHERE shop_id=?", shopID); err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	query := "INSERT INTO shop_tags (shop_id, tag_id) VALUES "
	args := make([]any, 0, len(tagIDs)*2)
	placeholders := make([]string, 0, len(tagIDs))
	for _, tid := range tagIDs {
		placeholders = append(placeholders, "(?,?)")
		args = append(args, shopID, tid)
	}
	query += strings.Join(placeholders, ",")
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}
