package repository

import (
	"context"
	"strconv"
	"strings"
)

// ShopSearchQuery defines filters & pagination for searching shops.
// Keyword is split into tokens on ASCII and full-width spaces; every token
// must match somewhere on the shop (name, address, description, tag name or
// category name). CategoryID and TagID are the raw query values and only
// apply when they parse as positive integers.
type ShopSearchQuery struct {
	Keyword    string
	CategoryID string
	TagID      string
	Page       int
	PageSize   int
}

type PublicShopRow struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	PriceRange  string  `json:"price_range"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	ReviewCount int64   `json:"review_count"`
	AvgStars    float64 `json:"avg_stars"`
}

// splitKeyword tokenizes a search keyword. Full-width spaces (U+3000) are
// treated the same as ASCII spaces; empty tokens are dropped.
func splitKeyword(keyword string) []string {
	normalized := strings.ReplaceAll(keyword, "　", " ")
	fields := strings.Fields(normalized)
	return fields
}

// positiveID parses raw as a positive integer id; ok is false otherwise.
func positiveID(raw string) (uint64, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// buildSearchWhere assembles the WHERE condition for a shop search. Each
// keyword token contributes one AND-ed group that ORs over the shop's name,
// address, description, tag names and category name.
func buildSearchWhere(q ShopSearchQuery) (string, []any) {
	where := []string{"s.is_published = 1"}
	args := []any{}

	for _, tok := range splitKeyword(q.Keyword) {
		like := "%" + strings.ToLower(tok) + "%"
		where = append(where, `(LOWER(s.name) LIKE ?
			OR LOWER(s.address) LIKE ?
			OR LOWER(s.description) LIKE ?
			OR EXISTS (SELECT 1 FROM shop_tags st JOIN tags t ON t.id = st.tag_id
				WHERE st.shop_id = s.id AND LOWER(t.name) LIKE ?)
			OR EXISTS (SELECT 1 FROM categories kc
				WHERE kc.id = s.category_id AND LOWER(kc.name) LIKE ?))`)
		args = append(args, like, like, like, like, like)
	}

	if id, ok := positiveID(q.CategoryID); ok {
		where = append(where, "s.category_id = ?")
		args = append(args, id)
	}
	if id, ok := positiveID(q.TagID); ok {
		where = append(where, "EXISTS (SELECT 1 FROM shop_tags st2 WHERE st2.shop_id = s.id AND st2.tag_id = ?)")
		args = append(args, id)
	}

	return strings.Join(where, " AND "), args
}

// Search returns published shops matching the query plus the total match
// count for pagination. Results are ordered newest first.
func (r *ShopRepo) Search(ctx context.Context, q ShopSearchQuery) ([]PublicShopRow, int64, error) {
	cond, args := buildSearchWhere(q)

	var total int64
	countSQL := `SELECT COUNT(*) FROM shops s WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT
			s.id,
			s.name,
			s.address,
			s.price_range,
			s.image,
			COALESCE(c.name, '') AS category_name,
			COUNT(rv.id) AS review_count,
			COALESCE(AVG(rv.stars), 0) AS avg_stars
		FROM shops s
		LEFT JOIN categories c ON c.id = s.category_id
		LEFT JOIN reviews rv   ON rv.shop_id = s.id
		WHERE ` + cond + `
		GROUP BY s.id, s.name, s.address, s.price_range, s.image, c.name
		ORDER BY s.id DESC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]PublicShopRow, 0, limit)
	for rows.Next() {
		var d PublicShopRow
		if err := rows.Scan(
			&d.ID,
			&d.Name,
			&d.Address,
			&d.PriceRange,
			&d.Image,
			&d.Category,
			&d.ReviewCount,
			&d.AvgStars,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// AnnotatedShopRow is a landing-page listing entry. Unlike the search
// results it also carries the published flag because the index teases
// unpublished listings.
type AnnotatedShopRow struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	PriceRange  string  `json:"price_range"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	IsPublished bool    `json:"is_published"`
	ReviewCount int64   `json:"review_count"`
	AvgStars    float64 `json:"avg_stars"`
}

// ListAnnotated returns every shop, unpublished included, with review
// aggregates, newest first.
func (r *ShopRepo) ListAnnotated(ctx context.Context) ([]AnnotatedShopRow, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT
			s.id,
			s.name,
			s.address,
			s.price_range,
			s.image,
			COALESCE(c.name, '') AS category_name,
			s.is_published,
			COUNT(rv.id) AS review_count,
			COALESCE(AVG(rv.stars), 0) AS avg_stars
		FROM shops s
		LEFT JOIN categories c ON c.id = s.category_id
		LEFT JOIN reviews rv   ON rv.shop_id = s.id
		GROUP BY s.id, s.name, s.address, s.price_range, s.image, c.name, s.is_published
		ORDER BY s.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]AnnotatedShopRow, 0)
	for rows.Next() {
		var d AnnotatedShopRow
		if err := rows.Scan(
			&d.ID,
			&d.Name,
			&d.Address,
			&d.PriceRange,
			&d.Image,
			&d.Category,
			&d.IsPublished,
			&d.ReviewCount,
			&d.AvgStars,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
