package repository

import (
	"context"
	"database/sql"

	"github.com/tabegoro/tabegoro/internal/model"
)

type TagRepo struct{ db *sql.DB }

func NewTagRepo(db *sql.DB) *TagRepo { return &TagRepo{db: db} }

// List returns all tags ordered by name.
func (r *TagRepo) List(ctx context.Context) ([]model.Tag, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, slug FROM tags ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Tag, 0)
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Create inserts a tag and returns its ID.
func (r *TagRepo) Create(ctx context.Context, name, slug string) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO tags (name, slug) VALUES (?,?)", name, slug)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update renames a tag. Returns sql.ErrNoRows when absent.
func (r *TagRepo) Update(ctx context.Context, id uint64, name, slug string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE tags SET name=?, slug=? WHERE id=?", name, slug, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM tags WHERE id=? LIMIT 1", id).Scan(&one); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a tag; shop assignments cascade away.
func (r *TagRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tags WHERE id=?", id)
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
