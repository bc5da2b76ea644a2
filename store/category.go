package store

import (
	"context"

	"github.com/itimeapp/itime/internal/models"
)

func scanCategory(s scanner) (*models.Category, error) {
	cat := &models.Category{}

	err := s.Scan(&cat.ID, &cat.Name, &cat.ColorHex, &cat.Icon, &cat.SortOrder)
	if err != nil {
		return nil, err
	}

	return cat, nil
}

func (c *Client) CreateCategory(ctx context.Context, cat *models.Category) error {
	_, err := c.db.ExecContext(ctx, `
	INSERT INTO categories (id, name, color_hex, icon, sort_order)
	VALUES (?, ?, ?, ?, ?)`,
		cat.ID, cat.Name, cat.ColorHex, cat.Icon, cat.SortOrder,
	)
	if err != nil {
		return dbError("insert category", err)
	}

	return nil
}

func (c *Client) Categories(ctx context.Context) ([]*models.Category, error) {
	return queryMultiple(ctx, c.db, `
	SELECT id, name, color_hex, icon, sort_order
	FROM categories
	ORDER BY sort_order ASC, name ASC, id ASC`,
		scanCategory, "categories",
	)
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.execAffecting(
		ctx,
		"DELETE FROM categories WHERE id = ?",
		"category", id, id,
	)
}

func (c *Client) MergeCategories(
	ctx context.Context,
	keepID string,
	dropIDs []string,
) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return dbError("begin merge", err)
	}

	for _, id := range dropIDs {
		_, err = tx.ExecContext(
			ctx,
			"UPDATE event_types SET category_id = ? WHERE category_id = ?",
			keepID, id,
		)
		if err != nil {
			_ = tx.Rollback()
			return dbError("reassign event types", err)
		}

		_, err = tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
		if err != nil {
			_ = tx.Rollback()
			return dbError("delete category", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return dbError("commit merge", err)
	}

	return nil
}
