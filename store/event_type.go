package store

import (
	"context"
	"database/sql"

	"github.com/itimeapp/itime/internal/models"
)

func scanEventType(s scanner) (*models.EventType, error) {
	var (
		et         = &models.EventType{}
		categoryID sql.NullString
		createdAt  string
	)

	err := s.Scan(&et.ID, &et.Name, &et.CustomColorHex, &categoryID, &createdAt)
	if err != nil {
		return nil, err
	}

	et.CategoryID = categoryID.String

	et.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return et, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}

	return s
}

func (c *Client) CreateEventType(ctx context.Context, et *models.EventType) error {
	_, err := c.db.ExecContext(ctx, `
	INSERT INTO event_types (id, name, custom_color_hex, category_id, created_at)
	VALUES (?, ?, ?, ?, ?)`,
		et.ID,
		et.Name,
		et.CustomColorHex,
		nullable(et.CategoryID),
		formatTime(et.CreatedAt),
	)
	if err != nil {
		return dbError("insert event type", err)
	}

	return nil
}

func (c *Client) EventType(ctx context.Context, id string) (*models.EventType, error) {
	return querySingle(ctx, c.db, `
	SELECT id, name, custom_color_hex, category_id, created_at
	FROM event_types
	WHERE id = ?`,
		scanEventType, "event type", id, id,
	)
}

func (c *Client) EventTypes(ctx context.Context) ([]*models.EventType, error) {
	return queryMultiple(ctx, c.db, `
	SELECT id, name, custom_color_hex, category_id, created_at
	FROM event_types
	ORDER BY created_at ASC, id ASC`,
		scanEventType, "event types",
	)
}

func (c *Client) DeleteEventType(ctx context.Context, id string) error {
	return c.execAffecting(
		ctx,
		"DELETE FROM event_types WHERE id = ?",
		"event type", id, id,
	)
}
