package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/itimeapp/itime/internal/models"
)

// Sort orders query results by start time.
type Sort int

const (
	SortStartAsc Sort = iota
	SortStartDesc
)

// RecordQuery filters Records. Zero values disable a filter.
type RecordQuery struct {
	Since       time.Time
	Until       time.Time
	ID          string
	EventTypeID string
	Sort        Sort
	Limit       int
	// ActiveOnly restricts results to records without an end time.
	ActiveOnly bool
}

const recordColumns = `id, event_type_id, start_time, end_time, duration_ns,
	is_valid, calendar_event_id`

func scanRecord(s scanner) (*models.Record, error) {
	var (
		r          = &models.Record{}
		start      string
		end        sql.NullString
		durationNs int64
	)

	err := s.Scan(
		&r.ID,
		&r.EventTypeID,
		&start,
		&end,
		&durationNs,
		&r.Valid,
		&r.CalendarEventID,
	)
	if err != nil {
		return nil, err
	}

	r.StartTime, err = parseTime(start)
	if err != nil {
		return nil, err
	}

	if end.Valid {
		t, err := parseTime(end.String)
		if err != nil {
			return nil, err
		}

		r.EndTime = &t
	}

	r.Duration = time.Duration(durationNs)

	return r, nil
}

func (c *Client) InsertRecord(ctx context.Context, r *models.Record) error {
	_, err := c.db.ExecContext(ctx, `
	INSERT INTO time_records (`+recordColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.EventTypeID,
		formatTime(r.StartTime),
		formatTimePtr(r.EndTime),
		int64(r.Duration),
		r.Valid,
		r.CalendarEventID,
	)
	if err != nil {
		return dbError("insert record", err)
	}

	return nil
}

func (c *Client) SaveRecord(ctx context.Context, r *models.Record) error {
	return c.execAffecting(ctx, `
	UPDATE time_records
	SET end_time = ?, duration_ns = ?, is_valid = ?, calendar_event_id = ?
	WHERE id = ?`,
		"record", r.ID,
		formatTimePtr(r.EndTime),
		int64(r.Duration),
		r.Valid,
		r.CalendarEventID,
		r.ID,
	)
}

func (c *Client) Records(ctx context.Context, q RecordQuery) ([]*models.Record, error) {
	var (
		conditions []string
		args       []any
	)

	if q.ID != "" {
		conditions = append(conditions, "id = ?")
		args = append(args, q.ID)
	}

	if q.ActiveOnly {
		conditions = append(conditions, "end_time IS NULL")
	}

	if q.EventTypeID != "" {
		conditions = append(conditions, "event_type_id = ?")
		args = append(args, q.EventTypeID)
	}

	if !q.Since.IsZero() {
		conditions = append(conditions, "start_time >= ?")
		args = append(args, formatTime(q.Since))
	}

	if !q.Until.IsZero() {
		conditions = append(conditions, "start_time <= ?")
		args = append(args, formatTime(q.Until))
	}

	query := "SELECT " + recordColumns + " FROM time_records"

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	if q.Sort == SortStartDesc {
		query += " ORDER BY start_time DESC, id DESC"
	} else {
		query += " ORDER BY start_time ASC, id ASC"
	}

	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	return queryMultiple(ctx, c.db, query, scanRecord, "records", args...)
}

func (c *Client) DeleteRecord(ctx context.Context, id string) error {
	return c.execAffecting(
		ctx,
		"DELETE FROM time_records WHERE id = ?",
		"record", id, id,
	)
}
