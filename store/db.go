package store

import (
	"context"

	"github.com/itimeapp/itime/internal/models"
)

// DB is the database storage interface.
type DB interface {
	// CreateCategory inserts a new category.
	CreateCategory(ctx context.Context, cat *models.Category) error
	// Categories returns every category ordered by sort order then name.
	Categories(ctx context.Context) ([]*models.Category, error)
	// MergeCategories moves the event types of each dropped category onto
	// keep and deletes the dropped categories.
	MergeCategories(ctx context.Context, keepID string, dropIDs []string) error
	// DeleteCategory deletes a category and cascades to its event types.
	DeleteCategory(ctx context.Context, id string) error

	CreateEventType(ctx context.Context, et *models.EventType) error
	EventType(ctx context.Context, id string) (*models.EventType, error)
	EventTypes(ctx context.Context) ([]*models.EventType, error)
	DeleteEventType(ctx context.Context, id string) error

	// InsertRecord stores a new, usually active, record.
	InsertRecord(ctx context.Context, r *models.Record) error
	// SaveRecord persists the mutable fields of an existing record.
	SaveRecord(ctx context.Context, r *models.Record) error
	// Records returns the records matching q.
	Records(ctx context.Context, q RecordQuery) ([]*models.Record, error)
	DeleteRecord(ctx context.Context, id string) error

	Close() error
}

var _ DB = (*Client)(nil)
