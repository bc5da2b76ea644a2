// Package catalog manages categories and event types: preset seeding,
// duplicate prevention and reconciliation, and name lookups.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/maruel/natural"

	"github.com/itimeapp/itime/internal/apperr"
	"github.com/itimeapp/itime/internal/models"
	"github.com/itimeapp/itime/internal/state"
)

const defaultIcon = "circle.fill"

var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var (
	ErrCategoryExists  = &apperr.Error{Message: "a category named %q already exists"}
	ErrEventTypeExists = &apperr.Error{Message: "an event type named %q already exists"}
	ErrNoSuchCategory  = &apperr.Error{Message: "no category named %q"}
	ErrNoSuchEventType = &apperr.Error{Message: "no event type named %q"}

	errEmptyName    = &apperr.Error{Message: "%s name cannot be empty"}
	errInvalidColor = &apperr.Error{
		Message: "color must be a valid hex color code (e.g. #FF0000), got %s",
	}
)

// Store is the persistence the catalog needs.
type Store interface {
	CreateCategory(ctx context.Context, cat *models.Category) error
	Categories(ctx context.Context) ([]*models.Category, error)
	MergeCategories(ctx context.Context, keepID string, dropIDs []string) error
	DeleteCategory(ctx context.Context, id string) error
	CreateEventType(ctx context.Context, et *models.EventType) error
	EventTypes(ctx context.Context) ([]*models.EventType, error)
	DeleteEventType(ctx context.Context, id string) error
}

// Flags records one-shot maintenance passes.
type Flags interface {
	Flag(name string) (bool, error)
	SetFlag(name string) error
}

// Catalog wraps a Store with naming rules.
type Catalog struct {
	db    Store
	flags Flags
	clock clockwork.Clock
	log   *slog.Logger
	newID func() string
}

// New returns a Catalog.
func New(db Store, flags Flags, clock clockwork.Clock, log *slog.Logger) *Catalog {
	return &Catalog{
		db:    db,
		flags: flags,
		clock: clock,
		log:   log,
		newID: uuid.NewString,
	}
}

// Presets returns the categories seeded on first run.
func Presets() []models.Category {
	return []models.Category{
		{Name: "Work", ColorHex: "#3B82F6", Icon: "briefcase.fill", SortOrder: 0},
		{Name: "Study", ColorHex: "#10B981", Icon: "book.fill", SortOrder: 1},
		{Name: "Family", ColorHex: "#EC4899", Icon: "house.fill", SortOrder: 2},
		{Name: "Education", ColorHex: "#14B8A6", Icon: "graduationcap.fill", SortOrder: 3},
		{Name: "Entertainment", ColorHex: "#F59E0B", Icon: "gamecontroller.fill", SortOrder: 4},
		{Name: "Sports", ColorHex: "#EF4444", Icon: "figure.run", SortOrder: 5},
		{Name: "Rest", ColorHex: "#8B5CF6", Icon: "bed.double.fill", SortOrder: 6},
		{Name: "Other", ColorHex: "#6B7280", Icon: "ellipsis.circle.fill", SortOrder: 7},
	}
}

// InitializePresets seeds the preset categories once. A store that already
// holds categories is marked initialized without seeding.
func (c *Catalog) InitializePresets(ctx context.Context) error {
	done, err := c.flags.Flag(state.FlagPresetsInitialized)
	if err != nil || done {
		return err
	}

	existing, err := c.db.Categories(ctx)
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		for _, preset := range Presets() {
			cat := preset
			cat.ID = c.newID()

			if err := c.db.CreateCategory(ctx, &cat); err != nil {
				return err
			}
		}

		c.log.Info("preset categories created", slog.Int("count", len(Presets())))
	}

	return c.flags.SetFlag(state.FlagPresetsInitialized)
}

// ReconcileDuplicates merges categories that share a name, keeping the first
// in sort order. It runs once per state database and returns the number of
// categories removed.
func (c *Catalog) ReconcileDuplicates(ctx context.Context) (int, error) {
	done, err := c.flags.Flag(state.FlagDuplicatesReconciled)
	if err != nil || done {
		return 0, err
	}

	cats, err := c.db.Categories(ctx)
	if err != nil {
		return 0, err
	}

	keep := make(map[string]string)
	drops := make(map[string][]string)

	var order []string

	for _, cat := range cats {
		key := strings.ToLower(strings.TrimSpace(cat.Name))

		if _, ok := keep[key]; !ok {
			keep[key] = cat.ID
			order = append(order, key)

			continue
		}

		drops[key] = append(drops[key], cat.ID)
	}

	removed := 0

	for _, key := range order {
		if len(drops[key]) == 0 {
			continue
		}

		if err := c.db.MergeCategories(ctx, keep[key], drops[key]); err != nil {
			return removed, err
		}

		removed += len(drops[key])
	}

	if removed > 0 {
		c.log.Warn("merged duplicate categories", slog.Int("removed", removed))
	}

	return removed, c.flags.SetFlag(state.FlagDuplicatesReconciled)
}

// Categories lists categories in sort order.
func (c *Catalog) Categories(ctx context.Context) ([]*models.Category, error) {
	return c.db.Categories(ctx)
}

// AddCategory creates a category. Names are unique ignoring case.
func (c *Catalog) AddCategory(
	ctx context.Context,
	name, color, icon string,
) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errEmptyName.Fmt("category")
	}

	if color == "" {
		color = Presets()[0].ColorHex
	}

	if !hexColorRegex.MatchString(color) {
		return nil, errInvalidColor.Fmt(color)
	}

	if icon == "" {
		icon = defaultIcon
	}

	cats, err := c.db.Categories(ctx)
	if err != nil {
		return nil, err
	}

	sortOrder := 0

	for _, cat := range cats {
		if models.SameName(cat.Name, name) {
			return nil, ErrCategoryExists.Fmt(cat.Name)
		}

		sortOrder = max(sortOrder, cat.SortOrder+1)
	}

	cat := &models.Category{
		ID:        c.newID(),
		Name:      name,
		ColorHex:  color,
		Icon:      icon,
		SortOrder: sortOrder,
	}

	if err := c.db.CreateCategory(ctx, cat); err != nil {
		return nil, err
	}

	return cat, nil
}

// FindCategory resolves a category by name.
func (c *Catalog) FindCategory(ctx context.Context, name string) (*models.Category, error) {
	cats, err := c.db.Categories(ctx)
	if err != nil {
		return nil, err
	}

	for _, cat := range cats {
		if models.SameName(cat.Name, name) {
			return cat, nil
		}
	}

	return nil, ErrNoSuchCategory.Fmt(name)
}

// DeleteCategory removes a category together with its event types and
// their records.
func (c *Catalog) DeleteCategory(ctx context.Context, name string) error {
	cat, err := c.FindCategory(ctx, name)
	if err != nil {
		return err
	}

	return c.db.DeleteCategory(ctx, cat.ID)
}

// EventTypes lists event types in natural name order.
func (c *Catalog) EventTypes(ctx context.Context) ([]*models.EventType, error) {
	types, err := c.db.EventTypes(ctx)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(types, func(a, b *models.EventType) int {
		switch {
		case natural.Less(a.Name, b.Name):
			return -1
		case natural.Less(b.Name, a.Name):
			return 1
		default:
			return 0
		}
	})

	return types, nil
}

// AddEventType creates an event type, optionally inside the named category.
func (c *Catalog) AddEventType(
	ctx context.Context,
	name, categoryName, color string,
) (*models.EventType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errEmptyName.Fmt("event type")
	}

	if color != "" && !hexColorRegex.MatchString(color) {
		return nil, errInvalidColor.Fmt(color)
	}

	_, err := c.FindEventType(ctx, name)
	if err == nil {
		return nil, ErrEventTypeExists.Fmt(name)
	}

	if !errors.Is(err, ErrNoSuchEventType) {
		return nil, err
	}

	et := &models.EventType{
		ID:             c.newID(),
		Name:           name,
		CustomColorHex: color,
		CreatedAt:      c.clock.Now(),
	}

	if categoryName != "" {
		cat, err := c.FindCategory(ctx, categoryName)
		if err != nil {
			return nil, err
		}

		et.CategoryID = cat.ID
	}

	if err := c.db.CreateEventType(ctx, et); err != nil {
		return nil, err
	}

	return et, nil
}

// FindEventType resolves an event type by name.
func (c *Catalog) FindEventType(ctx context.Context, name string) (*models.EventType, error) {
	types, err := c.db.EventTypes(ctx)
	if err != nil {
		return nil, err
	}

	for _, et := range types {
		if models.SameName(et.Name, name) {
			return et, nil
		}
	}

	return nil, ErrNoSuchEventType.Fmt(name)
}

// DeleteEventType removes an event type and its records.
func (c *Catalog) DeleteEventType(ctx context.Context, name string) error {
	et, err := c.FindEventType(ctx, name)
	if err != nil {
		return err
	}

	return c.db.DeleteEventType(ctx, et.ID)
}

// CategoryIndex maps category ids to categories.
func (c *Catalog) CategoryIndex(ctx context.Context) (map[string]*models.Category, error) {
	cats, err := c.db.Categories(ctx)
	if err != nil {
		return nil, err
	}

	idx := make(map[string]*models.Category, len(cats))
	for _, cat := range cats {
		idx[cat.ID] = cat
	}

	return idx, nil
}
