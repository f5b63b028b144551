// Package app holds the screen controller shared by the TUI and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todo/internal/model"
)

var (
	// ErrEmptyTitle is returned by Create and Import for blank titles.
	ErrEmptyTitle = errors.New("title cannot be empty")
	// ErrInvalidID is returned by Import for negative ids.
	ErrInvalidID = errors.New("invalid id")
)

// Store is the storage the controller drives.
type Store interface {
	Add(ctx context.Context, title string, finished bool) (int64, error)
	Put(ctx context.Context, item model.Item) (int64, error)
	All(ctx context.Context) ([]model.Item, error)
	Get(ctx context.Context, id int64) (model.Item, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, item model.Item) error
	Delete(ctx context.Context, id int64) error
}

// SeedItems are written on first run when the table is empty.
var SeedItems = []model.Item{
	{Title: "get ice cream", Finished: true},
	{Title: "call mom"},
	{Title: "buy plane tickets"},
	{Title: "reserve hotel"},
}

// Options tune the controller.
type Options struct {
	Seed   bool        // seed an empty table on Start
	Logger *log.Logger // nil discards
}

// Controller wires row events to the store. Every mutation is followed by a
// full re-read; Items always reflects the table after the last operation.
type Controller struct {
	store Store
	log   *log.Logger
	seed  bool
	items []model.Item
}

// NewController returns a controller over s.
func NewController(s Store, opt Options) *Controller {
	logger := opt.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{store: s, log: logger, seed: opt.Seed}
}

// Start loads the table, seeding it first if it is empty and seeding is on.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.Refresh(ctx); err != nil {
		return err
	}
	if len(c.items) > 0 || !c.seed {
		return nil
	}
	c.log.Info("populating database", "rows", len(SeedItems))
	if err := c.Seed(ctx); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// Seed writes SeedItems without checking what is already there.
func (c *Controller) Seed(ctx context.Context) error {
	for _, it := range SeedItems {
		if _, err := c.store.Add(ctx, it.Title, it.Finished); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return nil
}

// Refresh re-reads every row.
func (c *Controller) Refresh(ctx context.Context) error {
	items, err := c.store.All(ctx)
	if err != nil {
		return err
	}
	c.items = items
	c.log.Debug("fetched items", "count", len(items))
	return nil
}

// Items returns the rows from the last read.
func (c *Controller) Items() []model.Item {
	out := make([]model.Item, len(c.items))
	copy(out, c.items)
	return out
}

// Get reads one row straight from the store.
func (c *Controller) Get(ctx context.Context, id int64) (model.Item, error) {
	return c.store.Get(ctx, id)
}

// Count returns the number of stored rows.
func (c *Controller) Count(ctx context.Context) (int, error) {
	return c.store.Count(ctx)
}

// Stats counts finished and pending rows.
func (c *Controller) Stats() (done, pending int) {
	for _, it := range c.items {
		if it.Finished {
			done++
		} else {
			pending++
		}
	}
	return
}

// Create adds an unfinished row and returns its id.
func (c *Controller) Create(ctx context.Context, title string) (int64, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, ErrEmptyTitle
	}
	id, err := c.store.Add(ctx, title, false)
	if err != nil {
		return 0, err
	}
	c.log.Info("added item", "id", id, "title", title)
	return id, c.Refresh(ctx)
}

// Update writes the finished flag of item.
func (c *Controller) Update(ctx context.Context, item model.Item) error {
	if err := c.store.Update(ctx, item); err != nil {
		return err
	}
	c.log.Info("updated item", "id", item.ID, "finished", item.Finished)
	return c.Refresh(ctx)
}

// Toggle flips the finished flag of item and writes it.
func (c *Controller) Toggle(ctx context.Context, item model.Item) error {
	item.Finished = !item.Finished
	return c.Update(ctx, item)
}

// Delete removes item.
func (c *Controller) Delete(ctx context.Context, item model.Item) error {
	if err := c.store.Delete(ctx, item.ID); err != nil {
		return err
	}
	c.log.Info("deleted item", "id", item.ID)
	return c.Refresh(ctx)
}

// Restore writes item back under its original id.
func (c *Controller) Restore(ctx context.Context, item model.Item) error {
	if _, err := c.store.Put(ctx, item); err != nil {
		return err
	}
	c.log.Info("restored item", "id", item.ID)
	return c.Refresh(ctx)
}

// Import writes items under their ids, replacing rows that already exist.
// Items without an id are added. Every item is checked before anything is
// written; titles are trimmed.
func (c *Controller) Import(ctx context.Context, items []model.Item) error {
	clean := make([]model.Item, 0, len(items))
	for i, it := range items {
		it.Title = strings.TrimSpace(it.Title)
		if it.Title == "" {
			return fmt.Errorf("item %d: %w", i+1, ErrEmptyTitle)
		}
		if it.ID < 0 {
			return fmt.Errorf("item %d: %w %d", i+1, ErrInvalidID, it.ID)
		}
		clean = append(clean, it)
	}
	for _, it := range clean {
		if _, err := c.store.Put(ctx, it); err != nil {
			return err
		}
	}
	c.log.Info("imported items", "count", len(clean))
	return c.Refresh(ctx)
}

// Dispatch routes a row event. item carries the row state at the time of
// the event, so an update writes item.Finished as given.
func (c *Controller) Dispatch(ctx context.Context, ev Event, item model.Item) error {
	switch ev {
	case EventUpdate:
		return c.Update(ctx, item)
	case EventDelete:
		return c.Delete(ctx, item)
	default:
		c.log.Error("unknown event", "event", string(ev), "id", item.ID)
		return fmt.Errorf("%w %q from item %d", ErrUnknownEvent, string(ev), item.ID)
	}
}
