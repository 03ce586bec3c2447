// Package shoplist owns the in-memory shopping list and keeps it in step
// with a store.Store. Every mutation is written through before it returns.
package shoplist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/Makepad-fr/shop/internal/model"
	"github.com/Makepad-fr/shop/internal/store"
)

// List is the shopping list controller. The zero value is not usable; build
// one with Open. Methods are safe for concurrent use.
type List struct {
	mu     sync.Mutex
	items  []model.Item
	nextID int

	store    store.Store
	log      *slog.Logger
	hydrated error
}

// Option configures Open.
type Option func(*List)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *List) {
		if l != nil {
			c.log = l
		}
	}
}

// Open hydrates a List from s. A missing or malformed blob yields an empty
// list; only a failing medium is returned as an error.
func Open(ctx context.Context, s store.Store, opts ...Option) (*List, error) {
	l := &List{
		store: s,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(l)
	}

	data, ok, err := s.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if !ok {
		l.log.Debug("no stored list, starting empty")
		return l, nil
	}

	items, err := decode(data)
	if err != nil {
		l.hydrated = err
		l.log.Warn("stored list is malformed, starting empty", "error", err, "bytes", len(data))
		return l, nil
	}
	l.items = l.repairIDs(l.dropBlank(items))
	l.log.Debug("hydrated", "items", len(l.items), "next_id", l.nextID)
	return l, nil
}

func decode(data []byte) ([]model.Item, error) {
	var items []model.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if items == nil {
		return nil, errors.New("json unmarshal: null list")
	}
	return items, nil
}

// dropBlank discards stored entries whose title is empty or whitespace only.
// Add and Rename never produce them.
func (l *List) dropBlank(items []model.Item) []model.Item {
	return slices.DeleteFunc(items, func(it model.Item) bool {
		if strings.TrimSpace(it.Title) != "" {
			return false
		}
		l.log.Warn("stored item has a blank title, dropping", "id", it.ID)
		return true
	})
}

// repairIDs seeds nextID past the largest stored id and gives fresh ids to
// any later entry that repeats an earlier one.
func (l *List) repairIDs(items []model.Item) []model.Item {
	for _, it := range items {
		if it.ID >= l.nextID {
			l.nextID = it.ID + 1
		}
	}
	seen := make(map[int]struct{}, len(items))
	for i := range items {
		if _, dup := seen[items[i].ID]; dup {
			l.log.Warn("duplicate stored id, reassigning", "id", items[i].ID, "new_id", l.nextID)
			items[i].ID = l.nextID
			l.nextID++
		}
		seen[items[i].ID] = struct{}{}
	}
	return items
}

// HydrationErr reports why the stored blob was discarded at Open, or nil.
func (l *List) HydrationErr() error { return l.hydrated }

// Items returns a snapshot of the list in insertion order.
func (l *List) Items() []model.Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.items)
}

// Add appends a new pending item.
func (l *List) Add(ctx context.Context, title string) (model.Item, error) {
	title, err := model.NormalizeTitle(title)
	if err != nil {
		return model.Item{}, fmt.Errorf("%w: %w", ErrInvalidTitle, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	it := model.Item{ID: l.nextID, Title: title}
	l.nextID++
	l.items = append(l.items, it)
	return it, l.persist(ctx, "add", it.ID)
}

// Remove deletes the item with id.
func (l *List) Remove(ctx context.Context, id int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.index(id)
	if i < 0 {
		return fmt.Errorf("remove %d: %w", id, ErrNotFound)
	}
	l.items = slices.Delete(l.items, i, i+1)
	return l.persist(ctx, "remove", id)
}

// Toggle flips the completed flag of the item with id.
func (l *List) Toggle(ctx context.Context, id int) (model.Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.index(id)
	if i < 0 {
		return model.Item{}, fmt.Errorf("toggle %d: %w", id, ErrNotFound)
	}
	l.items[i].Completed = !l.items[i].Completed
	return l.items[i], l.persist(ctx, "toggle", id)
}

// Rename replaces the title of the item with id.
func (l *List) Rename(ctx context.Context, id int, title string) (model.Item, error) {
	title, err := model.NormalizeTitle(title)
	if err != nil {
		return model.Item{}, fmt.Errorf("%w: %w", ErrInvalidTitle, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.index(id)
	if i < 0 {
		return model.Item{}, fmt.Errorf("rename %d: %w", id, ErrNotFound)
	}
	l.items[i].Title = title
	return l.items[i], l.persist(ctx, "rename", id)
}

func (l *List) index(id int) int {
	return slices.IndexFunc(l.items, func(it model.Item) bool { return it.ID == id })
}

// persist writes the whole list. Callers hold mu.
func (l *List) persist(ctx context.Context, op string, id int) error {
	items := l.items
	if items == nil {
		items = []model.Item{}
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: json marshal: %w", ErrStoreWrite, err)
	}
	if err := l.store.Save(ctx, b); err != nil {
		l.log.Error("save failed, change is in memory only", "op", op, "id", id, "error", err)
		return fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}
	l.log.Debug("saved", "op", op, "id", id, "items", len(items))
	return nil
}
