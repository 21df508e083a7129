package cart

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/fooddash/fooddash-backend/internal/catalog"
	"github.com/fooddash/fooddash-backend/pkg/logger"
)

// Store holds one cart's line items and applies the merge semantics the
// storefront relies on. Persistence is best-effort: a failing Load starts the
// cart empty, a failing Save keeps the in-memory state authoritative. Both are
// logged and never surfaced to the caller.
type Store struct {
	mu      sync.Mutex
	items   []LineItem
	persist PersistenceStrategy
	logg    *logger.Logger
	maxQty  int
}

// NewStore builds a cart store hydrated from the persistence strategy.
// maxItemQuantity caps a single line's quantity; zero means no cap.
func NewStore(ctx context.Context, persist PersistenceStrategy, logg *logger.Logger, maxItemQuantity int) *Store {
	s := &Store{
		persist: persist,
		logg:    logg,
		maxQty:  maxItemQuantity,
	}
	if persist != nil {
		items, err := persist.Load(ctx)
		if err != nil {
			s.logError(ctx, "cart load failed, starting empty", err)
		} else {
			s.items = items
		}
	}
	return s
}

// Items returns a copy of the current line items.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LineItem(nil), s.items...)
}

// AddItem merges into an existing line when the menu item and special
// instructions both match; otherwise it appends a new line with a fresh id.
// It returns the affected line. A menu item without an id cannot participate
// in merge matching, so it is rejected with a logged error.
func (s *Store) AddItem(ctx context.Context, item catalog.MenuItem, quantity int, specialInstructions string) LineItem {
	if strings.TrimSpace(item.ID) == "" {
		s.logError(ctx, "menu item rejected, missing id", errors.New("menu item id is empty"))
		return LineItem{}
	}
	if quantity <= 0 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		line := &s.items[i]
		if line.MenuItem.ID == item.ID && line.SpecialInstructions == specialInstructions {
			line.Quantity = s.capQuantity(line.Quantity + quantity)
			s.save(ctx)
			return *line
		}
	}

	line := LineItem{
		ID:                  uuid.NewString(),
		MenuItem:            item,
		Quantity:            s.capQuantity(quantity),
		SpecialInstructions: specialInstructions,
	}
	s.items = append(s.items, line)
	s.save(ctx)
	return line
}

// RemoveItem deletes the line with the given id. Unknown ids are a no-op.
func (s *Store) RemoveItem(ctx context.Context, lineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == lineID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.save(ctx)
			return
		}
	}
}

// UpdateQuantity sets a line's quantity verbatim. A quantity of zero or less
// removes the line. Returns false when no line matches. The add-time quantity
// cap is a courtesy for new lines, not a store invariant, so no clamping
// happens here.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, quantity int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != lineID {
			continue
		}
		if quantity <= 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
		} else {
			s.items[i].Quantity = quantity
		}
		s.save(ctx)
		return true
	}
	return false
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	if s.persist == nil {
		return
	}
	if err := s.persist.Clear(ctx); err != nil {
		s.logError(ctx, "cart clear failed", err)
	}
}

// ItemCount is the sum of all line quantities.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Composition reports the cart's primary restaurant and whether lines from
// more than one restaurant are present.
func (s *Store) Composition() Composition {
	s.mu.Lock()
	defer s.mu.Unlock()

	var comp Composition
	for _, item := range s.items {
		restaurant := item.Restaurant()
		if restaurant == nil {
			continue
		}
		if comp.Primary == nil {
			primary := *restaurant
			comp.Primary = &primary
			continue
		}
		if comp.Primary.ID != restaurant.ID {
			comp.Mixed = true
		}
	}
	return comp
}

// save persists the full item list under the held lock.
func (s *Store) save(ctx context.Context) {
	if s.persist == nil {
		return
	}
	if err := s.persist.Save(ctx, s.items); err != nil {
		s.logError(ctx, "cart save failed", err)
	}
}

func (s *Store) capQuantity(quantity int) int {
	if s.maxQty > 0 && quantity > s.maxQty {
		return s.maxQty
	}
	return quantity
}

func (s *Store) logError(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(ctx, msg, err)
}
