package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Container holds the ordered cart lines of one session.
//
// Mutations are serialised and listeners are called synchronously, in
// subscription order, before the mutating call returns. Listeners may read
// the container but must not mutate it.
type Container struct {
	// notifyMu orders notifications the same way as the mutations that caused them.
	notifyMu sync.Mutex

	mu        sync.RWMutex
	items     []Item
	listeners []*subscription
}

type subscription struct {
	fn Listener
}

func NewContainer() *Container {
	return &Container{items: []Item{}}
}

// AddToCart appends the item, or merges it into the existing line with the
// same identity by adding the incoming quantity.
func (c *Container) AddToCart(item Item) {
	c.mutate(func(items []Item) []Item {
		if i := indexOf(items, item.Identity()); i >= 0 {
			items[i].Quantity += item.Quantity
			return items
		}
		return append(items, item)
	})
}

// RemoveFromCart removes the line matching productID and variationID exactly.
func (c *Container) RemoveFromCart(productID, variationID string) {
	id := Identity{ProductID: productID, VariationID: variationID}
	c.mutate(func(items []Item) []Item {
		if i := indexOf(items, id); i >= 0 {
			return append(items[:i], items[i+1:]...)
		}
		return items
	})
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes the line.
func (c *Container) UpdateQuantity(productID, variationID string, quantity int) {
	id := Identity{ProductID: productID, VariationID: variationID}
	c.mutate(func(items []Item) []Item {
		i := indexOf(items, id)
		if i < 0 {
			return items
		}
		if quantity <= 0 {
			return append(items[:i], items[i+1:]...)
		}
		items[i].Quantity = quantity
		return items
	})
}

// RemoveProduct removes every line of productID regardless of variation.
func (c *Container) RemoveProduct(productID string) {
	c.mutate(func(items []Item) []Item {
		kept := items[:0]
		for _, it := range items {
			if it.ProductID != productID {
				kept = append(kept, it)
			}
		}
		return kept
	})
}

// RemoveLines takes the given lines out of the cart, subtracting their
// quantities from the matching identities. A line whose quantity drops to
// zero is removed; quantity added since the lines were read stays.
func (c *Container) RemoveLines(lines []Item) {
	c.mutate(func(items []Item) []Item {
		for _, line := range lines {
			i := indexOf(items, line.Identity())
			if i < 0 {
				continue
			}
			items[i].Quantity -= line.Quantity
			if items[i].Quantity <= 0 {
				items = append(items[:i], items[i+1:]...)
			}
		}
		return items
	})
}

func (c *Container) ClearCart() {
	c.mutate(func([]Item) []Item {
		return []Item{}
	})
}

// Items returns a copy of the cart in display order.
func (c *Container) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clone(c.items)
}

func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// ItemCount is the sum of all line quantities.
func (c *Container) ItemCount() int {
	return ItemCount(c.Items())
}

func (c *Container) Subtotal() decimal.Decimal {
	return Subtotal(c.Items())
}

// Subscribe registers fn for change notifications. The returned function
// removes it again and is safe to call more than once.
func (c *Container) Subscribe(fn Listener) (unsubscribe func()) {
	sub := &subscription{fn: fn}

	c.mu.Lock()
	c.listeners = append(c.listeners, sub)
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.listeners {
				if s == sub {
					c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Close drops every listener.
func (c *Container) Close() {
	c.mu.Lock()
	c.listeners = nil
	c.mu.Unlock()
}

func (c *Container) mutate(apply func(items []Item) []Item) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	c.items = apply(c.items)
	snapshot := clone(c.items)
	listeners := append([]*subscription(nil), c.listeners...)
	c.mu.Unlock()

	for _, l := range listeners {
		l.fn(clone(snapshot))
	}
}

func indexOf(items []Item, id Identity) int {
	for i := range items {
		if items[i].Identity() == id {
			return i
		}
	}
	return -1
}

func clone(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
