package session

import (
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/promo"
)

// Snapshot is the combined state of a session.
type Snapshot struct {
	Items []cart.Item    `json:"items"`
	Promo promo.Verified `json:"promo"`
}

// Store is the typed access layer over one session's cart and promo state.
// It forwards every call unchanged.
type Store struct {
	cart  *cart.Container
	promo *promo.State
}

func New() *Store {
	return &Store{
		cart:  cart.NewContainer(),
		promo: promo.NewState(),
	}
}

// Close releases every subscription held by the store.
func (s *Store) Close() {
	s.cart.Close()
	s.promo.Close()
}

func (s *Store) Cart() []cart.Item { return s.cart.Items() }

func (s *Store) Promo() promo.Verified { return s.promo.Current() }

func (s *Store) Subtotal() decimal.Decimal { return s.cart.Subtotal() }

func (s *Store) ItemCount() int { return s.cart.ItemCount() }

func (s *Store) Snapshot() Snapshot {
	return Snapshot{Items: s.cart.Items(), Promo: s.promo.Current()}
}

func (s *Store) AddToCart(item cart.Item) { s.cart.AddToCart(item) }

func (s *Store) RemoveFromCart(productID, variationID string) {
	s.cart.RemoveFromCart(productID, variationID)
}

func (s *Store) UpdateQuantity(productID, variationID string, quantity int) {
	s.cart.UpdateQuantity(productID, variationID, quantity)
}

func (s *Store) RemoveProduct(productID string) { s.cart.RemoveProduct(productID) }

func (s *Store) ClearCart() { s.cart.ClearCart() }

// RemoveLines drops lines read earlier, leaving anything added since.
func (s *Store) RemoveLines(lines []cart.Item) { s.cart.RemoveLines(lines) }

func (s *Store) SetVerifiedPromoCode(v promo.Verified) { s.promo.Set(v) }

func (s *Store) ResetVerifiedPromoCode() { s.promo.Reset() }

func (s *Store) SubscribeCart(fn cart.Listener) func() { return s.cart.Subscribe(fn) }

func (s *Store) SubscribePromo(fn promo.Listener) func() { return s.promo.Subscribe(fn) }
