package cart

// Item is one line of the cart. VariationID is empty when the product was
// added without picking a variation.
type Item struct {
	ProductID     string  `json:"productId"`
	VariationID   string  `json:"variationId,omitempty"`
	Title         string  `json:"title"`
	Image         string  `json:"image"`
	Price         float64 `json:"price"`
	Quantity      int     `json:"quantity"`
	VariationName string  `json:"variationName,omitempty"`
	Category      string  `json:"category,omitempty"`
	Brand         string  `json:"brand,omitempty"`
	Color         string  `json:"color,omitempty"`
	Description   string  `json:"description,omitempty"`
}

// Identity is the key a cart line is stored under.
type Identity struct {
	ProductID   string
	VariationID string
}

func (it Item) Identity() Identity {
	return Identity{ProductID: it.ProductID, VariationID: it.VariationID}
}

// Listener receives a copy of the cart after every mutation.
type Listener func(items []Item)
