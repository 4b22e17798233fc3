package catalog

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("product not found")

type Variation struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Color string  `json:"color,omitempty"`
	Price float64 `json:"price,omitempty"`
}

type Product struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Image       string      `json:"image"`
	Price       float64     `json:"price"`
	Category    string      `json:"category,omitempty"`
	Brand       string      `json:"brand,omitempty"`
	Color       string      `json:"color,omitempty"`
	Description string      `json:"description,omitempty"`
	Variations  []Variation `json:"variations,omitempty"`
	Rating      float64     `json:"rating,omitempty"`
	CreatedAt   time.Time   `json:"createdAt,omitempty"`
}

// Page is one filtered slice of the catalog.
type Page struct {
	Items  []Product `json:"items"`
	Total  int       `json:"total"`
	Offset int       `json:"offset"`
	Limit  int       `json:"limit"`
}

// Facets lists the values the filter sidebar offers.
type Facets struct {
	Categories []string `json:"categories"`
	Brands     []string `json:"brands"`
	Colors     []string `json:"colors"`
	MinPrice   float64  `json:"minPrice"`
	MaxPrice   float64  `json:"maxPrice"`
}
