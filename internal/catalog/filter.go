package catalog

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

type SortOrder string

const (
	SortNone      SortOrder = ""
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortNewest    SortOrder = "newest"
	SortRating    SortOrder = "rating"
	SortTitle     SortOrder = "title"

	DefaultLimit = 24
	MaxLimit     = 100
)

// Filter narrows a product listing. Zero values mean "no constraint".
type Filter struct {
	Query      string
	Categories []string
	Brands     []string
	Colors     []string
	MinPrice   *float64
	MaxPrice   *float64
	Sort       SortOrder
	Limit      int
	Offset     int
}

// ParseFilter reads a Filter from URL query parameters. Multi-value fields
// accept repeated keys or comma separated values.
func ParseFilter(q url.Values) (Filter, error) {
	f := Filter{
		Query:      strings.TrimSpace(q.Get("q")),
		Categories: multi(q, "category"),
		Brands:     multi(q, "brand"),
		Colors:     multi(q, "color"),
		Sort:       SortOrder(q.Get("sort")),
		Limit:      DefaultLimit,
	}

	switch f.Sort {
	case SortNone, SortPriceAsc, SortPriceDesc, SortNewest, SortRating, SortTitle:
	default:
		return Filter{}, fmt.Errorf("unknown sort %q", f.Sort)
	}

	var err error
	if f.MinPrice, err = optionalFloat(q, "minPrice"); err != nil {
		return Filter{}, err
	}
	if f.MaxPrice, err = optionalFloat(q, "maxPrice"); err != nil {
		return Filter{}, err
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return Filter{}, fmt.Errorf("minPrice greater than maxPrice")
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Filter{}, fmt.Errorf("invalid limit %q", v)
		}
		f.Limit = min(n, MaxLimit)
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Filter{}, fmt.Errorf("invalid offset %q", v)
		}
		f.Offset = n
	}

	return f, nil
}

// Apply filters, sorts and pages products. The input slice is not modified.
func Apply(products []Product, f Filter) Page {
	matched := make([]Product, 0, len(products))
	for _, p := range products {
		if f.matches(p) {
			matched = append(matched, p)
		}
	}

	sortProducts(matched, f.Sort)

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	page := Page{Total: len(matched), Offset: f.Offset, Limit: limit, Items: []Product{}}
	if f.Offset < len(matched) {
		end := min(f.Offset+limit, len(matched))
		page.Items = matched[f.Offset:end]
	}
	return page
}

// BuildFacets collects the distinct filter values across products.
func BuildFacets(products []Product) Facets {
	facets := Facets{
		Categories: []string{},
		Brands:     []string{},
		Colors:     []string{},
	}
	seen := map[string]map[string]bool{"category": {}, "brand": {}, "color": {}}
	add := func(kind, v string, dst *[]string) {
		if v == "" || seen[kind][strings.ToLower(v)] {
			return
		}
		seen[kind][strings.ToLower(v)] = true
		*dst = append(*dst, v)
	}

	for i, p := range products {
		add("category", p.Category, &facets.Categories)
		add("brand", p.Brand, &facets.Brands)
		add("color", p.Color, &facets.Colors)
		for _, v := range p.Variations {
			add("color", v.Color, &facets.Colors)
		}

		if i == 0 || p.Price < facets.MinPrice {
			facets.MinPrice = p.Price
		}
		if i == 0 || p.Price > facets.MaxPrice {
			facets.MaxPrice = p.Price
		}
	}

	sort.Strings(facets.Categories)
	sort.Strings(facets.Brands)
	sort.Strings(facets.Colors)
	return facets
}

func (f Filter) matches(p Product) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) &&
			!strings.Contains(strings.ToLower(p.Brand), q) {
			return false
		}
	}
	if !oneOf(f.Categories, p.Category) || !oneOf(f.Brands, p.Brand) {
		return false
	}
	if len(f.Colors) > 0 && !oneOf(f.Colors, p.Color) && !variationColorIn(p, f.Colors) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	return true
}

func sortProducts(products []Product, order SortOrder) {
	var less func(a, b Product) bool
	switch order {
	case SortPriceAsc:
		less = func(a, b Product) bool { return a.Price < b.Price }
	case SortPriceDesc:
		less = func(a, b Product) bool { return a.Price > b.Price }
	case SortNewest:
		less = func(a, b Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	case SortRating:
		less = func(a, b Product) bool { return a.Rating > b.Rating }
	case SortTitle:
		less = func(a, b Product) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	default:
		return
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}

func oneOf(allowed []string, v string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(a, v) {
			return true
		}
	}
	return false
}

func variationColorIn(p Product, colors []string) bool {
	for _, v := range p.Variations {
		if v.Color != "" && oneOf(colors, v.Color) {
			return true
		}
	}
	return false
}

func multi(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func optionalFloat(q url.Values, key string) (*float64, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, v)
	}
	return &f, nil
}
