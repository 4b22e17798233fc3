package catalog

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

var products = []Product{
	{ID: "p1", Title: "Linen Shirt", Price: 45, Category: "Shirts", Brand: "Acme", Color: "White", Rating: 4.1, CreatedAt: day},
	{ID: "p2", Title: "Denim Jacket", Price: 120, Category: "Jackets", Brand: "Northwind", Color: "Blue", Rating: 4.8, CreatedAt: day.Add(48 * time.Hour)},
	{ID: "p3", Title: "Oxford Shirt", Price: 60, Category: "Shirts", Brand: "Northwind", Color: "Blue", Rating: 3.9, CreatedAt: day.Add(24 * time.Hour),
		Variations: []Variation{{ID: "v1", Name: "Pink", Color: "Pink"}}},
	{ID: "p4", Title: "Canvas Tote", Price: 15, Category: "Bags", Brand: "Acme", Description: "Sturdy shirt-pocket sized tote", Rating: 4.5, CreatedAt: day.Add(72 * time.Hour)},
}

func ids(page Page) []string {
	out := make([]string, 0, len(page.Items))
	for _, p := range page.Items {
		out = append(out, p.ID)
	}
	return out
}

func ptr(f float64) *float64 { return &f }

func TestApply(t *testing.T) {
	tests := map[string]struct {
		filter Filter
		want   []string
		total  int
	}{
		"no filter keeps order":     {filter: Filter{}, want: []string{"p1", "p2", "p3", "p4"}, total: 4},
		"query matches description": {filter: Filter{Query: "SHIRT"}, want: []string{"p1", "p3", "p4"}, total: 3},
		"category":                  {filter: Filter{Categories: []string{"shirts"}}, want: []string{"p1", "p3"}, total: 2},
		"brand and color":           {filter: Filter{Brands: []string{"Northwind"}, Colors: []string{"blue"}}, want: []string{"p2", "p3"}, total: 2},
		"variation color":           {filter: Filter{Colors: []string{"pink"}}, want: []string{"p3"}, total: 1},
		"price range inclusive":     {filter: Filter{MinPrice: ptr(45), MaxPrice: ptr(60)}, want: []string{"p1", "p3"}, total: 2},
		"price ascending":           {filter: Filter{Sort: SortPriceAsc}, want: []string{"p4", "p1", "p3", "p2"}, total: 4},
		"price descending":          {filter: Filter{Sort: SortPriceDesc}, want: []string{"p2", "p3", "p1", "p4"}, total: 4},
		"newest first":              {filter: Filter{Sort: SortNewest}, want: []string{"p4", "p2", "p3", "p1"}, total: 4},
		"rating":                    {filter: Filter{Sort: SortRating}, want: []string{"p2", "p4", "p1", "p3"}, total: 4},
		"title":                     {filter: Filter{Sort: SortTitle}, want: []string{"p4", "p2", "p1", "p3"}, total: 4},
		"paging":                    {filter: Filter{Sort: SortPriceAsc, Limit: 2, Offset: 1}, want: []string{"p1", "p3"}, total: 4},
		"offset past end":           {filter: Filter{Offset: 10}, want: []string{}, total: 4},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			page := Apply(products, tc.filter)
			if diff := cmp.Diff(tc.want, ids(page)); diff != "" {
				t.Errorf("ids mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tc.total, page.Total)
		})
	}
}

func TestApply_DoesNotReorderInput(t *testing.T) {
	in := append([]Product(nil), products...)
	Apply(in, Filter{Sort: SortPriceDesc})
	assert.Equal(t, "p1", in[0].ID)
}

func TestParseFilter(t *testing.T) {
	q := url.Values{
		"q":        {" shirt "},
		"category": {"Shirts,Bags"},
		"brand":    {"Acme", "Northwind"},
		"minPrice": {"10"},
		"maxPrice": {"99.5"},
		"sort":     {"price_desc"},
		"limit":    {"500"},
		"offset":   {"3"},
	}

	f, err := ParseFilter(q)
	require.NoError(t, err)

	assert.Equal(t, "shirt", f.Query)
	assert.Equal(t, []string{"Shirts", "Bags"}, f.Categories)
	assert.Equal(t, []string{"Acme", "Northwind"}, f.Brands)
	assert.Nil(t, f.Colors)
	require.NotNil(t, f.MinPrice)
	assert.Equal(t, 10.0, *f.MinPrice)
	assert.Equal(t, 99.5, *f.MaxPrice)
	assert.Equal(t, SortPriceDesc, f.Sort)
	assert.Equal(t, MaxLimit, f.Limit)
	assert.Equal(t, 3, f.Offset)
}

func TestParseFilter_Errors(t *testing.T) {
	tests := map[string]url.Values{
		"unknown sort":    {"sort": {"cheapest"}},
		"bad price":       {"minPrice": {"ten"}},
		"inverted range":  {"minPrice": {"50"}, "maxPrice": {"10"}},
		"zero limit":      {"limit": {"0"}},
		"negative offset": {"offset": {"-1"}},
	}

	for name, q := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFilter(q)
			require.Error(t, err)
		})
	}
}

func TestBuildFacets(t *testing.T) {
	got := BuildFacets(products)

	want := Facets{
		Categories: []string{"Bags", "Jackets", "Shirts"},
		Brands:     []string{"Acme", "Northwind"},
		Colors:     []string{"Blue", "Pink", "White"},
		MinPrice:   15,
		MaxPrice:   120,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("facets mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildFacets_Empty(t *testing.T) {
	got := BuildFacets(nil)
	assert.Empty(t, got.Categories)
	assert.Zero(t, got.MaxPrice)
}
