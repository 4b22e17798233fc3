package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
)

type CatalogClient struct{ c *Client }

func NewCatalogClient(c *Client) *CatalogClient { return &CatalogClient{c: c} }

func (cc *CatalogClient) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := cc.get(ctx, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (cc *CatalogClient) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	var p catalog.Product
	if err := cc.get(ctx, "/products/"+url.PathEscape(id), &p); err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

func (cc *CatalogClient) get(ctx context.Context, path string, out any) error {
	resp, err := cc.c.Do(ctx, http.MethodGet, path, "", nil, http.Header{"Accept": {"application/json"}})
	if err != nil {
		return fmt.Errorf("%s: GET %s: %w", cc.c.Name, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return catalog.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return &StatusError{Service: cc.c.Name, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode %s: %w", cc.c.Name, path, err)
	}
	return nil
}
