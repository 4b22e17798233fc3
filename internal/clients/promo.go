package clients

import (
	"context"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/promo"
)

type PromoClient struct{ c *Client }

func NewPromoClient(c *Client) *PromoClient { return &PromoClient{c: c} }

// Verify asks the promo API whether code is redeemable. A rejected code is
// not an error; it comes back with Valid false.
func (pc *PromoClient) Verify(ctx context.Context, code string) (promo.VerifyResponse, error) {
	var out promo.VerifyResponse
	status, err := pc.c.doJSON(ctx, http.MethodPost, "/promo/verify", promo.VerifyRequest{Code: code}, nil, &out)
	if err != nil {
		return promo.VerifyResponse{}, err
	}
	if status >= http.StatusInternalServerError {
		return promo.VerifyResponse{}, &StatusError{Service: pc.c.Name, StatusCode: status}
	}
	return out, nil
}
