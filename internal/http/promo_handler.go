package http

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/metrics"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/promo"
)

type verifyPromoResponse struct {
	Promo           promo.Verified `json:"promo"`
	Message         string         `json:"message,omitempty"`
	DiscountPercent float64        `json:"discountPercent,omitempty"`
}

func (h *Handler) GetPromo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, verifyPromoResponse{Promo: h.store(r).Promo()})
}

// VerifyPromo checks the code against the promo API and stores the result,
// valid or not, for the session.
func (h *Handler) VerifyPromo(w http.ResponseWriter, r *http.Request) {
	var body promo.VerifyRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	code := strings.TrimSpace(body.Code)
	if code == "" {
		writeError(w, r, http.StatusBadRequest, "code is required")
		return
	}

	ctx, cancel := h.upstreamCtx(r)
	defer cancel()

	resp, err := h.promo.Verify(ctx, code)
	if err != nil {
		metrics.PromoVerifications.WithLabelValues("error").Inc()
		h.log.Warn("verify promo code", zap.Error(err))
		writeError(w, r, http.StatusBadGateway, "promo service unavailable")
		return
	}

	result := resp.Result(code)
	s := h.store(r)
	s.SetVerifiedPromoCode(result)

	outcome := "invalid"
	if result.Verified {
		outcome = "valid"
	}
	metrics.PromoVerifications.WithLabelValues(outcome).Inc()

	writeJSON(w, http.StatusOK, verifyPromoResponse{
		Promo:           result,
		Message:         resp.Message,
		DiscountPercent: resp.DiscountPercent,
	})
}

func (h *Handler) ResetPromo(w http.ResponseWriter, r *http.Request) {
	s := h.store(r)
	s.ResetVerifiedPromoCode()
	writeJSON(w, http.StatusOK, verifyPromoResponse{Promo: s.Promo()})
}
