package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/contracts"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/metrics"
	mw "github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/promo"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
)

type cartResponse struct {
	SessionID string          `json:"sessionId"`
	Items     []cart.Item     `json:"items"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Promo     promo.Verified  `json:"promo"`
}

func newCartResponse(sessionID string, snap session.Snapshot) cartResponse {
	return cartResponse{
		SessionID: sessionID,
		Items:     snap.Items,
		ItemCount: cart.ItemCount(snap.Items),
		Subtotal:  cart.Subtotal(snap.Items),
		Promo:     snap.Promo,
	}
}

func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request, s *session.Store) {
	writeJSON(w, http.StatusOK, newCartResponse(mw.GetSessionID(r.Context()), s.Snapshot()))
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, r, h.store(r))
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var item cart.Item
	if err := decodeJSON(w, r, &item); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	item.ProductID = strings.TrimSpace(item.ProductID)
	if item.ProductID == "" {
		writeError(w, r, http.StatusBadRequest, "productId is required")
		return
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if item.Quantity < 0 {
		writeError(w, r, http.StatusBadRequest, "quantity must be positive")
		return
	}

	s := h.store(r)
	s.AddToCart(item)
	metrics.CartMutations.WithLabelValues("add").Inc()

	h.writeCart(w, r, s)
}

type updateQuantityRequest struct {
	VariationID string `json:"variationId"`
	Quantity    *int   `json:"quantity"`
}

// UpdateQuantity sets the quantity of a line; zero or less removes it.
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	var body updateQuantityRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if body.Quantity == nil {
		writeError(w, r, http.StatusBadRequest, "quantity is required")
		return
	}

	s := h.store(r)
	s.UpdateQuantity(productID, body.VariationID, *body.Quantity)
	metrics.CartMutations.WithLabelValues("update_quantity").Inc()

	h.writeCart(w, r, s)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s := h.store(r)
	s.RemoveFromCart(chi.URLParam(r, "productId"), r.URL.Query().Get("variationId"))
	metrics.CartMutations.WithLabelValues("remove").Inc()

	h.writeCart(w, r, s)
}

func (h *Handler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	s := h.store(r)
	s.RemoveProduct(chi.URLParam(r, "productId"))
	metrics.CartMutations.WithLabelValues("remove_product").Inc()

	h.writeCart(w, r, s)
}

// ClearCart empties the cart and drops the verified promo with it.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s := h.store(r)
	s.ClearCart()
	s.ResetVerifiedPromoCode()
	metrics.CartMutations.WithLabelValues("clear").Inc()

	h.writeCart(w, r, s)
}

// Checkout publishes CartCheckedOut for the current cart, then removes the
// published lines and resets the promo. Lines added while publishing stay.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	sessionID := mw.GetSessionID(r.Context())
	s := h.store(r)
	snap := s.Snapshot()

	if len(snap.Items) == 0 {
		metrics.Checkouts.WithLabelValues("empty").Inc()
		writeError(w, r, http.StatusConflict, "cart is empty")
		return
	}

	userID := mw.GetUserID(r.Context())
	if userID == "" {
		userID = h.sessions.UserID(sessionID)
	}

	checkout := contracts.Checkout{
		SessionID: sessionID,
		UserID:    userID,
		Items:     snap.Items,
	}
	if snap.Promo.Verified {
		checkout.PromoCode = snap.Promo.Code
	}

	ctx, cancel := h.upstreamCtx(r)
	defer cancel()

	err := h.publisher.PublishCartCheckedOut(ctx, events.EventMeta{
		CorrelationID: mw.GetCorrelationID(r.Context()),
		PartitionKey:  sessionID,
	}, checkout)
	if errors.Is(err, events.ErrEmptyCart) {
		metrics.Checkouts.WithLabelValues("empty").Inc()
		writeError(w, r, http.StatusConflict, "cart is empty")
		return
	}
	if err != nil {
		metrics.Checkouts.WithLabelValues("error").Inc()
		h.log.Error("publish cart checked out", zap.String("session_id", sessionID), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to publish cart checked out event")
		return
	}

	s.RemoveLines(snap.Items)
	s.ResetVerifiedPromoCode()
	metrics.Checkouts.WithLabelValues("ok").Inc()
	metrics.CartMutations.WithLabelValues("clear").Inc()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "checkout completed",
		"itemCount":   cart.ItemCount(snap.Items),
		"totalAmount": cart.Subtotal(snap.Items),
		"promoCode":   checkout.PromoCode,
	})
}
