package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
)

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := catalog.ParseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := h.upstreamCtx(r)
	defer cancel()

	products, err := h.catalog.ListProducts(ctx)
	if err != nil {
		h.log.Warn("list products", zap.Error(err))
		writeError(w, r, http.StatusBadGateway, "catalog unavailable")
		return
	}

	writeJSON(w, http.StatusOK, catalog.Apply(products, filter))
}

func (h *Handler) ProductFacets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.upstreamCtx(r)
	defer cancel()

	products, err := h.catalog.ListProducts(ctx)
	if err != nil {
		h.log.Warn("list products", zap.Error(err))
		writeError(w, r, http.StatusBadGateway, "catalog unavailable")
		return
	}

	writeJSON(w, http.StatusOK, catalog.BuildFacets(products))
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.upstreamCtx(r)
	defer cancel()

	p, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "productId"))
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		h.log.Warn("get product", zap.Error(err))
		writeError(w, r, http.StatusBadGateway, "catalog unavailable")
		return
	}

	writeJSON(w, http.StatusOK, p)
}
