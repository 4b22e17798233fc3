package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	mw "github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
)

type RouterOptions struct {
	Logger      *zap.Logger
	CORSOrigins []string
	Verifier    *auth.TokenVerifier
}

func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.CorrelationID)
	r.Use(mw.Observe(logger))
	r.Use(mw.Recover(logger))
	r.Use(mw.CORS(opts.CORSOrigins))

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(mw.SessionID)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Get("/stream", h.Stream)
			r.Post("/checkout", h.Checkout)
			r.Post("/items", h.AddItem)
			r.Patch("/items/{productId}", h.UpdateQuantity)
			r.Delete("/items/{productId}", h.RemoveItem)
			r.Delete("/products/{productId}", h.RemoveProduct)
		})

		r.Route("/promo", func(r chi.Router) {
			r.Get("/", h.GetPromo)
			r.Post("/verify", h.VerifyPromo)
			r.Delete("/", h.ResetPromo)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Get("/facets", h.ProductFacets)
			r.Get("/{productId}", h.GetProduct)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.Signup)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Post("/otp/request", h.RequestOtp)
			r.Post("/otp/verify", h.VerifyOtp)
			r.Post("/password/reset", h.ResetPassword)
			r.Post("/account/verify", h.VerifyAccount)
			r.With(mw.AuthJWT(opts.Verifier)).Post("/password/change", h.ChangePassword)
		})
	})

	return r
}
