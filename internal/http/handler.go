package http

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/contracts"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	mw "github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/promo"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
)

type CheckoutPublisher interface {
	PublishCartCheckedOut(ctx context.Context, meta events.EventMeta, c contracts.Checkout) error
}

type PromoVerifier interface {
	Verify(ctx context.Context, code string) (promo.VerifyResponse, error)
}

type ProductSource interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
}

type AuthAPI interface {
	Signup(ctx context.Context, req auth.SignupRequest) (auth.AuthResponse[auth.User], error)
	Login(ctx context.Context, req auth.LoginRequest) (auth.AuthResponse[auth.LoginResponse], error)
	ChangePassword(ctx context.Context, bearer string, req auth.ChangePasswordRequest) (auth.AuthResponse[auth.Empty], error)
	RequestOtp(ctx context.Context, req auth.RequestOtpRequest) (auth.AuthResponse[auth.ResendOtpResponse], error)
	VerifyOtp(ctx context.Context, req auth.VerifyOtpRequest) (auth.AuthResponse[auth.Empty], error)
	ResetPassword(ctx context.Context, req auth.ResetPasswordRequest) (auth.AuthResponse[auth.Empty], error)
	VerifyAccount(ctx context.Context, req auth.VerifyAccountRequest) (auth.AuthResponse[auth.User], error)
}

type Deps struct {
	Sessions  *session.Registry
	Publisher CheckoutPublisher
	Promo     PromoVerifier
	Catalog   ProductSource
	Auth      AuthAPI
	Logger    *zap.Logger
	// UpstreamTimeout bounds every call to the external API and the broker.
	UpstreamTimeout time.Duration
	// StreamKeepAlive is the interval of SSE comment frames.
	StreamKeepAlive time.Duration
}

type Handler struct {
	sessions  *session.Registry
	publisher CheckoutPublisher
	promo     PromoVerifier
	catalog   ProductSource
	auth      AuthAPI
	log       *zap.Logger
	timeout   time.Duration
	keepAlive time.Duration
}

func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := d.UpstreamTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	keepAlive := d.StreamKeepAlive
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}
	return &Handler{
		sessions:  d.Sessions,
		publisher: d.Publisher,
		promo:     d.Promo,
		catalog:   d.Catalog,
		auth:      d.Auth,
		log:       logger.Named("http"),
		timeout:   timeout,
		keepAlive: keepAlive,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.sessions.Len(),
	})
}

func (h *Handler) store(r *http.Request) *session.Store {
	return h.sessions.Get(r.Context(), mw.GetSessionID(r.Context()))
}

func (h *Handler) upstreamCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}
