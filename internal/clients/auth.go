package clients

import (
	"context"
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
)

// AuthClient talks to the account endpoints of the external API. Envelopes
// are returned as received, including unsuccessful ones; err is only set when
// no envelope could be obtained.
type AuthClient struct{ c *Client }

func NewAuthClient(c *Client) *AuthClient { return &AuthClient{c: c} }

func (ac *AuthClient) Signup(ctx context.Context, req auth.SignupRequest) (auth.AuthResponse[auth.User], error) {
	return post[auth.User](ctx, ac.c, "/auth/signup", req, nil)
}

func (ac *AuthClient) Login(ctx context.Context, req auth.LoginRequest) (auth.AuthResponse[auth.LoginResponse], error) {
	return post[auth.LoginResponse](ctx, ac.c, "/auth/login", req, nil)
}

// ChangePassword forwards the caller's Authorization header.
func (ac *AuthClient) ChangePassword(ctx context.Context, bearer string, req auth.ChangePasswordRequest) (auth.AuthResponse[auth.Empty], error) {
	h := http.Header{}
	if bearer != "" {
		h.Set("Authorization", bearer)
	}
	return post[auth.Empty](ctx, ac.c, "/auth/change-password", req, h)
}

func (ac *AuthClient) RequestOtp(ctx context.Context, req auth.RequestOtpRequest) (auth.AuthResponse[auth.ResendOtpResponse], error) {
	return post[auth.ResendOtpResponse](ctx, ac.c, "/auth/request-otp", req, nil)
}

func (ac *AuthClient) VerifyOtp(ctx context.Context, req auth.VerifyOtpRequest) (auth.AuthResponse[auth.Empty], error) {
	return post[auth.Empty](ctx, ac.c, "/auth/verify-otp", req, nil)
}

func (ac *AuthClient) ResetPassword(ctx context.Context, req auth.ResetPasswordRequest) (auth.AuthResponse[auth.Empty], error) {
	return post[auth.Empty](ctx, ac.c, "/auth/reset-password", req, nil)
}

func (ac *AuthClient) VerifyAccount(ctx context.Context, req auth.VerifyAccountRequest) (auth.AuthResponse[auth.User], error) {
	return post[auth.User](ctx, ac.c, "/auth/verify-account", req, nil)
}

func post[T any](ctx context.Context, c *Client, path string, in any, headers http.Header) (auth.AuthResponse[T], error) {
	var out auth.AuthResponse[T]
	status, err := c.doJSON(ctx, http.MethodPost, path, in, headers, &out)
	if err != nil {
		return auth.AuthResponse[T]{}, err
	}
	if out.StatusCode == 0 {
		out.StatusCode = status
	}
	return out, nil
}
