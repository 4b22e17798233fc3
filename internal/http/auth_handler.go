package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	mw "github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
)

// forward decodes a request contract, hands it to the auth API and writes
// the envelope back unchanged. ok is false when a response has already been
// written for an error.
func forward[Req, Data any](h *Handler, w http.ResponseWriter, r *http.Request,
	call func(ctx context.Context, req Req) (auth.AuthResponse[Data], error),
) (resp auth.AuthResponse[Data], ok bool) {
	var req Req
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return resp, false
	}

	ctx, cancel := h.upstreamCtx(r)
	defer cancel()

	resp, err := call(ctx, req)
	if err != nil {
		h.log.Warn("auth api call", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, r, http.StatusBadGateway, "auth service unavailable")
		return resp, false
	}

	status := resp.StatusCode
	if status < 100 || status > 599 {
		status = http.StatusOK
		if !resp.Success {
			status = http.StatusBadGateway
		}
	}
	writeJSON(w, status, resp)
	return resp, true
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	forward(h, w, r, h.auth.Signup)
}

// Login binds the session to the authenticated user so checkout events carry
// the user id.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	resp, ok := forward(h, w, r, h.auth.Login)
	if ok && resp.Success && resp.Data.User.ID != "" {
		sessionID := mw.GetSessionID(r.Context())
		h.sessions.Get(r.Context(), sessionID)
		h.sessions.BindUser(sessionID, resp.Data.User.ID)
	}
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.BindUser(mw.GetSessionID(r.Context()), "")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	bearer := r.Header.Get("Authorization")
	forward(h, w, r, func(ctx context.Context, req auth.ChangePasswordRequest) (auth.AuthResponse[auth.Empty], error) {
		return h.auth.ChangePassword(ctx, bearer, req)
	})
}

func (h *Handler) RequestOtp(w http.ResponseWriter, r *http.Request) {
	forward(h, w, r, h.auth.RequestOtp)
}

func (h *Handler) VerifyOtp(w http.ResponseWriter, r *http.Request) {
	forward(h, w, r, h.auth.VerifyOtp)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	forward(h, w, r, h.auth.ResetPassword)
}

func (h *Handler) VerifyAccount(w http.ResponseWriter, r *http.Request) {
	forward(h, w, r, h.auth.VerifyAccount)
}
