package clients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient("external-api", srv.URL+"/api/v1", srv.Client())
	require.NoError(t, err)
	return c
}

func TestClient_DoPropagatesCorrelationID(t *testing.T) {
	var gotPath, gotCID, gotConn string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCID = r.Header.Get(middleware.HeaderCorrelationID)
		gotConn = r.Header.Get("Proxy-Authorization")
	})

	ctx := context.Background()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	middleware.CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx = r.Context()
	})).ServeHTTP(httptest.NewRecorder(), req)

	resp, err := c.Do(ctx, http.MethodGet, "/products", "", nil, http.Header{"Proxy-Authorization": {"secret"}})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "/api/v1/products", gotPath)
	assert.Equal(t, middleware.GetCorrelationID(ctx), gotCID)
	assert.Empty(t, gotConn)
}

func TestAuthClient_Login(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/auth/login", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req auth.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		if req.Password != "right" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false, "message": "invalid credentials", "statusCode": 401, "traceId": "t-1",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":    true,
			"message":    "ok",
			"statusCode": 200,
			"timestamp":  "2026-01-01T00:00:00Z",
			"data": map[string]any{
				"accessToken": "tok",
				"user":        map[string]any{"id": "u-1", "email": "a@b.c"},
			},
		})
	})
	ac := NewAuthClient(c)

	t.Run("success", func(t *testing.T) {
		resp, err := ac.Login(context.Background(), auth.LoginRequest{Email: "a@b.c", Password: "right"})
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, "tok", resp.Data.AccessToken)
		assert.Equal(t, "u-1", resp.Data.User.ID)
	})

	t.Run("failure envelope is passed through", func(t *testing.T) {
		resp, err := ac.Login(context.Background(), auth.LoginRequest{Email: "a@b.c", Password: "wrong"})
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "invalid credentials", resp.Message)
		assert.Equal(t, "t-1", resp.TraceID)
	})
}

func TestAuthClient_ChangePasswordForwardsBearer(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"success":true,"message":"changed"}`))
	})

	resp, err := NewAuthClient(c).ChangePassword(context.Background(), "Bearer abc", auth.ChangePasswordRequest{CurrentPassword: "a", NewPassword: "b"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestAuthClient_NonJSONIsStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := NewAuthClient(c).RequestOtp(context.Background(), auth.RequestOtpRequest{Email: "a@b.c"})

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
}

func TestPromoClient_Verify(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Code string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch body.Code {
		case "SAVE10":
			_, _ = w.Write([]byte(`{"valid":true,"code":"SAVE10","discountPercent":10}`))
		case "DOWN":
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"valid":false,"message":"unknown code"}`))
		}
	})
	pc := NewPromoClient(c)
	ctx := context.Background()

	resp, err := pc.Verify(ctx, "SAVE10")
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, 10.0, resp.DiscountPercent)

	resp, err = pc.Verify(ctx, "NOPE")
	require.NoError(t, err)
	assert.False(t, resp.Valid)

	_, err = pc.Verify(ctx, "DOWN")
	require.Error(t, err)
}

func TestCatalogClient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/products":
			_, _ = w.Write([]byte(`[{"id":"p1","title":"Lamp","price":12.5},{"id":"p2","title":"Desk","price":99}]`))
		case "/api/v1/products/p1":
			_, _ = w.Write([]byte(`{"id":"p1","title":"Lamp","price":12.5}`))
		case "/api/v1/products/boom":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	cc := NewCatalogClient(c)
	ctx := context.Background()

	products, err := cc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)

	p, err := cc.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Lamp", p.Title)

	_, err = cc.GetProduct(ctx, "missing")
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = cc.GetProduct(ctx, "boom")
	var se *StatusError
	assert.True(t, errors.As(err, &se))
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient("x", "://bad", nil)
	require.Error(t, err)
}
