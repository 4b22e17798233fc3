package middleware

import (
	"context"
	"encoding/json"
	"net/http"
)

const (
	HeaderCorrelationID = "X-Correlation-Id"
	HeaderSessionID     = "X-Session-Id"
)

type ctxKey string

const (
	ctxCorrelationID ctxKey = "correlation_id"
	ctxSessionID     ctxKey = "session_id"
	ctxUserID        ctxKey = "user_id"
)

// ErrorResponse is the JSON body of every error answer.
type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlationId,omitempty"`
}

func GetCorrelationID(ctx context.Context) string { return stringValue(ctx, ctxCorrelationID) }

func GetSessionID(ctx context.Context) string { return stringValue(ctx, ctxSessionID) }

// GetUserID returns the subject of a verified bearer token, if any.
func GetUserID(ctx context.Context) string { return stringValue(ctx, ctxUserID) }

// WithUserID is used by tests and by handlers that learn the user after login.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserID, userID)
}

func stringValue(ctx context.Context, key ctxKey) string {
	if v := ctx.Value(key); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:         msg,
		CorrelationID: GetCorrelationID(r.Context()),
	})
}
