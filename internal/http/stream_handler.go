package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	mw "github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/promo"
)

// Stream pushes the session state as server-sent events: one "state" event
// on connect and one after every cart or promo mutation. Bursts of mutations
// are coalesced; the client always receives the latest state. The session
// is not swept while the stream is open, and the stream ends when the
// session is deleted.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sessionID := mw.GetSessionID(r.Context())
	s, disposed, release := h.sessions.Hold(r.Context(), sessionID)
	defer release()

	changed := make(chan struct{}, 1)
	signal := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}
	unsubscribeCart := s.SubscribeCart(func([]cart.Item) { signal() })
	defer unsubscribeCart()
	unsubscribePromo := s.SubscribePromo(func(promo.Verified) { signal() })
	defer unsubscribePromo()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	send := func() error {
		body, err := json.Marshal(newCartResponse(sessionID, s.Snapshot()))
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", body); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	if err := send(); err != nil {
		return
	}

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-disposed:
			return
		case <-changed:
			if err := send(); err != nil {
				return
			}
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
