package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/metrics"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/promo"
)

// ErrCacheMiss is returned by a Cache when no snapshot is stored for a session.
var ErrCacheMiss = errors.New("session snapshot not found")

// Cache keeps session snapshots outside the process so a restart does not
// drop live sessions. Entries expire with the session.
type Cache interface {
	Load(ctx context.Context, sessionID string) (Snapshot, error)
	Save(ctx context.Context, sessionID string, snap Snapshot, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}

type Options struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
	CacheTimeout  time.Duration
	Cache         Cache
	Logger        *zap.Logger
	Now           func() time.Time
}

// Registry owns one Store per client session.
type Registry struct {
	opts Options
	log  *zap.Logger

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	store       *Store
	userID      string
	lastSeen    time.Time
	unsubscribe []func()

	// holds counts open streams; a held session is never swept.
	holds    int
	disposed chan struct{}

	saveMu sync.Mutex
}

func NewRegistry(opts Options) *Registry {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 30 * time.Minute
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}
	if opts.CacheTimeout <= 0 {
		opts.CacheTimeout = 2 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Registry{
		opts:     opts,
		log:      logger.Named("session"),
		sessions: make(map[string]*entry),
	}
}

// Get returns the store for sessionID, creating it on first use. A new store
// is seeded from the cache when one is configured.
func (r *Registry) Get(ctx context.Context, sessionID string) *Store {
	r.mu.Lock()
	if e, ok := r.sessions[sessionID]; ok {
		e.lastSeen = r.opts.Now()
		r.mu.Unlock()
		return e.store
	}
	r.mu.Unlock()

	store := New()
	r.restore(ctx, sessionID, store)

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[sessionID]; ok {
		store.Close()
		e.lastSeen = r.opts.Now()
		return e.store
	}

	e := &entry{store: store, lastSeen: r.opts.Now(), disposed: make(chan struct{})}
	if r.opts.Cache != nil {
		save := func() { r.persist(sessionID, e) }
		e.unsubscribe = append(e.unsubscribe,
			store.SubscribeCart(func([]cart.Item) { save() }),
			store.SubscribePromo(func(promo.Verified) { save() }),
		)
	}
	r.sessions[sessionID] = e
	metrics.ActiveSessions.Set(float64(len(r.sessions)))

	r.log.Debug("session created", zap.String("session_id", sessionID))
	return store
}

// Hold returns the store for sessionID and keeps the session alive until
// release is called. disposed is closed when the session is deleted or the
// registry shuts down; the store has no listeners after that.
func (r *Registry) Hold(ctx context.Context, sessionID string) (store *Store, disposed <-chan struct{}, release func()) {
	for {
		store = r.Get(ctx, sessionID)

		r.mu.Lock()
		e, ok := r.sessions[sessionID]
		if !ok || e.store != store {
			// swept between Get and here
			r.mu.Unlock()
			continue
		}
		e.holds++
		r.mu.Unlock()

		var once sync.Once
		release = func() {
			once.Do(func() {
				r.mu.Lock()
				defer r.mu.Unlock()
				e.holds--
				e.lastSeen = r.opts.Now()
			})
		}
		return store, e.disposed, release
	}
}

// Lookup returns an existing store without creating one.
func (r *Registry) Lookup(sessionID string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[sessionID]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.opts.Now()
	return e.store, true
}

// BindUser records the authenticated user of a session.
func (r *Registry) BindUser(sessionID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[sessionID]; ok {
		e.userID = userID
	}
}

func (r *Registry) UserID(sessionID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[sessionID]; ok {
		return e.userID
	}
	return ""
}

// Delete disposes the session and its cached snapshot.
func (r *Registry) Delete(ctx context.Context, sessionID string) {
	r.mu.Lock()
	e, ok := r.sessions[sessionID]
	if ok {
		delete(r.sessions, sessionID)
		metrics.ActiveSessions.Set(float64(len(r.sessions)))
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	r.dispose(ctx, sessionID, e)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep disposes sessions idle for longer than the idle TTL and returns how
// many were removed.
func (r *Registry) Sweep(ctx context.Context) int {
	cutoff := r.opts.Now().Add(-r.opts.IdleTTL)

	r.mu.Lock()
	expired := make(map[string]*entry)
	for id, e := range r.sessions {
		if e.holds == 0 && e.lastSeen.Before(cutoff) {
			expired[id] = e
			delete(r.sessions, id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	for id, e := range expired {
		r.dispose(ctx, id, e)
	}
	if len(expired) > 0 {
		r.log.Info("expired idle sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps on every tick until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Close disposes every in-memory session. Cached snapshots are kept so a
// restarted process can pick them up.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*entry)
	metrics.ActiveSessions.Set(0)
	r.mu.Unlock()

	for _, e := range sessions {
		e.close()
	}
}

func (e *entry) close() {
	for _, unsubscribe := range e.unsubscribe {
		unsubscribe()
	}
	e.store.Close()
	close(e.disposed)
}

func (r *Registry) dispose(ctx context.Context, sessionID string, e *entry) {
	e.close()

	if r.opts.Cache == nil {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, r.opts.CacheTimeout)
	defer cancel()
	if err := r.opts.Cache.Delete(cctx, sessionID); err != nil {
		r.log.Warn("delete session snapshot", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (r *Registry) restore(ctx context.Context, sessionID string, store *Store) {
	if r.opts.Cache == nil {
		return
	}

	cctx, cancel := context.WithTimeout(ctx, r.opts.CacheTimeout)
	defer cancel()

	snap, err := r.opts.Cache.Load(cctx, sessionID)
	if errors.Is(err, ErrCacheMiss) {
		return
	}
	if err != nil {
		r.log.Warn("load session snapshot", zap.String("session_id", sessionID), zap.Error(err))
		return
	}

	for _, it := range snap.Items {
		store.AddToCart(it)
	}
	store.SetVerifiedPromoCode(snap.Promo)
	r.log.Debug("session restored", zap.String("session_id", sessionID), zap.Int("lines", len(snap.Items)))
}

// persist saves the current snapshot. Saves of one session are serialised
// and each reads the state under the lock, so the last save always carries
// the latest cart and promo.
func (r *Registry) persist(sessionID string, e *entry) {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), r.opts.CacheTimeout)
	defer cancel()

	if err := r.opts.Cache.Save(ctx, sessionID, e.store.Snapshot(), r.opts.IdleTTL); err != nil {
		r.log.Warn("save session snapshot", zap.String("session_id", sessionID), zap.Error(err))
	}
}
