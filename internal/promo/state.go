package promo

import "sync"

// Verified is the outcome of the last promo code check. The zero value means
// no code has been verified.
type Verified struct {
	Verified bool   `json:"verified"`
	Code     string `json:"code"`
}

type Listener func(v Verified)

// State stores the verification result for one session.
type State struct {
	notifyMu sync.Mutex

	mu        sync.RWMutex
	current   Verified
	listeners []*subscription
}

type subscription struct {
	fn Listener
}

func NewState() *State {
	return &State{}
}

// Set replaces the stored result.
func (s *State) Set(v Verified) {
	s.update(v)
}

// Reset returns to the unverified default.
func (s *State) Reset() {
	s.update(Verified{})
}

func (s *State) Current() Verified {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *State) Subscribe(fn Listener) (unsubscribe func()) {
	sub := &subscription{fn: fn}

	s.mu.Lock()
	s.listeners = append(s.listeners, sub)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, l := range s.listeners {
				if l == sub {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *State) Close() {
	s.mu.Lock()
	s.listeners = nil
	s.mu.Unlock()
}

func (s *State) update(v Verified) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.current = v
	listeners := append([]*subscription(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn(v)
	}
}
