package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	limiterIdleThreshold = 1 * time.Hour
	limiterSweepInterval = 30 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client address.
type RateLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*clientLimiter
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewRateLimiter allows requestsPerMinute per client with the given burst and
// starts a sweeper that forgets idle clients. Call Stop to end the sweeper.
func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	if burst <= 0 {
		burst = requestsPerMinute
	}
	rl := &RateLimiter{
		limit:   rate.Limit(float64(requestsPerMinute) / 60),
		burst:   burst,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Allow reports whether the client may make a request now.
func (r *RateLimiter) Allow(client string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	c, ok := r.clients[client]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.clients[client] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// Stop ends the sweeper. It is safe to call more than once.
func (r *RateLimiter) Stop() {
	r.once.Do(func() { close(r.stop) })
}

func (r *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep()
		case <-r.stop:
			return
		}
	}
}

func (r *RateLimiter) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for client, c := range r.clients {
		if now.Sub(c.lastSeen) > limiterIdleThreshold {
			delete(r.clients, client)
		}
	}
}

func (h *handler) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	if h.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		client, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			client = r.RemoteAddr
		}
		if !h.limiter.Allow(client) {
			h.logger.Warn("rate limit exceeded",
				zap.String("op", "server.rateLimited"),
				zap.String("client", client),
				zap.String("path", r.URL.Path),
			)
			h.observeFailure("rate_limit")
			h.writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}
		next(w, r)
	}
}
