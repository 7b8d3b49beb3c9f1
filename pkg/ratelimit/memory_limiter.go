package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const visitorTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a per-process token bucket limiter, used when Redis is not configured.
// Each (ip, type) pair refills limit tokens per window with a burst of limit.
type MemoryLimiter struct {
	policy
	mu       sync.Mutex
	visitors map[string]*visitor
	stop     chan struct{}
	once     sync.Once
}

func NewMemoryLimiter(config *Config) *MemoryLimiter {
	m := &MemoryLimiter{
		policy:   policy{config: config, now: time.Now},
		visitors: make(map[string]*visitor),
		stop:     make(chan struct{}),
	}
	go m.cleanupVisitors()
	return m
}

func (m *MemoryLimiter) IsAllowed(_ context.Context, clientIP string, limitType RateLimitType) (*Result, error) {
	if res := m.bypass(clientIP, limitType); res != nil {
		return res, nil
	}

	limit := m.getLimit(limitType)
	now := m.now()
	limiter := m.getVisitor(clientIP+"|"+string(limitType), limit, now)

	allowed := limiter.AllowN(now, 1)
	remaining := int(limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: remaining,
		ResetTime: now.Add(m.config.WindowDuration).Unix(),
	}, nil
}

func (m *MemoryLimiter) getVisitor(key string, limit int, now time.Time) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, exists := m.visitors[key]
	if !exists {
		every := rate.Every(m.config.WindowDuration / time.Duration(max(limit, 1)))
		v = &visitor{limiter: rate.NewLimiter(every, limit)}
		m.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// cleanupVisitors drops idle entries once a minute
func (m *MemoryLimiter) cleanupVisitors() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			cutoff := m.now().Add(-visitorTTL)
			m.mu.Lock()
			for key, v := range m.visitors {
				if v.lastSeen.Before(cutoff) {
					delete(m.visitors, key)
				}
			}
			m.mu.Unlock()
		}
	}
}

// Close stops the cleanup goroutine
func (m *MemoryLimiter) Close() {
	m.once.Do(func() { close(m.stop) })
}
