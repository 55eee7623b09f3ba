package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterTTL   = 15 * time.Minute
	sweepEvery   = 5 * time.Minute
	retryAfterS  = "60"
	msgRateLimit = "Too many requests, please try again later"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore 每个客户端 IP 一个令牌桶，访问时顺带清理过期条目
type limiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	perMinute int
	lastSweep time.Time
	now       func() time.Time
}

func newLimiterStore(perMinute int) *limiterStore {
	return &limiterStore{
		limiters:  make(map[string]*limiterEntry),
		perMinute: perMinute,
		now:       time.Now,
	}
}

func (s *limiterStore) limiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) > sweepEvery {
		for k, e := range s.limiters {
			if now.Sub(e.lastSeen) > limiterTTL {
				delete(s.limiters, k)
			}
		}
		s.lastSweep = now
	}

	if e, ok := s.limiters[key]; ok {
		e.lastSeen = now
		return e.limiter
	}
	interval := time.Minute / time.Duration(s.perMinute)
	l := rate.NewLimiter(rate.Every(interval), s.perMinute)
	s.limiters[key] = &limiterEntry{limiter: l, lastSeen: now}
	return l
}

// RateLimit perMinute <= 0 时不限流
func RateLimit(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	store := newLimiterStore(perMinute)
	return func(c *gin.Context) {
		if !store.limiter(c.ClientIP()).Allow() {
			c.Header("Retry-After", retryAfterS)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": msgRateLimit})
			return
		}
		c.Next()
	}
}
