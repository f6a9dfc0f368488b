package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// visitors tracks one token bucket per client IP. Buckets idle longer than
// idleTTL are dropped by the sweep loop so the map stays bounded.
type visitors struct {
	mu      sync.Mutex
	byIP    map[string]*visitor
	r       rate.Limit
	burst   int
	idleTTL time.Duration
}

func (v *visitors) get(ip string) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()
	vis, ok := v.byIP[ip]
	if !ok {
		vis = &visitor{lim: rate.NewLimiter(v.r, v.burst)}
		v.byIP[ip] = vis
	}
	vis.lastSeen = time.Now()
	return vis.lim
}

func (v *visitors) pruneIdle(now time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for ip, vis := range v.byIP {
		if now.Sub(vis.lastSeen) > v.idleTTL {
			delete(v.byIP, ip)
		}
	}
}

func (v *visitors) sweep() {
	ticker := time.NewTicker(v.idleTTL / 2)
	defer ticker.Stop()
	for now := range ticker.C {
		v.pruneIdle(now)
	}
}

// RateLimit applies per-IP token-bucket rate limiting. r is the sustained
// requests-per-second rate, burst the bucket size, idleTTL how long an idle
// client's bucket is kept before it is swept (<= 0 uses 10 minutes).
func RateLimit(r rate.Limit, burst int, idleTTL time.Duration) gin.HandlerFunc {
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	v := &visitors{
		byIP:    make(map[string]*visitor),
		r:       r,
		burst:   burst,
		idleTTL: idleTTL,
	}
	go v.sweep()

	return func(c *gin.Context) {
		if !v.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
