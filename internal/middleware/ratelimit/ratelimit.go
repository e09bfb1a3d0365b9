package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"ChatEduca/pkg/back"
	"ChatEduca/pkg/xerr"
	"ChatEduca/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	CodeRateLimit = "RATE_LIMIT_ERROR"
	keyPrefix     = "chateduca:ratelimit:"
	maxLimiters   = 10000
)

var ErrTooManyRequests = xerr.New(http.StatusTooManyRequests, CodeRateLimit, "Muitas requisições deste IP, tente novamente mais tarde")

// Counter is a shared fixed-window counter, normally redis.
type Counter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type Config struct {
	Window      time.Duration
	MaxRequests int
}

type limiter struct {
	conf    Config
	counter Counter

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

// New limits requests per client IP. With a nil counter, or while the
// counter fails, each process enforces the limit on its own with a token
// bucket refilled at MaxRequests per Window.
func New(conf Config, counter Counter) gin.HandlerFunc {
	l := &limiter{conf: conf, counter: counter, local: make(map[string]*rate.Limiter)}
	return l.handle
}

func (l *limiter) handle(c *gin.Context) {
	ip := c.ClientIP()
	c.Header("RateLimit-Limit", strconv.Itoa(l.conf.MaxRequests))

	if l.counter != nil {
		count, left, err := l.counter.IncrWindow(c.Request.Context(), keyPrefix+ip, l.conf.Window)
		if err == nil {
			remaining := int64(l.conf.MaxRequests) - count
			if remaining < 0 {
				remaining = 0
			}
			c.Header("RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			c.Header("RateLimit-Reset", strconv.FormatInt(int64(left.Round(time.Second)/time.Second), 10))
			if count > int64(l.conf.MaxRequests) {
				reject(c, left)
				return
			}
			c.Next()
			return
		}
		zlog.Warn("rate limit counter failed, using local limiter", zap.Error(err))
	}

	lim := l.localFor(ip)
	if !lim.Allow() {
		reject(c, l.conf.Window/time.Duration(l.conf.MaxRequests))
		return
	}
	c.Header("RateLimit-Remaining", strconv.Itoa(int(lim.Tokens())))
	c.Next()
}

func (l *limiter) localFor(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.local[ip]
	if !ok {
		if len(l.local) >= maxLimiters {
			l.local = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(rate.Every(l.conf.Window/time.Duration(l.conf.MaxRequests)), l.conf.MaxRequests)
		l.local[ip] = lim
	}
	return lim
}

func reject(c *gin.Context, retryAfter time.Duration) {
	secs := int64(retryAfter.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	c.Header("Retry-After", strconv.FormatInt(secs, 10))
	back.Fail(c, ErrTooManyRequests)
}
