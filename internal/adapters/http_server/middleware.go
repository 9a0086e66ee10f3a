package httpserver

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"hotel_booking/internal/adapters/observability"
)

func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return http.TimeoutHandler(next, d, "timeout") }
}

// recorder remembers the first status code and counts body bytes.
type recorder struct {
	http.ResponseWriter
	code  int
	bytes int
}

func (w *recorder) WriteHeader(code int) {
	if w.code == 0 {
		w.code = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *recorder) Write(b []byte) (int, error) {
	if w.code == 0 {
		w.code = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *recorder) status() int {
	if w.code == 0 {
		return http.StatusOK
	}
	return w.code
}

// route reports the matched chi pattern so metric labels stay bounded.
func route(r *http.Request) string {
	rc := chi.RouteContext(r.Context())
	if rc == nil || rc.RoutePattern() == "" {
		return "unmatched"
	}
	return rc.RoutePattern()
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &recorder{ResponseWriter: w}
		began := time.Now()
		next.ServeHTTP(rec, r)
		observability.ObserveHTTP(route(r), r.Method, rec.status(), time.Since(began))
	})
}

// Logger writes one line per request; 4xx go out at warn, 5xx at error.
func Logger(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &recorder{ResponseWriter: w}
			began := time.Now()
			next.ServeHTTP(rec, r)

			code := rec.status()
			var ev *zerolog.Event
			switch {
			case code >= 500:
				ev = l.Error()
			case code >= 400:
				ev = l.Warn()
			default:
				ev = l.Info()
			}
			ev.Str("req_id", chimw.GetReqID(r.Context())).
				Str("route", route(r)).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", code).
				Int("bytes", rec.bytes).
				Dur("duration", time.Since(began)).
				Str("remote", clientIP(r)).
				Str("ua", r.UserAgent()).
				Msg("http_request")
		})
	}
}

// clientIP strips the port; RealIP upstream has already applied the proxy headers.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// ClientLimiter keeps one token bucket per actor, or per client IP for
// anonymous callers. A non-positive rps disables limiting. Buckets idle for
// longer than idleTTL are dropped, swept at most once per idleTTL.
type ClientLimiter struct {
	rps       rate.Limit
	burst     int
	idleTTL   time.Duration
	now       func() time.Time
	mu        sync.Mutex
	clients   map[string]*clientBucket
	lastSweep time.Time
}

type clientBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

const defaultIdleTTL = 10 * time.Minute

func NewClientLimiter(rps int) *ClientLimiter {
	return &ClientLimiter{
		rps:       rate.Limit(rps),
		burst:     rps * 2,
		idleTTL:   defaultIdleTTL,
		now:       time.Now,
		clients:   map[string]*clientBucket{},
		lastSweep: time.Now(),
	}
}

func (c *ClientLimiter) bucket(key string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if now.Sub(c.lastSweep) >= c.idleTTL {
		c.sweep(now)
	}
	b, ok := c.clients[key]
	if !ok {
		b = &clientBucket{lim: rate.NewLimiter(c.rps, c.burst)}
		c.clients[key] = b
	}
	b.seen = now
	return b.lim
}

// sweep drops buckets unused for idleTTL. Caller holds c.mu.
func (c *ClientLimiter) sweep(now time.Time) {
	for k, b := range c.clients {
		if now.Sub(b.seen) >= c.idleTTL {
			delete(c.clients, k)
		}
	}
	c.lastSweep = now
}

func (c *ClientLimiter) Middleware(next http.Handler) http.Handler {
	if c.rps <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ActorFrom(r.Context()).ID
		if key == "" {
			key = "ip:" + clientIP(r)
		}
		res := c.bucket(key).Reserve()
		if d := res.Delay(); d > 0 {
			res.Cancel()
			w.Header().Set("Retry-After", strconv.Itoa(int(d/time.Second)+1))
			writeProblem(w, http.StatusTooManyRequests, "Too Many Requests", "slow down", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
