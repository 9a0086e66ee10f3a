// Package catalogfeed downloads catalog documents (hotels with nested rooms)
// published by a remote inventory feed.
package catalogfeed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"hotel_booking/internal/app"
)

const (
	maxAttempts = 4
	maxBody     = 32 << 20
	firstDelay  = 200 * time.Millisecond
)

var (
	ErrNotFound     = errors.New("catalog feed: not found")
	ErrUnauthorized = errors.New("catalog feed: unauthorized")
)

type Client struct {
	hc  *http.Client
	key string
	rl  *rate.Limiter
}

// New builds a client that sends key as X-API-Key (when set) and makes at
// most rps requests per second, retries included.
func New(key string, rps int) *Client {
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		hc:  &http.Client{Timeout: 30 * time.Second},
		key: key,
		rl:  rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// Fetch downloads url and parses it as a catalog. JSON and YAML bodies are
// both accepted.
func (c *Client) Fetch(ctx context.Context, url string) ([]map[string]any, error) {
	body, err := c.download(ctx, url)
	if err != nil {
		return nil, err
	}
	docs, err := app.ParseCatalog(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("catalog feed %s: %w", url, err)
	}
	return docs, nil
}

// outcome of a single attempt; wait > 0 asks for a retry after that delay.
type outcome struct {
	body []byte
	wait time.Duration
	err  error
}

func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	var last error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := c.rl.Wait(ctx); err != nil {
			return nil, err
		}
		o := c.once(ctx, url, attempt)
		if o.wait == 0 {
			return o.body, o.err
		}
		last = o.err
		if attempt == maxAttempts-1 {
			break
		}
		log.Debug().Str("url", url).Int("attempt", attempt+1).Dur("wait", o.wait).Err(o.err).Msg("catalog feed retry")
		if !pause(ctx, o.wait) {
			return nil, ctx.Err()
		}
	}
	return nil, last
}

func (c *Client) once(ctx context.Context, url string, attempt int) outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return outcome{err: err}
	}
	if c.key != "" {
		req.Header.Set("X-API-Key", c.key)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9")
	req.Header.Set("User-Agent", "hotel-booking/1.0")

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return outcome{err: ctx.Err()}
		}
		return outcome{err: err, wait: jittered(attempt)}
	}
	defer resp.Body.Close()

	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		return outcome{body: b, err: err}
	case code == http.StatusNotFound:
		return outcome{err: ErrNotFound}
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return outcome{err: ErrUnauthorized}
	case code == http.StatusTooManyRequests || code >= 500:
		wait := retryAfter(resp.Header.Get("Retry-After"))
		if wait == 0 {
			wait = jittered(attempt)
		}
		return outcome{err: fmt.Errorf("catalog feed: remote %d", code), wait: wait}
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return outcome{err: fmt.Errorf("catalog feed: bad status %d: %s", code, strings.TrimSpace(string(b)))}
	}
}

func pause(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter accepts delay-seconds or an HTTP-date.
func retryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil {
		if n < 0 {
			return 0
		}
		return time.Duration(n) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		return max(time.Until(at), 0)
	}
	return 0
}

// jittered doubles firstDelay per attempt and adds up to half of it again.
func jittered(attempt int) time.Duration {
	d := firstDelay << attempt
	return d + time.Duration(rand.Int63n(int64(d/2+1)))
}
