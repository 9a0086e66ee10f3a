package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientLimiter_PerClientBuckets(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := NewClientLimiter(1).Middleware(ok)

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/reservations", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	// burst is twice the rate
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:5000").Code)
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:5001").Code)
	third := call("10.0.0.1:5002")
	require.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.NotEmpty(t, third.Header().Get("Retry-After"))
	assert.Equal(t, "application/problem+json", third.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusNoContent, call("10.0.0.2:5000").Code, "other clients keep their own bucket")
}

func (c *ClientLimiter) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clients)
}

func TestClientLimiter_EvictsIdleBuckets(t *testing.T) {
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewClientLimiter(5)
	c.now = func() time.Time { return clock }
	c.lastSweep = clock
	h := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	hit := func(ip string) {
		req := httptest.NewRequest(http.MethodPost, "/v1/reservations", nil)
		req.RemoteAddr = ip + ":4000"
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	for i := 0; i < 100; i++ {
		hit("10.1.0." + strconv.Itoa(i))
	}
	require.Equal(t, 100, c.size())

	// one client stays busy while the rest go quiet
	clock = clock.Add(defaultIdleTTL / 2)
	hit("10.1.0.7")
	clock = clock.Add(defaultIdleTTL / 2)
	hit("10.9.9.9")

	assert.Equal(t, 2, c.size(), "only the busy client and the newcomer survive the sweep")
	_, kept := c.clients["ip:10.1.0.7"]
	assert.True(t, kept)
}

func TestClientLimiter_Disabled(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := NewClientLimiter(0).Middleware(ok)
	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRecorder_FirstStatusWins(t *testing.T) {
	rec := &recorder{ResponseWriter: httptest.NewRecorder()}
	_, _ = rec.Write([]byte("abc"))
	rec.WriteHeader(http.StatusTeapot)
	assert.Equal(t, http.StatusOK, rec.status())
	assert.Equal(t, 3, rec.bytes)
}

func TestLogger_WritesHTTPRequestLine(t *testing.T) {
	var buf bytes.Buffer
	h := Logger(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	req := httptest.NewRequest(http.MethodGet, "/v1/rooms/9", nil)
	req.Header.Set("User-Agent", "hotelctl/1.0")
	req.RemoteAddr = "192.0.2.7:5555"
	h.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "http_request", line["message"])
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "hotelctl/1.0", line["ua"])
	assert.Equal(t, "192.0.2.7", line["remote"])
	assert.EqualValues(t, 404, line["status"])
	assert.Equal(t, "unmatched", line["route"])
}
