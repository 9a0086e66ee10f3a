package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hotel_booking/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record samples so counters are non-zero
	observability.ObserveHTTP("/v1/reservations", "POST", 201, 12*time.Millisecond)
	observability.ObserveReservation("overlap")

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, want := range []string{"hotel_http_requests_total", `hotel_reservation_outcomes_total{outcome="overlap"}`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in output", want)
		}
	}
}

func TestNewLogger_LevelFallback(t *testing.T) {
	l := observability.NewLogger("prod", "nonsense")
	if got := l.GetLevel().String(); got != "info" {
		t.Fatalf("level = %s, want info", got)
	}
	l = observability.NewLogger("dev", "debug")
	if got := l.GetLevel().String(); got != "debug" {
		t.Fatalf("level = %s, want debug", got)
	}
}
