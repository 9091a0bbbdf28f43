package observability_test

import (
	"errors"
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

	// record samples so the vectors are exported
	observability.ObserveHTTP("/api/hotels", "GET", 200, 12*time.Millisecond)
	observability.ObserveBooking(300)
	observability.ObserveAuth("login", "ok")
	observability.ObservePublish("booking.confirmed", errors.New("down"))

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, want := range []string{
		"hotel_http_requests_total",
		"hotel_bookings_created_total",
		"hotel_booking_revenue_total",
		`hotel_auth_events_total{op="login",outcome="ok"}`,
		`hotel_events_published_total{outcome="error",queue="booking.confirmed"}`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in output", want)
		}
	}
}
