package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_ObserveClaimCountsByOutcome(t *testing.T) {
	m := New()
	m.ObserveClaim("claimed")
	m.ObserveClaim("claimed")
	m.ObserveClaim("slot_taken")

	if got := testutil.ToFloat64(m.claims.WithLabelValues("claimed")); got != 2 {
		t.Fatalf("claimed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.claims.WithLabelValues("slot_taken")); got != 1 {
		t.Fatalf("slot_taken = %v, want 1", got)
	}
}

func TestMetrics_HandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveComputation("weekly_availability", 5*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/v1/professionals/:id/availability", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"slotkeeper_availability_duration_seconds", "http_request_duration_seconds"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q", want)
		}
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveClaim("claimed")
	m.ObserveLookahead(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
