package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	m.Authorize("user", "issued")
	m.Authorize("user", "issued")
	m.Authorize("api_key", "rejected")
	m.TokenIssued()
	m.TokenValidated(false)
	m.Hash("verify")()

	if got := testutil.ToFloat64(m.AuthorizeTotal.WithLabelValues("user", "issued")); got != 2 {
		t.Fatalf("authorize issued = %v", got)
	}
	if got := testutil.ToFloat64(m.TokensIssued); got != 1 {
		t.Fatalf("tokens issued = %v", got)
	}
	if got := testutil.ToFloat64(m.TokenValidations.WithLabelValues("rejected")); got != 1 {
		t.Fatalf("validations rejected = %v", got)
	}
	if n := testutil.CollectAndCount(m.HashDuration); n != 1 {
		t.Fatalf("hash series = %d", n)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Authorize("user", "issued")
	m.TokenIssued()
	m.TokenValidated(true)
	m.Hash("hash")()
	m.Limited("/api/authorize")
}

func TestHandler(t *testing.T) {
	m, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	m.TokenIssued()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "lockpad_tokens_issued_total 1") {
		t.Fatalf("metrics output missing counter:\n%s", rec.Body.String())
	}
}

func TestSecondInstanceSharesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, _ := New(reg)
	b, err := New(reg)
	if err != nil {
		t.Fatal(err)
	}
	b.TokenIssued()
	if got := testutil.ToFloat64(a.TokensIssued); got != 1 {
		t.Fatalf("collectors not shared: %v", got)
	}
}

func TestHTTPRequests(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	m.Inflight(1)
	m.Request("POST", "/api/authorize", 401, 3*time.Millisecond)
	m.Request("POST", "/api/authorize", 401, 5*time.Millisecond)
	m.Inflight(-1)

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/api/authorize", "401")); got != 2 {
		t.Fatalf("http_requests_total = %v", got)
	}
	if got := testutil.ToFloat64(m.HTTPInflight); got != 0 {
		t.Fatalf("inflight = %v", got)
	}

	var none *Metrics
	none.Request("GET", "/", 200, time.Millisecond)
	none.Inflight(1)
}
