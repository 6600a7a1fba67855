package obs

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstrumentCountsRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /teapot", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := Instrument(mux)

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "GET /teapot", "418"))
	for i := 0; i < 3; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/teapot", nil))
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "GET /teapot", "418"))
	if after-before != 3 {
		t.Errorf("expected 3 counted requests, got %v", after-before)
	}
}

func TestHandlerExposesCustomMetrics(t *testing.T) {
	AuditWriteFailures.Inc()
	LoginAttempts.WithLabelValues("user", "success").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{"refoundly_audit_write_failures_total", "refoundly_login_attempts_total"} {
		if !strings.Contains(body, name) {
			t.Errorf("expected %s in metrics output", name)
		}
	}
}
