package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveDirectory(t *testing.T) {
	before := testutil.ToFloat64(directoryRequests.WithLabelValues(DirectoryFresh))
	ObserveDirectory(DirectoryFresh)
	after := testutil.ToFloat64(directoryRequests.WithLabelValues(DirectoryFresh))
	if after != before+1 {
		t.Fatalf("expected counter to increase by 1, got %v -> %v", before, after)
	}
}

func TestObserveMediaAttempt(t *testing.T) {
	ObserveMediaAttempt("drive.google.com", 403)
	if v := testutil.ToFloat64(mediaAttempts.WithLabelValues("drive.google.com", "403")); v < 1 {
		t.Fatalf("expected attempt to be counted, got %v", v)
	}
}

func TestHandler(t *testing.T) {
	ObserveMedia(MediaHit)
	ObserveUpstreamFetch(0.2, true)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{"media_requests_total", "directory_upstream_fetch_duration_seconds"} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
}
