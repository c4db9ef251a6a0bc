package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/kidandcat/heartquest/internal/narration"
)

func TestCollectorsAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.MemoriesCollected.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.MemoriesCollected))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.MemoriesCollected))
}

func TestCounters(t *testing.T) {
	c := New()
	c.Resolved(true)
	c.Resolved(false)
	c.Resolved(false)
	c.Narrated(narration.OutcomeOK)
	c.Narrated(narration.OutcomeBreakerOpen)
	c.ObserveRequest(http.MethodGet, "GET /api/proposals/resolve", 200, 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.TokensResolved.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.TokensResolved.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Narrations.WithLabelValues("breaker_open")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "GET /api/proposals/resolve", "200")))
}

func TestHandler(t *testing.T) {
	c := New()
	c.UploadBytes.Add(2048)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "heartquest_upload_bytes_total 2048")
}
