package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/api/v1/contacts/{id}", 200, 15*time.Millisecond)
	m.ObserveRequest("GET", "/api/v1/contacts/{id}", 200, 5*time.Millisecond)
	m.ObserveRequest("GET", "/api/v1/contacts/{id}", 403, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/contacts/{id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/contacts/{id}", "403")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPRequestDuration))
}

func TestCounters(t *testing.T) {
	m := New()
	m.IncAccessDenied("not_member")
	m.IncAccessDenied("not_member")
	m.IncAccessDenied("not_admin")
	m.IncRateLimitRejection("redis")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AccessDeniedTotal.WithLabelValues("not_member")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccessDeniedTotal.WithLabelValues("not_admin")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitRejectionsTotal.WithLabelValues("redis")))
}

func TestDBPoolCollector(t *testing.T) {
	c := NewDBPoolCollector(func() (int, int, int) { return 4, 3, 1 })
	assert.Equal(t, 3, testutil.CollectAndCount(c))

	expected := `
# HELP crm_db_pool_in_use_conns Number of connections currently in use.
# TYPE crm_db_pool_in_use_conns gauge
crm_db_pool_in_use_conns 1
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "crm_db_pool_in_use_conns"))
}

func TestHandler(t *testing.T) {
	m := New()
	m.RegisterDBPoolCollector(func() (int, int, int) { return 1, 1, 0 })
	m.IncAccessDenied("unauthenticated")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `crm_access_denied_total{reason="unauthenticated"} 1`)
	assert.Contains(t, body, "crm_db_pool_open_conns 1")
	assert.Contains(t, body, "go_goroutines")
}
