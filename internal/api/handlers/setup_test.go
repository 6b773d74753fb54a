package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hugh/go-crm/internal/api"
	"github.com/hugh/go-crm/internal/blob"
	"github.com/hugh/go-crm/internal/metrics"
	"github.com/hugh/go-crm/internal/testutil"
	"github.com/stretchr/testify/require"
)

// testServer is a full router over an in-memory database with a local blob
// store.
type testServer struct {
	*testutil.TestSetup
	router  *api.Router
	metrics *metrics.Metrics
	outbox  *testutil.Outbox
}

const testMaxUpload = 1 << 10

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tc := testutil.NewTestContext(t)
	store, err := blob.NewLocal(t.TempDir())
	require.NoError(t, err)

	m := metrics.New()
	outbox := &testutil.Outbox{}
	router := api.NewRouter(api.RouterConfig{
		DB:             tc.DB,
		Logger:         testutil.Logger(),
		JWTService:     tc.JWTService,
		Verification:   outbox,
		Blob:           store,
		Metrics:        m,
		MaxUploadBytes: testMaxUpload,
	})
	t.Cleanup(router.Close)

	return &testServer{TestSetup: tc, router: router, metrics: m, outbox: outbox}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

// call sends a JSON request as the holder of token.
func (s *testServer) call(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(testutil.AuthenticatedRequest(t, method, path, body, token))
}

func (s *testServer) teamPath(suffix string) string {
	return "/api/v1/teams/" + s.Team.ID.String() + suffix
}
