package prometheus

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sealwatch/slasher/runtime"
	"github.com/sealwatch/slasher/testing/assert"
	"github.com/sealwatch/slasher/testing/require"
	logTest "github.com/sirupsen/logrus/hooks/test"
)

func TestLifecycle(t *testing.T) {
	hook := logTest.NewGlobal()
	prometheusService := NewService(":2112", nil)
	prometheusService.Start()
	// Give service time to start.
	time.Sleep(time.Millisecond * 250)

	require.LogsContain(t, hook, "Starting service")
	require.NoError(t, prometheusService.Status())

	require.NoError(t, prometheusService.Stop())
	require.LogsContain(t, hook, "Stopping service")
}

type mockService struct {
	status error
}

func (_ *mockService) Start() {
}

func (_ *mockService) Stop() error {
	return nil
}

func (m *mockService) Status() error {
	return m.status
}

type failingService struct {
	mockService
}

func TestHealthz(t *testing.T) {
	registry := runtime.NewServiceRegistry()
	m := &mockService{}
	require.NoError(t, registry.RegisterService(m))
	s := NewService("", registry)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.StringContains(t, "*prometheus.mockService: OK", rr.Body.String())

	f := &failingService{mockService{status: errors.New("something is wrong")}}
	require.NoError(t, registry.RegisterService(f))

	rr = httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.StringContains(t, "*prometheus.failingService: ERROR something is wrong", rr.Body.String())
}

func TestHealthz_JSON(t *testing.T) {
	registry := runtime.NewServiceRegistry()
	require.NoError(t, registry.RegisterService(&mockService{}))
	s := NewService("", registry)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Accept", contentTypeJSON)
	rr := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, contentTypeJSON, rr.Header().Get("Content-Type"))
	assert.StringContains(t, `"service":"*prometheus.mockService","status":true`, rr.Body.String())
}

func TestAdditionalHandlers(t *testing.T) {
	s := NewService("", runtime.NewServiceRegistry(), Handler{
		Path: "/db/backup",
		Handler: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		},
	})
	rr := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/db/backup", nil))
	assert.Equal(t, http.StatusAccepted, rr.Code)
}
