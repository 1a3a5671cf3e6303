package backup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/sealwatch/slasher/testing/assert"
)

type mockExporter struct {
	dirs []string
	err  error
}

func (m *mockExporter) Backup(_ context.Context, outputDir string) error {
	m.dirs = append(m.dirs, outputDir)
	return m.err
}

func TestHandler(t *testing.T) {
	first, second := &mockExporter{}, &mockExporter{}
	h := Handler("/backups", first, second)

	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodPost, "/db/backup", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
	assert.DeepEqual(t, []string{"/backups"}, first.dirs)
	assert.DeepEqual(t, []string{"/backups"}, second.dirs)

	rr = httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodGet, "/db/backup", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHandler_Failure(t *testing.T) {
	failing, never := &mockExporter{err: errors.New("disk full")}, &mockExporter{}
	rr := httptest.NewRecorder()
	Handler("", failing, never)(rr, httptest.NewRequest(http.MethodPost, "/db/backup", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, 0, len(never.dirs))
}
