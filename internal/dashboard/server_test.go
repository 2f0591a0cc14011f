// internal/dashboard/server_test.go
package dashboard

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/vision-dashboard/internal/logger"
	"github.com/tamzrod/vision-dashboard/internal/poller"
	"github.com/tamzrod/vision-dashboard/internal/render"
	"github.com/tamzrod/vision-dashboard/internal/status"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRoutes_Healthz(t *testing.T) {
	h := SetupRoutes(Options{}, render.NewSurface(), nil, nil, nil)

	rec := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRoutes_PageCarriesConfigAndFrame(t *testing.T) {
	surface := render.NewSurface()
	h := SetupRoutes(Options{
		Title:     "HumoSync Safety AI",
		StreamURL: "http://192.168.4.1:81/stream",
	}, surface, nil, nil, nil)

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "<title>HumoSync Safety AI</title>")
	assert.Contains(t, body, `src="http://192.168.4.1:81/stream"`)
	assert.Contains(t, body, `id="mainLabel">DETECTING...</h2>`)
	assert.Contains(t, body, `id="mainConfidence">0% Confidence</div>`)
	assert.Contains(t, body, `id="val-human">0%</span>`)

	surface.Render(status.Decide(status.Sample{Human: 90, Animal: 5, Other: 5, TimeMs: 120}))
	body = get(t, h, "/").Body.String()
	assert.Contains(t, body, `class="main-label detected-human" id="mainLabel">HUMAN DETECTED</h2>`)
	assert.Contains(t, body, `id="time">120</span>`)
}

func TestRoutes_PageWithoutStream(t *testing.T) {
	h := SetupRoutes(Options{Title: "T"}, render.NewSurface(), nil, nil, nil)

	body := get(t, h, "/").Body.String()
	assert.NotContains(t, body, `id="stream"`)
}

func TestRoutes_UnknownPath(t *testing.T) {
	h := SetupRoutes(Options{}, render.NewSurface(), nil, nil, nil)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/status").Code)
}

func TestRoutes_State(t *testing.T) {
	surface := render.NewSurface()
	surface.Render(status.Decide(status.Sample{Human: 10, Animal: 10, Other: 5}))

	h := SetupRoutes(Options{}, surface, nil, nil, nil)
	rec := get(t, h, "/api/state")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var snap render.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, uint64(1), snap.Version)
	assert.Equal(t, render.TextOther, snap.Frame.Label)
	assert.Equal(t, "5% Confidence", snap.Frame.Confidence)
	assert.WithinDuration(t, time.Now(), snap.Rendered, time.Minute)
}

func TestRoutes_PollerStats(t *testing.T) {
	stats := func() poller.Stats {
		return poller.Stats{Ticks: 12, Skipped: 2, Fetches: 10, Successes: 9, TransportFailures: 1}
	}
	h := SetupRoutes(Options{}, render.NewSurface(), nil, stats, nil)

	rec := get(t, h, "/api/poller")
	require.Equal(t, http.StatusOK, rec.Code)

	var got poller.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, stats().Ticks, got.Ticks)
	assert.Equal(t, stats().Skipped, got.Skipped)
	assert.Equal(t, stats().TransportFailures, got.TransportFailures)
}

func TestRoutes_PollerStatsUnavailable(t *testing.T) {
	h := SetupRoutes(Options{}, render.NewSurface(), nil, nil, nil)

	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/api/poller").Code)
}

func TestRoutes_Logs(t *testing.T) {
	dir := t.TempDir()
	log, err := logger.New(logger.Config{Dir: dir, MaxSizeMB: 1})
	require.NoError(t, err)
	log.Warning("status poll #%d failed: %v", 4, "connection refused")
	require.NoError(t, log.Close())

	h := SetupRoutes(Options{LogDir: dir}, render.NewSurface(), nil, nil, nil)

	rec := get(t, h, "/logs/warning")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "status poll #4 failed: connection refused")

	assert.Equal(t, http.StatusNotFound, get(t, h, "/logs/debug").Code)
}

func TestRoutes_LogsMissingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, logger.InfoFile), []byte("hello\n"), 0o644))

	h := SetupRoutes(Options{LogDir: dir}, render.NewSurface(), nil, nil, nil)

	assert.Equal(t, http.StatusOK, get(t, h, "/logs/info").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/logs/error").Code)
}

func TestRoutes_LogsDisabled(t *testing.T) {
	h := SetupRoutes(Options{}, render.NewSurface(), nil, nil, nil)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/logs/info").Code)
}
