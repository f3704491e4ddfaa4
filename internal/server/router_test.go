package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loykin/nodecore/internal/identity"
	"github.com/loykin/nodecore/internal/node"
	"github.com/loykin/nodecore/internal/registry"
	"github.com/loykin/nodecore/internal/store/sqlite"
)

const testSchema = `
CREATE TABLE IF NOT EXISTS system (
    id INTEGER PRIMARY KEY,
    node_uuid TEXT UNIQUE,
    node TEXT,
    server_name TEXT,
    main_state TEXT,
    status TEXT
);
CREATE TABLE IF NOT EXISTS logs (
    id INTEGER PRIMARY KEY,
    server_id INTEGER,
    log_level TEXT,
    message TEXT,
    content TEXT
);
`

func newTestRouter(t *testing.T, staticDir string) (*Router, *registry.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	schema := filepath.Join(t.TempDir(), "main.sql")
	require.NoError(t, os.WriteFile(schema, []byte(testSchema), 0o644))
	require.NoError(t, db.ApplySchema(context.Background(), schema))

	ident := identity.Identity{
		Name:    "widget-core",
		Version: "1.0.0",
		UUID:    "abc-123",
		Server:  "us-east",
	}
	reg := registry.New(db, nil)
	nodeID, err := reg.Register(context.Background(), ident)
	require.NoError(t, err)

	rtr := NewRouter(Options{
		Identity:  ident,
		NodeID:    nodeID,
		Role:      node.RoleParent,
		Registry:  reg,
		StaticDir: staticDir,
	})
	return rtr, reg
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthReportsNodeID(t *testing.T) {
	rtr, _ := newTestRouter(t, "")
	w := get(t, rtr.Handler(), "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status  string `json:"status"`
		NodeID  int64  `json:"node_id"`
		UUID    string `json:"uuid"`
		Role    string `json:"role"`
		Name    string `json:"name"`
		Version string `json:"version"`
		Uptime  string `json:"uptime"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, int64(1), body.NodeID)
	assert.Equal(t, "abc-123", body.UUID)
	assert.Equal(t, "parent", body.Role)
	assert.Equal(t, "widget-core", body.Name)
	assert.Equal(t, "1.0.0", body.Version)
	assert.NotEmpty(t, body.Uptime)
}

func TestLandingRendersIdentity(t *testing.T) {
	rtr, _ := newTestRouter(t, "")
	w := get(t, rtr.Handler(), "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "widget-core")
	assert.Contains(t, w.Body.String(), "1.0.0")
}

func TestLogsPageShowsEvents(t *testing.T) {
	rtr, reg := newTestRouter(t, "")
	require.NoError(t, reg.LogEvent(context.Background(), 1, "info", "node started", ""))

	w := get(t, rtr.Handler(), "/logs")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "node started")
}

func TestCodeEndpoint(t *testing.T) {
	rtr, _ := newTestRouter(t, "")
	w := get(t, rtr.Handler(), "/code")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Code server endpoint", w.Body.String())
}

func TestFaviconMissing(t *testing.T) {
	rtr, _ := newTestRouter(t, t.TempDir())
	w := get(t, rtr.Handler(), "/favicon.ico")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFaviconServed(t *testing.T) {
	staticDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(staticDir, "img"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "img", "favicon.ico"), []byte("icon"), 0o644))

	rtr, _ := newTestRouter(t, staticDir)
	w := get(t, rtr.Handler(), "/favicon.ico")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "icon", w.Body.String())
}

func TestMetricsRouteOptIn(t *testing.T) {
	rtr, _ := newTestRouter(t, "")
	w := get(t, rtr.Handler(), "/metrics")
	assert.Equal(t, http.StatusNotFound, w.Code)

	rtr.metricsOn = true
	w = get(t, rtr.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewServerTimeouts(t *testing.T) {
	rtr, _ := newTestRouter(t, "")
	srv := NewServer("127.0.0.1:0", rtr)
	require.NotNil(t, srv.Handler)
	assert.NotZero(t, srv.ReadHeaderTimeout)
	assert.NotZero(t, srv.WriteTimeout)
}
