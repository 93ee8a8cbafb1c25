package httpapi

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(fasthttp.MethodGet, "/healthz", "", nil)
	assert.Equal(t, fasthttp.StatusOK, resp.StatusCode())
	assert.Equal(t, "ok", string(resp.Body()))
}

func TestAPIRoot(t *testing.T) {
	ts := newTestServer(t)
	body := decode(t, ts.do(fasthttp.MethodGet, "/", "", nil))
	assert.Equal(t, "http://testserver/api/instagram/stories/", body["stories"])
	assert.Equal(t, "http://testserver/admin/", body["admin"])
}

func TestSchema(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(fasthttp.MethodGet, "/api/schema/", "", nil)
	require.Equal(t, fasthttp.StatusOK, resp.StatusCode())
	var doc map[string]any
	require.NoError(t, json.Unmarshal(resp.Body(), &doc))
	assert.Equal(t, "3.0.3", doc["openapi"])
	assert.Contains(t, doc["paths"], "/api/instagram/stories/{story_id}/similar/")

	resp = ts.do(fasthttp.MethodGet, "/api/schema/?format=yaml", "", nil)
	require.Equal(t, fasthttp.StatusOK, resp.StatusCode())
	assert.Contains(t, string(resp.Header.ContentType()), "yaml")
	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal(resp.Body(), &fromYAML))
	assert.Equal(t, "3.0.3", fromYAML["openapi"])
}

func TestDocs(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(fasthttp.MethodGet, "/api/docs/", "", nil)
	assert.Equal(t, fasthttp.StatusOK, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), `url: "/api/schema/"`)
}

func TestMediaFiles(t *testing.T) {
	ts := newTestServer(t)
	dir := filepath.Join(ts.media.root, "stories", "natgeo")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.jpg"), []byte("jpeg bytes"), 0o644))

	resp := ts.do(fasthttp.MethodGet, "/media/stories/natgeo/1.jpg", "", nil)
	assert.Equal(t, fasthttp.StatusOK, resp.StatusCode())
	assert.Equal(t, "jpeg bytes", string(resp.Body()))
}

func TestNotFound(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(fasthttp.MethodGet, "/nowhere/", "", nil)
	assert.Equal(t, fasthttp.StatusNotFound, resp.StatusCode())
	assert.JSONEq(t, `{"detail":"Not found."}`, string(resp.Body()))
}
