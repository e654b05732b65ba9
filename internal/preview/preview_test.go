// SPDX-License-Identifier: AGPL-3.0-or-later
package preview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "api"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "badges"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api", "metrics.json"), []byte(`{"commit":"abc"}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "badges", "coverage.svg"), []byte("<svg/>"), 0o600))

	h := NewRouter(dir, nil)

	cases := []struct {
		path   string
		status int
		body   string
	}{
		{"/health", http.StatusOK, `"status":"ok"`},
		{"/api/metrics", http.StatusOK, `{"commit":"abc"}`},
		{"/badges/coverage.svg", http.StatusOK, "<svg/>"},
		{"/missing.html", http.StatusNotFound, ""},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, tc.status, rec.Code, tc.path)
		assert.Contains(t, rec.Body.String(), tc.body, tc.path)
	}
}

func TestRouter_NoSnapshot(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(t.TempDir(), nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, Serve(ctx, "127.0.0.1:0", t.TempDir(), nil))
}
