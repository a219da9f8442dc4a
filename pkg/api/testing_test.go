package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/rowdb/pkg/logging"
	"github.com/ssargent/rowdb/pkg/store"
)

type testServer struct {
	store    *store.RecordStore
	metrics  *Metrics
	registry *prometheus.Registry
	router   http.Handler
}

// setupTestServer creates a router backed by a record store in a temp dir.
// Each server gets its own registry so metrics never collide across tests.
func setupTestServer(t *testing.T, config ServerConfig) *testServer {
	t.Helper()

	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	recordStore := store.NewRecordStore(store.RecordStoreConfig{
		DataDir:  t.TempDir(),
		Logger:   logging.Discard(),
		Observer: metrics,
	})
	_, err := recordStore.Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = recordStore.Close() })

	server := NewServer(recordStore, config, metrics, logging.Discard())
	return &testServer{
		store:    recordStore,
		metrics:  metrics,
		registry: registry,
		router:   NewRouter(server, registry),
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var response APIResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return response
}
