package server_test

import (
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/minirag/pkg/corpus"
	"github.com/xhad/minirag/pkg/rag"
	"github.com/xhad/minirag/server"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	docsDir := filepath.Join(t.TempDir(), "docs")
	_, err := corpus.GenerateSamples(docsDir)
	require.NoError(t, err)

	engine := rag.NewWithConfig(rag.EngineConfig{DocsDir: docsDir})
	_, _, err = engine.Ingest()
	require.NoError(t, err)
	require.NoError(t, engine.BuildIndex())

	ws, err := server.NewWSServer(server.Config{TopK: 3}, engine, nil)
	require.NoError(t, err)

	ts := httptest.NewServer(ws.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestNewWSServerRequiresEngine(t *testing.T) {
	_, err := server.NewWSServer(server.Config{}, nil, nil)
	assert.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
}

func TestAskOverWebSocket(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts)

	err := conn.WriteJSON(server.Message{
		Type:    "question",
		Content: "What is the warranty for UltraBlend 3000?",
	})
	require.NoError(t, err)

	var answer server.Message
	require.NoError(t, conn.ReadJSON(&answer))
	assert.Equal(t, "answer", answer.Type)
	assert.Contains(t, answer.Content, "warranty")

	var sources server.Message
	require.NoError(t, conn.ReadJSON(&sources))
	assert.Equal(t, "sources", sources.Type)
	assert.Contains(t, sources.Content, "ultrablend_manual.txt")
}

func TestEmptyQuestion(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts)

	err := conn.WriteJSON(server.Message{Type: "question", Content: "  "})
	require.NoError(t, err)

	var msg server.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg.Type)
}
