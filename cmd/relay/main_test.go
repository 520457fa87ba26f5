package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/milk9111/brushtoy/replication"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRelayStatusEndpoints(t *testing.T) {
	hub := replication.NewHub(zap.NewNop())
	defer hub.Close()
	srv := httptest.NewServer(newMux(hub))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	for _, msg := range []replication.Message{
		{Type: replication.TypeHello, Site: "a"},
		{Type: replication.TypeSpawn, Site: "a", Seq: 1, BrushID: "b1", Spawn: &replication.SpawnState{Shape: "BOX"}},
	} {
		data, err := replication.Encode(msg)
		require.NoError(t, err)
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
	}
	require.Eventually(t, func() bool { return hub.BrushCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	var st status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, status{Peers: 1, Brushes: 1}, st)

	resp2, err := http.Get(srv.URL + "/snapshot")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var snap []replication.Message
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&snap))
	require.Len(t, snap, 1)
	assert.Equal(t, "b1", snap[0].BrushID)
	assert.Equal(t, "BOX", snap[0].Spawn.Shape)
}
