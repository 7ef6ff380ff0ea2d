package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/dataconverter/internal/config"
	"github.com/zeusync/dataconverter/internal/core/converter"
	"github.com/zeusync/dataconverter/internal/core/migrator"
	"github.com/zeusync/dataconverter/internal/core/schema/registry"
	"github.com/zeusync/dataconverter/internal/core/types"
	"github.com/zeusync/dataconverter/internal/server"
)

func newServer(t *testing.T, cfg config.ServerConfig) *server.Server {
	t.Helper()

	reg := registry.New(nil)
	reg.RegisterIDType("item", "id").AddConverter(converter.V(10), func(data types.MapType, _, _ converter.Version) (types.MapType, error) {
		switch data.GetString("id", "") {
		case "broken":
			return nil, types.ErrTypeMismatch
		case "keep":
			return nil, nil
		}
		data.SetInt("count", data.GetInt("Count", 1))
		data.Remove("Count")
		return nil, nil
	})
	reg.Freeze()

	m, err := migrator.New(reg, nil)
	require.NoError(t, err)
	return server.New(m, cfg, converter.V(20), nil)
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+"/migrate", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg string) server.Response {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
	var resp server.Response
	require.NoError(t, conn.ReadJSON(&resp))
	return resp
}

func TestMigrateOverWebsocket(t *testing.T) {
	srv := httptest.NewServer(newServer(t, config.Default().Server).Handler())
	defer srv.Close()
	conn := dial(t, srv.URL)

	resp := roundTrip(t, conn, `{
		"id": "r1",
		"type": "item",
		"from": "1",
		"records": [
			{"id": "stone", "Count": 2},
			{"id": "keep"},
			{"id": "broken", "Count": 9}
		]
	}`)

	require.Empty(t, resp.Error)
	assert.Equal(t, "r1", resp.ID)
	assert.NotEmpty(t, resp.Job)
	assert.Equal(t, "1", resp.From)
	assert.Equal(t, "20", resp.To)
	assert.Equal(t, 1, resp.Changed)
	assert.Equal(t, 1, resp.Failed)

	require.Len(t, resp.Records, 3)
	assert.JSONEq(t, `{"id":"stone","count":2}`, string(resp.Records[0]))
	assert.JSONEq(t, `{"id":"keep"}`, string(resp.Records[1]))
	assert.JSONEq(t, `{"id":"broken","Count":9}`, string(resp.Records[2]))

	require.Len(t, resp.Fingerprints, 3)
	for _, fp := range resp.Fingerprints {
		assert.Len(t, fp, 16)
	}
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, 2, resp.Errors[0].Index)
	assert.Contains(t, resp.Errors[0].Error, types.ErrTypeMismatch.Error())

	// the connection keeps serving after a reply
	resp = roundTrip(t, conn, `{"type":"item","from":"1","to":"5","records":[{"id":"stone","Count":2}]}`)
	require.Empty(t, resp.Error)
	assert.Equal(t, 0, resp.Changed)
	assert.JSONEq(t, `{"id":"stone","Count":2}`, string(resp.Records[0]))
}

func TestMigrateRejectsBadRequests(t *testing.T) {
	srv := httptest.NewServer(newServer(t, config.Default().Server).Handler())
	defer srv.Close()
	conn := dial(t, srv.URL)

	tests := []struct {
		name, msg, want string
	}{
		{"not json", `{"type":`, server.ErrInvalidMessage.Error()},
		{"no type", `{"from":"1","records":[]}`, "type is required"},
		{"bad version", `{"type":"item","from":"soon"}`, converter.ErrInvalidVersion.Error()},
		{"backwards", `{"type":"item","from":"30","to":"1"}`, migrator.ErrBackwards.Error()},
		{"record not object", `{"id":"x","type":"item","from":"1","records":[[1]]}`, "record 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := roundTrip(t, conn, tt.msg)
			assert.Contains(t, resp.Error, tt.want)
			assert.Empty(t, resp.Records)
		})
	}

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{1, 2}))
	var resp server.Response
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Contains(t, resp.Error, "text messages only")
}

func TestMessageSizeLimit(t *testing.T) {
	cfg := config.Default().Server
	cfg.MaxMessageBytes = 64
	srv := httptest.NewServer(newServer(t, cfg).Handler())
	defer srv.Close()
	conn := dial(t, srv.URL)

	big := `{"type":"item","from":"1","records":[{"id":"` + strings.Repeat("a", 128) + `"}]}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(big)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(newServer(t, config.Default().Server).Handler())
	defer srv.Close()

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestStartStop(t *testing.T) {
	cfg := config.Default().Server
	cfg.Addr = "127.0.0.1:0"
	s := newServer(t, cfg)

	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), server.ErrServerAlreadyRunning)
	require.NotNil(t, s.Addr())

	conn := dial(t, "http://"+s.Addr().String())
	resp := roundTrip(t, conn, `{"type":"item","from":"1","records":[{"id":"dirt"}]}`)
	assert.Equal(t, 1, resp.Changed)

	require.NoError(t, s.Stop(context.Background()))
	assert.ErrorIs(t, s.Stop(context.Background()), server.ErrServerNotRunning)

	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
