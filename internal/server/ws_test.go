package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoid/engine/internal/params"
)

func TestHandleIdentifyWS_SilenceKeepsListeningUntilClientCloses(t *testing.T) {
	s := newTestServer(t)
	httpSrv := httptest.NewServer(s.Handler())
	defer httpSrv.Close()

	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/api/v1/ws/identify"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "test done")

	frame := encodeF32LE(make([]float32, int(0.5*params.Fs)))
	require.NoError(t, conn.Write(ctx, websocket.MessageBinary, frame))

	// A half-second silent frame never reaches a decision, so the
	// connection should still be open for a second write.
	require.NoError(t, conn.Write(ctx, websocket.MessageBinary, frame))
}

func TestHandleIdentifyWS_RejectsTextFrames(t *testing.T) {
	s := newTestServer(t)
	httpSrv := httptest.NewServer(s.Handler())
	defer httpSrv.Close()

	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/api/v1/ws/identify"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "test done")

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("not audio")))

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg wsErrorMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.NotEmpty(t, msg.Error)
}
