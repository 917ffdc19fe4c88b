package server

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/echoid/engine/internal/metrics"
	"github.com/echoid/engine/internal/recognizer"
)

// Streaming identify sessions use the same read-pump/write-pump split
// as the teacher's websocket.Client, but there is no hub: each
// connection owns exactly one Recognizer and no message is ever
// broadcast to other connections.
const (
	wsReadWait  = 30 * time.Second
	wsWriteWait = 10 * time.Second
)

type wsResultMessage struct {
	Decision string          `json:"decision"`
	Matches  []matchResponse `json:"matches"`
}

type wsErrorMessage struct {
	Error string `json:"error"`
}

// handleIdentifyWS upgrades the connection and feeds every binary
// frame (raw little-endian float32 mono PCM, at most two seconds per
// frame per spec.md §4.7) to a Recognizer, pushing a JSON result after
// every frame once a decision is reached. The connection stays open
// across a LISTENING (no-decision) result so the client can keep
// streaming; it closes once a decision is final or the client
// disconnects.
func (s *Server) handleIdentifyWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	rec, err := recognizer.New(s.store, s.cb, s.cfg.RecognizerCfg, s.log)
	if err != nil {
		conn.Close(websocket.StatusInternalError, "recognizer init failed")
		return
	}

	ctx := r.Context()
	for {
		readCtx, cancel := context.WithTimeout(ctx, wsReadWait)
		msgType, data, err := conn.Read(readCtx)
		cancel()
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus != websocket.StatusNormalClosure && closeStatus != websocket.StatusGoingAway {
				s.log.Debug("websocket read ended", zap.Error(err))
			}
			return
		}
		if msgType != websocket.MessageBinary {
			s.writeWSError(ctx, conn, "expected binary PCM frames")
			continue
		}

		samples := decodeF32LEFrame(data)
		matches, err := rec.Identify(samples)
		if err != nil {
			s.writeWSError(ctx, conn, err.Error())
			continue
		}
		if matches == nil {
			continue // still LISTENING, no decision yet
		}

		decision := "unidentified"
		if len(matches) > 0 {
			decision = strings.ToLower(matches[0].Class.String())
		}
		metrics.Manager().IdentifyOutcomes.WithLabelValues(decision).Inc()

		if err := s.writeWSResult(ctx, conn, decision, matches); err != nil {
			return
		}
		conn.Close(websocket.StatusNormalClosure, "decision reached")
		return
	}
}

func (s *Server) writeWSResult(ctx context.Context, conn *websocket.Conn, decision string, matches []recognizer.Match) error {
	resp := make([]matchResponse, len(matches))
	for i, m := range matches {
		resp[i] = matchResponse{
			FID:        m.FID,
			Class:      m.Class.String(),
			Score:      m.Score,
			Confidence: m.Confidence,
			CuePoint:   m.CuePoint,
		}
	}
	payload, err := json.Marshal(wsResultMessage{Decision: decision, Matches: resp})
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteWait)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, payload)
}

func (s *Server) writeWSError(ctx context.Context, conn *websocket.Conn, msg string) {
	payload, err := json.Marshal(wsErrorMessage{Error: msg})
	if err != nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteWait)
	defer cancel()
	_ = conn.Write(writeCtx, websocket.MessageText, payload)
}

func decodeF32LEFrame(data []byte) []float32 {
	n := len(data) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(data[i*4 : i*4+4])
		out[i] = math.Float32frombits(bits)
	}
	return out
}
