package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrUnexpectedMessage WebSocket 上收到非二进制消息
var ErrUnexpectedMessage = errors.New("unexpected websocket message type")

// wsTransport 每条二进制 WebSocket 消息即一帧（WebSocket 自带消息边界）
type wsTransport struct {
	ws           *websocket.Conn
	writeTimeout time.Duration

	wmu sync.Mutex
}

func newWSTransport(ws *websocket.Conn, wire WireConfig) *wsTransport {
	ws.SetReadLimit(int64(wire.MaxFrameBytes))
	return &wsTransport{ws: ws, writeTimeout: wire.WriteTimeout}
}

func (t *wsTransport) ReadFrame() ([]byte, error) {
	mt, payload, err := t.ws.ReadMessage()
	if err != nil {
		return nil, err
	}
	if mt != websocket.BinaryMessage {
		return nil, ErrUnexpectedMessage
	}
	return payload, nil
}

func (t *wsTransport) WriteFrame(b []byte) error {
	t.wmu.Lock()
	defer t.wmu.Unlock()
	if t.writeTimeout > 0 {
		_ = t.ws.SetWriteDeadline(time.Now().Add(t.writeTimeout))
	}
	return t.ws.WriteMessage(websocket.BinaryMessage, b)
}

func (t *wsTransport) Close() error { return t.ws.Close() }

func (t *wsTransport) RemoteAddr() string { return t.ws.RemoteAddr().String() }

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源（生产环境需严格限制）
		return true
	},
}

// HandleWS WebSocket 接入，会话逻辑与 TCP 完全相同
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnf("upgrade error: %v", err)
		return
	}
	Log.Debugf("websocket client connected: %s", ws.RemoteAddr())
	s.startSession(newWSTransport(ws, s.cfg.Wire))
}
