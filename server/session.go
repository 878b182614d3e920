package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Transport 一条已分帧的双向连接（TCP 或 WebSocket）
type Transport interface {
	ReadFrame() ([]byte, error)
	WriteFrame([]byte) error
	Close() error
	RemoteAddr() string
}

type sessionState int

const (
	stateConnecting sessionState = iota
	stateJoined
	stateStreaming
	stateClosed
)

func (st sessionState) String() string {
	switch st {
	case stateConnecting:
		return "connecting"
	case stateJoined:
		return "joined"
	case stateStreaming:
		return "streaming"
	case stateClosed:
		return "closed"
	default:
		return fmt.Sprintf("n/a:%d", int(st))
	}
}

// session 每个连接一个协程：握手 → 循环（收意图 → 加锁应用 → 锁外编码发送快照）
type session struct {
	id       string
	srv      *Server
	t        Transport
	playerID PlayerID
	state    sessionState
	log      *zap.SugaredLogger

	closeOnce sync.Once
}

func newSession(srv *Server, t Transport) *session {
	id := uuid.NewString()
	return &session{
		id:    id,
		srv:   srv,
		t:     t,
		state: stateConnecting,
		log:   Log.With("session", id, "remote", t.RemoteAddr()),
	}
}

func (s *session) run() {
	defer s.close()

	hs, err := s.srv.world.Join()
	if err != nil {
		if errors.Is(err, ErrServerFull) {
			s.srv.metrics.IncCapacityRejected()
			s.log.Infof("rejecting connection: %v", err)
		}
		return
	}
	s.playerID = PlayerID(hs.ID)
	s.state = stateJoined
	s.log = s.log.With("player", hs.ID)
	s.srv.metrics.IncJoins()

	if err := s.send(hs); err != nil {
		s.fault("send handshake", err)
		return
	}

	s.state = stateStreaming
	for {
		payload, err := s.t.ReadFrame()
		if err != nil {
			s.fault("read", err)
			return
		}
		in, err := decodeInput(s.srv.codec, s.playerID, payload)
		if err != nil {
			s.srv.metrics.IncDecodeErrors()
			s.log.Debugf("closing on invalid intent: %v", err)
			return
		}
		snap, err := s.srv.world.ApplyIntent(in.PlayerID, in.Intent)
		if err != nil {
			s.log.Warnf("apply intent: %v", err)
			return
		}
		s.srv.metrics.IncIntents()
		if err := s.send(snap); err != nil {
			s.fault("send snapshot", err)
			return
		}
	}
}

// send 在世界锁之外编码并写出
func (s *session) send(v any) error {
	b, err := s.srv.codec.Marshal(v)
	if err != nil {
		return err
	}
	return s.t.WriteFrame(b)
}

func (s *session) fault(op string, err error) {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		s.log.Debugf("%s: connection closed", op)
		return
	}
	s.srv.metrics.IncTransportErrors()
	s.log.Debugf("%s: %v", op, err)
}

// close 移除玩家、归还颜色并关闭连接；可重复调用
func (s *session) close() {
	s.closeOnce.Do(func() {
		if s.state != stateConnecting && s.srv.world.Leave(s.playerID) {
			s.srv.metrics.IncLeaves()
		}
		s.state = stateClosed
		_ = s.t.Close()
		s.srv.forget(s)
	})
}
