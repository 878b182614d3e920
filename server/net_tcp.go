package server

import (
	"bufio"
	"errors"
	"net"
	"sync"
	"time"

	"blockarena/protocol"
)

// tcpTransport 基于长度前缀分帧的 TCP 连接
type tcpTransport struct {
	conn         net.Conn
	r            *bufio.Reader
	maxFrame     int
	writeTimeout time.Duration

	wmu sync.Mutex
}

func newTCPTransport(conn net.Conn, wire WireConfig) *tcpTransport {
	return &tcpTransport{
		conn:         conn,
		r:            bufio.NewReader(conn),
		maxFrame:     wire.MaxFrameBytes,
		writeTimeout: wire.WriteTimeout,
	}
}

func (t *tcpTransport) ReadFrame() ([]byte, error) {
	return protocol.ReadFrame(t.r, t.maxFrame)
}

func (t *tcpTransport) WriteFrame(b []byte) error {
	t.wmu.Lock()
	defer t.wmu.Unlock()
	if t.writeTimeout > 0 {
		_ = t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout))
	}
	return protocol.WriteFrame(t.conn, b)
}

func (t *tcpTransport) Close() error { return t.conn.Close() }

func (t *tcpTransport) RemoteAddr() string { return t.conn.RemoteAddr().String() }

// Listen 在 addr 上监听 TCP 并在后台开始接受连接
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	go func() {
		if err := s.Serve(ln); err != nil && !errors.Is(err, ErrServerClosed) {
			Log.Errorf("tcp accept loop stopped: %v", err)
		}
	}()
	return nil
}

// Serve 接受连接循环：每个连接一个会话协程。
// 临时错误（如 EMFILE）退避后重试，只有服务关闭或监听器被关闭时才返回
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = ln.Close()
		return ErrServerClosed
	}
	s.listeners = append(s.listeners, ln)
	s.mu.Unlock()

	Log.Infof("tcp listening on %s", ln.Addr())
	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return ErrServerClosed
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else {
				backoff *= 2
			}
			if backoff > time.Second {
				backoff = time.Second
			}
			Log.Warnf("accept error: %v; retrying in %v", err, backoff)
			select {
			case <-time.After(backoff):
			case <-s.stopCh:
				return ErrServerClosed
			}
			continue
		}
		backoff = 0
		Log.Debugf("client connected: %s", conn.RemoteAddr())
		s.startSession(newTCPTransport(conn, s.cfg.Wire))
	}
}
