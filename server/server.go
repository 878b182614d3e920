package server

import (
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/matryer/way"
	"go.uber.org/multierr"

	"blockarena/protocol"
)

var ErrServerClosed = errors.New("server closed")

// Server 持有唯一的世界，管理 TCP/WebSocket 会话与 HTTP 管理接口
type Server struct {
	cfg     Config
	world   *World
	sched   *TimerScheduler
	metrics *Metrics
	codec   *protocol.Codec

	// mu 只保护会话登记与监听器，从不在持有世界锁时获取
	mu        sync.Mutex
	sessions  map[*session]struct{}
	listeners []net.Listener
	closed    bool
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

func New(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	codec, err := protocol.NewCodec(cfg.Wire.Compression, cfg.Wire.MaxFrameBytes)
	if err != nil {
		return nil, err
	}
	metrics := &Metrics{}
	sched := NewTimerScheduler()
	return &Server{
		cfg:      cfg,
		world:    NewWorld(cfg.World, sched, metrics),
		sched:    sched,
		metrics:  metrics,
		codec:    codec,
		sessions: make(map[*session]struct{}),
		stopCh:   make(chan struct{}),
	}, nil
}

func (s *Server) World() *World { return s.world }

func (s *Server) Metrics() *Metrics { return s.metrics }

// Handler HTTP 路由：WebSocket 接入、健康检查、指标与调试接口
func (s *Server) Handler() http.Handler {
	router := way.NewRouter()
	router.HandleFunc("GET", "/ws", s.HandleWS)
	router.HandleFunc("GET", "/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET", "/metrics", s.HandleMetrics)
	router.HandleFunc("GET", "/admin/config", s.HandleAdminConfig)
	router.HandleFunc("GET", "/admin/world", s.HandleAdminWorld)
	return router
}

func (s *Server) startSession(t Transport) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = t.Close()
		return
	}
	sess := newSession(s, t)
	s.sessions[sess] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		sess.run()
	}()
}

func (s *Server) forget(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
}

// Close 停止接受连接并关闭所有会话，等待会话协程退出。
// 已安排的爆炸不会被取消
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.stopCh)
	var err error
	for _, ln := range s.listeners {
		err = multierr.Append(err, ln.Close())
	}
	for sess := range s.sessions {
		if cerr := sess.t.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = multierr.Append(err, cerr)
		}
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.codec.Close()
	return err
}

// WaitDetonations 阻塞直到所有已安排的爆炸执行完毕
func (s *Server) WaitDetonations() { s.sched.Wait() }
