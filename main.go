package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blockarena/server"
)

// blockarena 入口：加载配置，启动 TCP 世界服务与 HTTP（WebSocket + 管理）服务
func main() {
	var (
		cfgPath  string
		tcpAddr  string
		httpAddr string
	)
	flag.StringVar(&cfgPath, "config", "", "path to YAML config, defaults are used when empty")
	flag.StringVar(&tcpAddr, "addr", "", "tcp listen address, overrides tcp_addr")
	flag.StringVar(&httpAddr, "http", "", "http listen address, overrides http_addr")
	flag.Parse()

	cfg := server.DefaultConfig()
	if cfgPath != "" {
		var err error
		if cfg, err = server.LoadConfig(cfgPath); err != nil {
			panic(err)
		}
	}
	if tcpAddr != "" {
		cfg.TCPAddr = tcpAddr
	}
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}

	if err := server.InitLogger(cfg.Log); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	srv, err := server.New(cfg)
	if err != nil {
		server.Log.Fatalf("config: %v", err)
	}
	if err := srv.Listen(cfg.TCPAddr); err != nil {
		server.Log.Fatalf("listen: %v", err)
	}
	server.Log.Infof("world server started on %s", cfg.TCPAddr)

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Handler()}
	go func() {
		server.Log.Infof("http listening on %s (ws: /ws, metrics: /metrics)", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Log.Fatalf("http listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	if err := srv.Close(); err != nil {
		server.Log.Warnf("close: %v", err)
	}
}
