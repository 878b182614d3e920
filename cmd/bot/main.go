package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"blockarena/client"
	"blockarena/protocol"
	"blockarena/server"
)

// bot 无界面客户端：随机游走、拾取资源、放置方块或炸药，用于联调与压测
func main() {
	var (
		cfgPath string
		addr    string
		wsURL   string
		ticks   int
	)
	flag.StringVar(&cfgPath, "config", "", "path to YAML config (client and wire sections are used)")
	flag.StringVar(&addr, "addr", "", "tcp server address, defaults to tcp_addr")
	flag.StringVar(&wsURL, "ws", "", "connect over websocket instead, e.g. ws://localhost:8080/ws")
	flag.IntVar(&ticks, "ticks", 0, "stop after n ticks, 0 runs until interrupted")
	flag.Parse()

	cfg := server.DefaultConfig()
	if cfgPath != "" {
		var err error
		if cfg, err = server.LoadConfig(cfgPath); err != nil {
			panic(err)
		}
	}
	if addr == "" {
		addr = cfg.TCPAddr
	}
	if err := server.InitLogger(server.LogConfig{Level: cfg.Log.Level}); err != nil {
		panic(err)
	}
	defer server.SyncLogger()
	log := server.Log.With("bot", addr)

	codec, err := protocol.NewCodec(cfg.Wire.Compression, cfg.Wire.MaxFrameBytes)
	if err != nil {
		log.Fatalf("codec: %v", err)
	}
	defer codec.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var c *client.Client
	if wsURL != "" {
		c, err = client.DialWS(ctx, wsURL, codec)
	} else {
		c, err = client.Dial(ctx, addr, codec)
	}
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer c.Close()

	hs := c.Handshake()
	log = log.With("player", hs.ID)
	log.Infof("joined with color %v on %dx%d map, %d resources, %d blocks",
		hs.Color, hs.Map.Width, hs.Map.Height, len(hs.Resources), len(hs.Blocks))

	b := newBot(hs, cfg, rand.New(rand.NewSource(time.Now().UnixNano())))
	limiter := rate.NewLimiter(rate.Limit(cfg.Client.TickRate), 1)
	for n := 0; ticks == 0 || n < ticks; n++ {
		if err := limiter.Wait(ctx); err != nil {
			log.Info("stopping")
			return
		}
		snap, err := c.Exchange(b.next())
		if err != nil {
			log.Warnf("exchange: %v", err)
			return
		}
		b.observe(snap)
		log.Debugf("tick %d pos=%v resources=%d players=%d blocks=%d",
			n, b.pos, b.resources, len(snap.Players), len(snap.Blocks))
	}
}

// bot 的本地状态；本地裁剪只为响应性，服务端裁剪才是权威
type bot struct {
	id        int
	pos       protocol.Vec
	dir       protocol.Vec
	resources int

	width, height int
	size, speed   int
	rng           *rand.Rand
}

func newBot(hs protocol.Handshake, cfg server.Config, rng *rand.Rand) *bot {
	return &bot{
		id:     hs.ID,
		pos:    protocol.Vec{hs.Map.Width / 2, hs.Map.Height / 2},
		width:  hs.Map.Width,
		height: hs.Map.Height,
		size:   cfg.World.PlayerSize,
		speed:  cfg.Client.Speed,
		rng:    rng,
	}
}

func (b *bot) next() protocol.Intent {
	if b.rng.Intn(20) == 0 || b.dir == (protocol.Vec{}) {
		b.dir = protocol.Vec{b.rng.Intn(3) - 1, b.rng.Intn(3) - 1}
	}
	target := protocol.Vec{
		clamp(b.pos.X()+b.dir.X()*b.speed, 0, b.width-b.size),
		clamp(b.pos.Y()+b.dir.Y()*b.speed, 0, b.height-b.size),
	}
	in := protocol.Intent{Pos: &target}
	if b.resources > 0 && b.rng.Intn(10) == 0 {
		// 放在身后，避免挡住自己的下一步
		place := protocol.Vec{b.pos.X() - b.dir.X()*b.size*2, b.pos.Y() - b.dir.Y()*b.size*2}
		in.BlockPos = &place
		in.BlockType = protocol.BlockOrdinary
		if b.rng.Intn(4) == 0 {
			in.BlockType = protocol.BlockExplosive
		}
	}
	return in
}

func (b *bot) observe(snap protocol.Snapshot) {
	me, ok := snap.Players[b.id]
	if !ok {
		return
	}
	if me.Pos == b.pos {
		// 被方块挡住时换个方向
		b.dir = protocol.Vec{}
	}
	b.pos = me.Pos
	b.resources = me.Resources
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
