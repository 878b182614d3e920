package server

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"blockarena/protocol"
)

var (
	// ErrServerFull 颜色池已空，拒绝加入
	ErrServerFull    = errors.New("server full: no color available")
	ErrUnknownPlayer = errors.New("unknown player")
)

// World 共享的世界状态：玩家、资源、方块与颜色池。
// 所有读写都经过同一把互斥锁（粗粒度、不可重入）；
// 带 Locked 后缀的方法要求调用方已持有锁。
type World struct {
	mu sync.Mutex

	cfg       WorldConfig
	players   map[PlayerID]*Player
	resources []protocol.Resource
	blocks    []protocol.Block
	colors    *ColorPool
	nextID    PlayerID

	rng     *rand.Rand
	sched   Scheduler
	metrics *Metrics
}

// NewWorld 创建世界并生成第一批资源。sched 为 nil 时使用定时器调度
func NewWorld(cfg WorldConfig, sched Scheduler, metrics *Metrics) *World {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if sched == nil {
		sched = NewTimerScheduler()
	}
	if metrics == nil {
		metrics = &Metrics{}
	}
	w := &World{
		cfg:     cfg,
		players: make(map[PlayerID]*Player),
		colors:  NewColorPool(cfg.Palette),
		rng:     rand.New(rand.NewSource(seed)),
		sched:   sched,
		metrics: metrics,
	}
	w.generateResourcesLocked()
	return w
}

func (w *World) Config() WorldConfig { return w.cfg }

// Join 分配颜色与 id，在地图中心放置新玩家并返回握手数据
func (w *World) Join() (protocol.Handshake, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	color, ok := w.colors.Acquire()
	if !ok {
		return protocol.Handshake{}, ErrServerFull
	}
	w.nextID++
	p := &Player{
		ID:    w.nextID,
		X:     clamp(w.cfg.Width/2, 0, w.cfg.Width-w.cfg.PlayerSize),
		Y:     clamp(w.cfg.Height/2, 0, w.cfg.Height-w.cfg.PlayerSize),
		Color: color,
	}
	w.players[p.ID] = p
	Log.Infof("player %d joined with color %v", p.ID, color)

	return protocol.Handshake{
		ID:        int(p.ID),
		Color:     color,
		Map:       protocol.MapInfo{Width: w.cfg.Width, Height: w.cfg.Height},
		Resources: w.copyResourcesLocked(),
		Blocks:    w.copyBlocksLocked(),
	}, nil
}

// Leave 移除玩家并归还颜色；重复调用无副作用
func (w *World) Leave(id PlayerID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[id]
	if !ok {
		return false
	}
	delete(w.players, id)
	w.colors.Release(p.Color)
	Log.Infof("player %d left", id)
	return true
}

// ApplyIntent 在同一个临界区内依次执行移动、放置并生成快照
func (w *World) ApplyIntent(id PlayerID, in protocol.Intent) (protocol.Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[id]
	if !ok {
		return protocol.Snapshot{}, ErrUnknownPlayer
	}
	if in.Pos != nil {
		w.applyMoveLocked(p, *in.Pos)
	}
	if in.BlockPos != nil {
		w.applyPlacementLocked(p, *in.BlockPos, in.BlockType)
	}
	return w.snapshotLocked(), nil
}

// Snapshot 当前世界的深拷贝
func (w *World) Snapshot() protocol.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Stats 在线人数与剩余颜色数
func (w *World) Stats() (online, colorsFree int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.players), w.colors.Available()
}

func (w *World) snapshotLocked() protocol.Snapshot {
	players := make(map[int]protocol.PlayerState, len(w.players))
	for id, p := range w.players {
		players[int(id)] = p.State()
	}
	return protocol.Snapshot{
		Players:   players,
		Resources: w.copyResourcesLocked(),
		Blocks:    w.copyBlocksLocked(),
	}
}

func (w *World) copyResourcesLocked() []protocol.Resource {
	return append(make([]protocol.Resource, 0, len(w.resources)), w.resources...)
}

func (w *World) copyBlocksLocked() []protocol.Block {
	return append(make([]protocol.Block, 0, len(w.blocks)), w.blocks...)
}

// generateResourcesLocked 整批重新生成资源（数量固定、位置随机、全部未收集）
func (w *World) generateResourcesLocked() {
	n := w.cfg.ResourceCount
	size := w.cfg.ResourceSize
	w.resources = make([]protocol.Resource, n)
	for i := range w.resources {
		w.resources[i].Pos = protocol.Vec{
			w.rng.Intn(w.cfg.Width - size + 1),
			w.rng.Intn(w.cfg.Height - size + 1),
		}
	}
	Log.Infof("generated %d resources", n)
}
