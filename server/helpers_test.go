package server

import (
	"sync"
	"testing"
	"time"

	"blockarena/protocol"
)

// manualScheduler 记录任务，由测试显式触发
type manualScheduler struct {
	mu    sync.Mutex
	tasks []scheduledTask
}

type scheduledTask struct {
	delay time.Duration
	fn    func()
}

func (m *manualScheduler) Schedule(delay time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, scheduledTask{delay: delay, fn: fn})
}

func (m *manualScheduler) pending() []scheduledTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]scheduledTask(nil), m.tasks...)
}

func (m *manualScheduler) fireAll() {
	m.mu.Lock()
	tasks := m.tasks
	m.tasks = nil
	m.mu.Unlock()
	for _, task := range tasks {
		task.fn()
	}
}

func testWorldConfig() WorldConfig {
	cfg := DefaultConfig().World
	cfg.Seed = 42
	return cfg
}

// newTestWorld 创建没有资源的世界，避免随机资源干扰断言
func newTestWorld(t *testing.T) (*World, *manualScheduler) {
	t.Helper()
	sched := &manualScheduler{}
	w := NewWorld(testWorldConfig(), sched, &Metrics{})
	w.resources = nil
	return w, sched
}

func mustJoin(t *testing.T, w *World) PlayerID {
	t.Helper()
	hs, err := w.Join()
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	return PlayerID(hs.ID)
}

func giveResources(w *World, id PlayerID, n int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.players[id].Resources = n
}

func player(w *World, id PlayerID) Player {
	w.mu.Lock()
	defer w.mu.Unlock()
	return *w.players[id]
}

func vec(x, y int) *protocol.Vec {
	v := protocol.Vec{x, y}
	return &v
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
