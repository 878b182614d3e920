package server

import (
	"sync/atomic"
)

// Metrics 记录运行期的关键计数（用于监控与调试），可在锁外并发更新
type Metrics struct {
	Joins              int64 // 成功加入的连接数
	CapacityRejected   int64 // 因颜色耗尽被拒绝的连接数
	Leaves             int64 // 离开并归还颜色的玩家数
	Intents            int64 // 已处理的意图数
	MovesApplied       int64
	MovesBlocked       int64 // 与方块重叠而被忽略的移动
	Pickups            int64
	Regenerations      int64
	Placements         int64
	PlacementsRejected int64 // 资源不足或格子被占用
	Detonations        int64
	BlocksDestroyed    int64
	DecodeErrors       int64
	TransportErrors    int64
}

func (m *Metrics) IncJoins() { atomic.AddInt64(&m.Joins, 1) }
func (m *Metrics) IncCapacityRejected() { atomic.AddInt64(&m.CapacityRejected, 1) }
func (m *Metrics) IncLeaves() { atomic.AddInt64(&m.Leaves, 1) }
func (m *Metrics) IncIntents() { atomic.AddInt64(&m.Intents, 1) }
func (m *Metrics) IncMovesApplied() { atomic.AddInt64(&m.MovesApplied, 1) }
func (m *Metrics) IncMovesBlocked() { atomic.AddInt64(&m.MovesBlocked, 1) }
func (m *Metrics) IncPickups() { atomic.AddInt64(&m.Pickups, 1) }
func (m *Metrics) IncRegenerations() { atomic.AddInt64(&m.Regenerations, 1) }
func (m *Metrics) IncPlacements() { atomic.AddInt64(&m.Placements, 1) }
func (m *Metrics) IncPlacementsRejected() { atomic.AddInt64(&m.PlacementsRejected, 1) }
func (m *Metrics) IncDecodeErrors() { atomic.AddInt64(&m.DecodeErrors, 1) }
func (m *Metrics) IncTransportErrors() { atomic.AddInt64(&m.TransportErrors, 1) }
func (m *Metrics) AddDetonation(destroyed int) {
	atomic.AddInt64(&m.Detonations, 1)
	atomic.AddInt64(&m.BlocksDestroyed, int64(destroyed))
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	return map[string]any{
		"joins":               atomic.LoadInt64(&m.Joins),
		"capacity_rejected":   atomic.LoadInt64(&m.CapacityRejected),
		"leaves":              atomic.LoadInt64(&m.Leaves),
		"intents":             atomic.LoadInt64(&m.Intents),
		"moves_applied":       atomic.LoadInt64(&m.MovesApplied),
		"moves_blocked":       atomic.LoadInt64(&m.MovesBlocked),
		"pickups":             atomic.LoadInt64(&m.Pickups),
		"regenerations":       atomic.LoadInt64(&m.Regenerations),
		"placements":          atomic.LoadInt64(&m.Placements),
		"placements_rejected": atomic.LoadInt64(&m.PlacementsRejected),
		"detonations":         atomic.LoadInt64(&m.Detonations),
		"blocks_destroyed":    atomic.LoadInt64(&m.BlocksDestroyed),
		"decode_errors":       atomic.LoadInt64(&m.DecodeErrors),
		"transport_errors":    atomic.LoadInt64(&m.TransportErrors),
	}
}
