package server

import (
	"blockarena/protocol"
)

// ApplyMove 移动玩家：按地图裁剪坐标，与方块重叠时忽略本次移动。
// 返回玩家当前位置以及移动是否生效
func (w *World) ApplyMove(id PlayerID, raw protocol.Vec) (protocol.Vec, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[id]
	if !ok {
		return protocol.Vec{}, false
	}
	return w.applyMoveLocked(p, raw)
}

// ApplyPlacement 消耗一个资源放置方块；资源为零或格子已占用时拒绝
func (w *World) ApplyPlacement(id PlayerID, raw protocol.Vec, typ protocol.BlockType) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[id]
	if !ok {
		return false
	}
	return w.applyPlacementLocked(p, raw, typ)
}

// Detonate 移除以 pos 为中心、两轴距离都不超过爆炸半径的所有方块，
// 每个被摧毁的方块原地变成一个未收集的资源。返回摧毁数量
func (w *World) Detonate(pos protocol.Vec) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.detonateLocked(pos)
}

func (w *World) applyMoveLocked(p *Player, raw protocol.Vec) (protocol.Vec, bool) {
	x := clamp(raw.X(), 0, w.cfg.Width-w.cfg.PlayerSize)
	y := clamp(raw.Y(), 0, w.cfg.Height-w.cfg.PlayerSize)

	for _, b := range w.blocks {
		if overlaps(x, y, w.cfg.PlayerSize, b.Pos.X(), b.Pos.Y(), w.cfg.BlockSize) {
			w.metrics.IncMovesBlocked()
			Log.Debugf("player %d move to (%d,%d) blocked by block at %v", p.ID, x, y, b.Pos)
			return p.Pos(), false
		}
	}

	p.X, p.Y = x, y
	w.metrics.IncMovesApplied()
	w.collectLocked(p)
	return p.Pos(), true
}

// collectLocked 拾取与玩家位置重叠的资源；全部被收集后整批重新生成
func (w *World) collectLocked(p *Player) {
	size := w.cfg.ResourceSize
	picked := 0
	for i := range w.resources {
		r := &w.resources[i]
		if r.Collected || abs(p.X-r.Pos.X()) >= size || abs(p.Y-r.Pos.Y()) >= size {
			continue
		}
		r.Collected = true
		p.Resources++
		picked++
		w.metrics.IncPickups()
		Log.Debugf("player %d collected resource at %v", p.ID, r.Pos)
	}
	if picked > 0 && w.allCollectedLocked() {
		w.generateResourcesLocked()
		w.metrics.IncRegenerations()
	}
}

func (w *World) allCollectedLocked() bool {
	for _, r := range w.resources {
		if !r.Collected {
			return false
		}
	}
	return true
}

func (w *World) applyPlacementLocked(p *Player, raw protocol.Vec, typ protocol.BlockType) bool {
	if p.Resources <= 0 {
		w.metrics.IncPlacementsRejected()
		Log.Debugf("player %d placement at %v rejected: no resources", p.ID, raw)
		return false
	}
	pos := snapToGrid(raw, w.cfg.BlockSize)
	if w.blockAtLocked(pos) {
		w.metrics.IncPlacementsRejected()
		Log.Debugf("player %d placement at %v rejected: cell occupied", p.ID, pos)
		return false
	}

	b := protocol.Block{Pos: pos, Type: typ.Normalize(), Color: p.Color}
	if b.Type == protocol.BlockExplosive {
		b.Color = w.cfg.ExplosiveColor
		w.sched.Schedule(w.cfg.DetonationDelay, func() {
			w.Detonate(pos)
		})
		Log.Infof("player %d placed explosive at %v", p.ID, pos)
	} else {
		Log.Infof("player %d placed block at %v", p.ID, pos)
	}
	w.blocks = append(w.blocks, b)
	p.Resources--
	w.metrics.IncPlacements()
	return true
}

func (w *World) blockAtLocked(pos protocol.Vec) bool {
	for _, b := range w.blocks {
		if b.Pos == pos {
			return true
		}
	}
	return false
}

func (w *World) detonateLocked(pos protocol.Vec) int {
	r := w.cfg.ExplosionRadius
	Log.Infof("explosive detonated at %v", pos)

	kept := w.blocks[:0]
	destroyed := 0
	for _, b := range w.blocks {
		if abs(b.Pos.X()-pos.X()) <= r && abs(b.Pos.Y()-pos.Y()) <= r {
			w.resources = append(w.resources, protocol.Resource{Pos: b.Pos})
			destroyed++
			Log.Infof("block at %v destroyed by explosion", b.Pos)
			continue
		}
		kept = append(kept, b)
	}
	w.blocks = kept
	w.metrics.AddDetonation(destroyed)
	return destroyed
}

// snapToGrid 向下取整到网格（负数同样向负无穷取整），不做边界裁剪
func snapToGrid(v protocol.Vec, cell int) protocol.Vec {
	return protocol.Vec{floorDiv(v.X(), cell) * cell, floorDiv(v.Y(), cell) * cell}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// overlaps 轴对齐正方形严格相交（仅接触边不算）
func overlaps(ax, ay, asz, bx, by, bsz int) bool {
	return ax < bx+bsz && bx < ax+asz && ay < by+bsz && by < ay+asz
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

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
