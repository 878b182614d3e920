package server

import "blockarena/protocol"

// ColorPool 固定容量的颜色空闲表：调色板长度即同时在线玩家上限。
// 不自带锁，由 World 的互斥锁保护。
type ColorPool struct {
	palette []protocol.Color
	free    []protocol.Color
}

func NewColorPool(palette []protocol.Color) *ColorPool {
	p := &ColorPool{
		palette: append([]protocol.Color(nil), palette...),
		free:    make([]protocol.Color, 0, len(palette)),
	}
	p.free = append(p.free, palette...)
	return p
}

// Acquire 取出队首颜色；池空时返回 false（服务器满员）
func (p *ColorPool) Acquire() (protocol.Color, bool) {
	if len(p.free) == 0 {
		return protocol.Color{}, false
	}
	c := p.free[0]
	p.free = p.free[1:]
	return c, true
}

// Release 归还颜色到队尾；不属于调色板或已空闲的颜色被忽略
func (p *ColorPool) Release(c protocol.Color) bool {
	if !p.inPalette(c) {
		return false
	}
	for _, f := range p.free {
		if f == c {
			return false
		}
	}
	p.free = append(p.free, c)
	return true
}

func (p *ColorPool) Available() int { return len(p.free) }

func (p *ColorPool) Cap() int { return len(p.palette) }

func (p *ColorPool) inPalette(c protocol.Color) bool {
	for _, pc := range p.palette {
		if pc == c {
			return true
		}
	}
	return false
}
