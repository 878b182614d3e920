package server

import "blockarena/protocol"

// PlayerID 玩家唯一标识，连接期间稳定且不复用
type PlayerID int

// Player 世界内的玩家实体（服务端权威状态）
type Player struct {
	ID        PlayerID
	X         int
	Y         int
	Color     protocol.Color
	Resources int
}

func (p Player) Pos() protocol.Vec { return protocol.Vec{p.X, p.Y} }

// State 转为广播用的轻量状态
func (p Player) State() protocol.PlayerState {
	return protocol.PlayerState{Pos: p.Pos(), Color: p.Color, Resources: p.Resources}
}
