package server

import (
	"fmt"

	"blockarena/protocol"
)

// Input 一条已解码的客户端意图（移动和/或放置），由会话协程按接收顺序提交给世界
type Input struct {
	PlayerID PlayerID
	Intent   protocol.Intent
}

// decodeInput 解码入站帧；失败时连接按传输错误处理（关闭）
func decodeInput(codec *protocol.Codec, id PlayerID, payload []byte) (Input, error) {
	var in protocol.Intent
	if err := codec.Unmarshal(payload, &in); err != nil {
		return Input{}, fmt.Errorf("decode intent: %w", err)
	}
	in.BlockType = in.BlockType.Normalize()
	return Input{PlayerID: id, Intent: in}, nil
}
