package protocol

// Vec 地图坐标 [x, y]（整数像素）
type Vec [2]int

// X 横坐标
func (v Vec) X() int { return v[0] }

// Y 纵坐标
func (v Vec) Y() int { return v[1] }

// Color RGB 颜色
type Color [3]int

// BlockType 方块类型
type BlockType int

const (
	BlockOrdinary  BlockType = 1
	BlockExplosive BlockType = 2
)

// Normalize 未知或缺省类型一律按普通方块处理
func (t BlockType) Normalize() BlockType {
	if t == BlockExplosive {
		return BlockExplosive
	}
	return BlockOrdinary
}

// PlayerState 广播给客户端的玩家状态
type PlayerState struct {
	Pos       Vec   `msgpack:"pos" json:"pos"`
	Color     Color `msgpack:"color" json:"color"`
	Resources int   `msgpack:"resources" json:"resources"`
}

// Resource 可收集资源，位置生成后不再变化
type Resource struct {
	Pos       Vec  `msgpack:"pos" json:"pos"`
	Collected bool `msgpack:"collected" json:"collected"`
}

// Block 已放置的方块，位置对齐到网格
type Block struct {
	Pos   Vec       `msgpack:"pos" json:"pos"`
	Color Color     `msgpack:"color" json:"color"`
	Type  BlockType `msgpack:"type" json:"type"`
}

// MapInfo 地图尺寸
type MapInfo struct {
	Width  int `msgpack:"width" json:"width"`
	Height int `msgpack:"height" json:"height"`
}

// Handshake 加入成功后服务端只发送一次
type Handshake struct {
	ID        int        `msgpack:"id" json:"id"`
	Color     Color      `msgpack:"color" json:"color"`
	Map       MapInfo    `msgpack:"map" json:"map"`
	Resources []Resource `msgpack:"resources" json:"resources"`
	Blocks    []Block    `msgpack:"blocks" json:"blocks"`
}

// Snapshot 每处理一条意图后回传的完整世界状态
type Snapshot struct {
	Players   map[int]PlayerState `msgpack:"players" json:"players"`
	Resources []Resource          `msgpack:"resources" json:"resources"`
	Blocks    []Block             `msgpack:"blocks" json:"blocks"`
}

// Intent 客户端每个本地 tick 的意图，字段均可缺省
// 示例：{"pos":[100,200],"block_pos":[305,47],"block_type":2}
type Intent struct {
	Pos       *Vec      `msgpack:"pos,omitempty" json:"pos,omitempty"`
	BlockPos  *Vec      `msgpack:"block_pos,omitempty" json:"block_pos,omitempty"`
	BlockType BlockType `msgpack:"block_type,omitempty" json:"block_type,omitempty"`
}
