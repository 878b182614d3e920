package protocol

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	CompressionNone = "none"
	CompressionZstd = "zstd"
)

// Codec 负责消息的序列化（MessagePack），可选 zstd 压缩。
// 两端必须使用相同的压缩设置。Codec 可被多个协程并发使用。
type Codec struct {
	enc      *zstd.Encoder
	dec      *zstd.Decoder
	maxFrame int
}

// NewCodec 按压缩方式创建编解码器；空字符串等同于 none。
// maxFrame 同时限制帧长和解压后的大小，<= 0 时取 DefaultMaxFrame
func NewCodec(compression string, maxFrame int) (*Codec, error) {
	if maxFrame <= 0 {
		maxFrame = DefaultMaxFrame
	}
	switch compression {
	case "", CompressionNone:
		return &Codec{maxFrame: maxFrame}, nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
		dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(uint64(maxFrame)))
		if err != nil {
			_ = enc.Close()
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		return &Codec{enc: enc, dec: dec, maxFrame: maxFrame}, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", compression)
	}
}

// Compressed 是否启用压缩
func (c *Codec) Compressed() bool { return c.enc != nil }

// MaxFrame 单帧上限，读帧时使用
func (c *Codec) MaxFrame() int { return c.maxFrame }

func (c *Codec) Marshal(v any) ([]byte, error) {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return nil, err
	}
	if c.enc != nil {
		b = c.enc.EncodeAll(b, make([]byte, 0, len(b)))
	}
	return b, nil
}

func (c *Codec) Unmarshal(b []byte, v any) error {
	if c.dec != nil {
		raw, err := c.dec.DecodeAll(b, nil)
		if err != nil {
			return fmt.Errorf("zstd: %w", err)
		}
		b = raw
	}
	return msgpack.Unmarshal(b, v)
}

// Close 释放 zstd 资源
func (c *Codec) Close() {
	if c.enc != nil {
		_ = c.enc.Close()
	}
	if c.dec != nil {
		c.dec.Close()
	}
}
