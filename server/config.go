package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"blockarena/protocol"
)

// Config 服务端启动配置，世界参数在启动后固定不变
type Config struct {
	TCPAddr  string `yaml:"tcp_addr" json:"tcp_addr"`
	HTTPAddr string `yaml:"http_addr" json:"http_addr"`

	Log    LogConfig    `yaml:"log" json:"log"`
	World  WorldConfig  `yaml:"world" json:"world"`
	Wire   WireConfig   `yaml:"wire" json:"wire"`
	Client ClientConfig `yaml:"client" json:"client"`
}

type LogConfig struct {
	File  string `yaml:"file" json:"file"` // 为空时输出到 stderr
	Level string `yaml:"level" json:"level"`
}

// WorldConfig 地图与实体尺寸、资源数量、爆炸参数、调色板
type WorldConfig struct {
	Width           int              `yaml:"width" json:"width"`
	Height          int              `yaml:"height" json:"height"`
	PlayerSize      int              `yaml:"player_size" json:"player_size"`
	ResourceSize    int              `yaml:"resource_size" json:"resource_size"`
	ResourceCount   int              `yaml:"resource_count" json:"resource_count"`
	BlockSize       int              `yaml:"block_size" json:"block_size"`
	ExplosionRadius int              `yaml:"explosion_radius" json:"explosion_radius"`
	DetonationDelay time.Duration    `yaml:"detonation_delay" json:"detonation_delay"`
	Seed            int64            `yaml:"seed" json:"seed"` // 0 表示按时间取种子
	Palette         []protocol.Color `yaml:"palette" json:"palette"`
	ExplosiveColor  protocol.Color   `yaml:"explosive_color" json:"explosive_color"`
}

type WireConfig struct {
	MaxFrameBytes int           `yaml:"max_frame_bytes" json:"max_frame_bytes"`
	Compression   string        `yaml:"compression" json:"compression"`
	WriteTimeout  time.Duration `yaml:"write_timeout" json:"write_timeout"` // 0 表示不设写超时
}

// ClientConfig 仅供客户端/机器人使用：每 tick 的移动步长与 tick 频率
type ClientConfig struct {
	Speed    int `yaml:"speed" json:"speed"`
	TickRate int `yaml:"tick_rate" json:"tick_rate"`
}

// DefaultPalette 六种玩家颜色，决定同时在线人数上限
func DefaultPalette() []protocol.Color {
	return []protocol.Color{
		{255, 0, 0}, {0, 255, 0}, {0, 0, 255},
		{255, 255, 0}, {255, 0, 255}, {0, 255, 255},
	}
}

func DefaultConfig() Config {
	return Config{
		TCPAddr:  "127.0.0.1:65432",
		HTTPAddr: ":8080",
		Log:      LogConfig{File: "app.log", Level: "debug"},
		World: WorldConfig{
			Width:           4096,
			Height:          4096,
			PlayerSize:      30,
			ResourceSize:    20,
			ResourceCount:   200,
			BlockSize:       30,
			ExplosionRadius: 60,
			DetonationDelay: 3 * time.Second,
			Palette:         DefaultPalette(),
			ExplosiveColor:  protocol.Color{255, 0, 0},
		},
		Wire: WireConfig{
			MaxFrameBytes: protocol.DefaultMaxFrame,
			Compression:   protocol.CompressionNone,
			WriteTimeout:  5 * time.Second,
		},
		Client: ClientConfig{Speed: 5, TickRate: 30},
	}
}

// LoadConfig 读取 YAML 并覆盖默认值；未出现的字段保持默认
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	w := c.World
	positive := []struct {
		name string
		v    int
	}{
		{"world.width", w.Width},
		{"world.height", w.Height},
		{"world.player_size", w.PlayerSize},
		{"world.resource_size", w.ResourceSize},
		{"world.block_size", w.BlockSize},
		{"wire.max_frame_bytes", c.Wire.MaxFrameBytes},
	}
	for _, p := range positive {
		if p.v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", p.name, p.v))
		}
	}
	if w.PlayerSize > w.Width || w.PlayerSize > w.Height {
		errs = append(errs, errors.New("world.player_size exceeds map"))
	}
	if w.ResourceSize > w.Width || w.ResourceSize > w.Height {
		errs = append(errs, errors.New("world.resource_size exceeds map"))
	}
	if w.ResourceCount < 0 {
		errs = append(errs, fmt.Errorf("world.resource_count must not be negative, got %d", w.ResourceCount))
	}
	if w.ExplosionRadius < 0 {
		errs = append(errs, fmt.Errorf("world.explosion_radius must not be negative, got %d", w.ExplosionRadius))
	}
	if w.DetonationDelay < 0 {
		errs = append(errs, fmt.Errorf("world.detonation_delay must not be negative, got %s", w.DetonationDelay))
	}
	if len(w.Palette) == 0 {
		errs = append(errs, errors.New("world.palette is empty"))
	}
	seen := make(map[protocol.Color]bool, len(w.Palette))
	for _, col := range w.Palette {
		if seen[col] {
			errs = append(errs, fmt.Errorf("world.palette has duplicate color %v", col))
		}
		seen[col] = true
	}
	switch c.Wire.Compression {
	case "", protocol.CompressionNone, protocol.CompressionZstd:
	default:
		errs = append(errs, fmt.Errorf("wire.compression %q unknown", c.Wire.Compression))
	}
	return multierr.Combine(errs...)
}
