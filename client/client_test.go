package client

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"blockarena/protocol"
)

// fakeServer 接受一个连接，发送握手，然后对每条意图回显位置
func fakeServer(t *testing.T, codec *protocol.Codec, reject bool) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		if reject {
			return
		}
		hs, _ := codec.Marshal(protocol.Handshake{ID: 4, Color: protocol.Color{0, 0, 255}, Map: protocol.MapInfo{Width: 100, Height: 100}})
		if err := protocol.WriteFrame(conn, hs); err != nil {
			return
		}
		for {
			b, err := protocol.ReadFrame(conn, 0)
			if err != nil {
				return
			}
			var in protocol.Intent
			if err := codec.Unmarshal(b, &in); err != nil {
				return
			}
			snap := protocol.Snapshot{Players: map[int]protocol.PlayerState{4: {}}}
			if in.Pos != nil {
				snap.Players[4] = protocol.PlayerState{Pos: *in.Pos}
			}
			out, _ := codec.Marshal(snap)
			if err := protocol.WriteFrame(conn, out); err != nil {
				return
			}
		}
	}()
	return ln.Addr().String()
}

func TestDialReadsHandshake(t *testing.T) {
	codec, _ := protocol.NewCodec("", 0)
	addr := fakeServer(t, codec, false)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := Dial(ctx, addr, codec)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	if c.ID() != 4 || c.Handshake().Map.Width != 100 {
		t.Fatalf("handshake = %+v", c.Handshake())
	}
	pos := protocol.Vec{7, 8}
	snap, err := c.Exchange(protocol.Intent{Pos: &pos})
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if snap.Players[4].Pos != pos {
		t.Fatalf("snapshot = %+v", snap)
	}
}

// 服务端声明的帧长超过上限时不分配缓冲区，直接失败
func TestDialRejectsOversizedFrame(t *testing.T) {
	codec, _ := protocol.NewCodec("", 1024)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = conn.Write([]byte{0xff, 0xff, 0xff, 0xff})
		time.Sleep(time.Second)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := Dial(ctx, ln.Addr().String(), codec); !errors.Is(err, protocol.ErrFrameTooLarge) {
		t.Fatalf("got %v, want ErrFrameTooLarge", err)
	}
}

func TestDialRejected(t *testing.T) {
	codec, _ := protocol.NewCodec("", 0)
	addr := fakeServer(t, codec, true)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := Dial(ctx, addr, codec); !errors.Is(err, ErrRejected) {
		t.Fatalf("got %v, want ErrRejected", err)
	}
}
