// Package client 是世界服务的协议客户端：连接后读取握手，
// 之后每发送一条意图就收到一份完整快照。
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/gorilla/websocket"

	"blockarena/protocol"
)

// ErrRejected 连接在握手前被服务端关闭（通常是满员）
var ErrRejected = errors.New("connection closed before handshake")

type frameConn interface {
	read() ([]byte, error)
	write([]byte) error
	close() error
}

type Client struct {
	conn      frameConn
	codec     *protocol.Codec
	handshake protocol.Handshake

	mu sync.Mutex
}

// Dial 通过 TCP 连接并完成握手
func Dial(ctx context.Context, addr string, codec *protocol.Codec) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return handshake(&tcpConn{conn: conn, r: bufio.NewReader(conn), maxFrame: codec.MaxFrame()}, codec)
}

// DialWS 通过 WebSocket 连接并完成握手，url 形如 ws://host:8080/ws
func DialWS(ctx context.Context, url string, codec *protocol.Codec) (*Client, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	ws.SetReadLimit(int64(codec.MaxFrame()))
	return handshake(&wsConn{ws: ws}, codec)
}

func handshake(fc frameConn, codec *protocol.Codec) (*Client, error) {
	b, err := fc.read()
	if err != nil {
		_ = fc.close()
		if errors.Is(err, protocol.ErrFrameTooLarge) {
			return nil, fmt.Errorf("read handshake: %w", err)
		}
		return nil, fmt.Errorf("%w: %w", ErrRejected, err)
	}
	c := &Client{conn: fc, codec: codec}
	if err := codec.Unmarshal(b, &c.handshake); err != nil {
		_ = fc.close()
		return nil, fmt.Errorf("decode handshake: %w", err)
	}
	return c, nil
}

func (c *Client) Handshake() protocol.Handshake { return c.handshake }

func (c *Client) ID() int { return c.handshake.ID }

func (c *Client) Send(in protocol.Intent) error {
	b, err := c.codec.Marshal(in)
	if err != nil {
		return err
	}
	return c.conn.write(b)
}

func (c *Client) Recv() (protocol.Snapshot, error) {
	var snap protocol.Snapshot
	b, err := c.conn.read()
	if err != nil {
		return snap, err
	}
	err = c.codec.Unmarshal(b, &snap)
	return snap, err
}

// Exchange 发送一条意图并等待对应的快照
func (c *Client) Exchange(in protocol.Intent) (protocol.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.Send(in); err != nil {
		return protocol.Snapshot{}, err
	}
	return c.Recv()
}

func (c *Client) Close() error { return c.conn.close() }

type tcpConn struct {
	conn     net.Conn
	r        *bufio.Reader
	maxFrame int
}

func (t *tcpConn) read() ([]byte, error) { return protocol.ReadFrame(t.r, t.maxFrame) }
func (t *tcpConn) write(b []byte) error { return protocol.WriteFrame(t.conn, b) }
func (t *tcpConn) close() error { return t.conn.Close() }

type wsConn struct {
	ws *websocket.Conn
}

func (w *wsConn) read() ([]byte, error) {
	_, b, err := w.ws.ReadMessage()
	return b, err
}

func (w *wsConn) write(b []byte) error { return w.ws.WriteMessage(websocket.BinaryMessage, b) }

func (w *wsConn) close() error { return w.ws.Close() }
