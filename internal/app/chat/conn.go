package chat

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"zimage/internal/pkg/logx"
	"zimage/internal/pkg/randx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum allowed size (in bytes) of a frame sent by the server.
	maxFrameSize = 64 * 1024
)

// Conn is one live chat connection.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteJSON(v any) error
	Close() error
}

// Dialer opens chat connections. The context aborts the handshake only.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WebSocketDialer dials the chat endpoint with gorilla/websocket.
type WebSocketDialer struct {
	// Dialer defaults to websocket.DefaultDialer when nil.
	Dialer *websocket.Dialer
}

// Dial performs the handshake and returns the connection with a request ID header attached.
func (d WebSocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	header := http.Header{}
	header.Set(logx.RequestIDHeader, randx.RequestID())

	ws, res, err := dialer.DialContext(ctx, url, header)
	if res != nil && res.Body != nil {
		res.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	ws.SetReadLimit(maxFrameSize)
	return &wsConn{conn: ws}, nil
}

// wsConn serializes writes; gorilla allows one concurrent reader and one concurrent writer.
type wsConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *wsConn) WriteJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

// Close sends a normal close frame, best effort, and closes the socket.
func (c *wsConn) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	return c.conn.Close()
}
