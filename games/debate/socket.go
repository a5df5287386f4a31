/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package debate

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// WebSocket adapts a gorilla connection to Socket. Writes are serialized and
// bounded by writeWait so a dead peer cannot hold a write pump forever.
type WebSocket struct {
	conn *websocket.Conn
	idle time.Duration

	mu        sync.Mutex
	closeOnce sync.Once
}

func NewWebSocket(conn *websocket.Conn, idle time.Duration) *WebSocket {
	ws := &WebSocket{
		conn: conn,
		idle: idle,
	}

	if idle > 0 {
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(idle))
		})
	}

	return ws
}

func (ws *WebSocket) Read() ([]byte, error) {
	_, data, err := ws.conn.ReadMessage()

	return data, err
}

func (ws *WebSocket) Write(data []byte) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	_ = ws.conn.SetWriteDeadline(time.Now().Add(writeWait))

	return ws.conn.WriteMessage(websocket.TextMessage, data)
}

func (ws *WebSocket) Ping() error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	return ws.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (ws *WebSocket) SetReadDeadline(t time.Time) error {
	return ws.conn.SetReadDeadline(t)
}

// Close sends a close frame carrying reason, then tears down the connection.
func (ws *WebSocket) Close(reason string) {
	ws.closeOnce.Do(func() {
		ws.mu.Lock()
		_ = ws.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
			time.Now().Add(time.Second))
		ws.mu.Unlock()

		_ = ws.conn.Close()
	})
}
