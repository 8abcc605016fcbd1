package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is one live connection. The identity fields stay empty until the
// connection authenticates; they are written only from the hub loop.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	userID   string
	username string
}

// ServeWs upgrades an HTTP request to a WebSocket connection and hands it to
// the hub. The connection starts unauthenticated.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade: %v", err)
		return
	}

	client := &Client{hub: hub, conn: conn, send: make(chan []byte, sendBufferSize)}
	hub.register <- client

	go client.writePump()
	go client.readPump()
}

// Authenticated reports whether the connection has a resolved identity.
func (c *Client) Authenticated() bool {
	return c.userID != ""
}

// Emit queues a named event for delivery to this connection. The send never
// blocks: if the client's buffer is full the frame is dropped and logged.
func (c *Client) Emit(name string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("ws: marshal %s payload: %v", name, err)
		return
	}
	frame, err := json.Marshal(Event{Name: name, Data: payload})
	if err != nil {
		log.Printf("ws: marshal %s frame: %v", name, err)
		return
	}

	select {
	case c.send <- frame:
	default:
		log.Printf("ws: dropping %s frame for slow client %s", name, c.userID)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("ws: read: %v", err)
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			log.Printf("ws: invalid frame: %v", err)
			continue
		}
		c.hub.inbound <- inbound{client: c, event: ev}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
