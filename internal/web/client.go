package web

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 16
)

type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan StateMessage
	log  logrus.FieldLogger
}

func newClient(conn *websocket.Conn, log logrus.FieldLogger) *client {
	id := uuid.New()
	return &client{
		id:   id,
		conn: conn,
		send: make(chan StateMessage, sendBuffer),
		log:  log.WithField("client", id),
	}
}

// readLoop forwards click messages to the hub until the connection fails.
func (c *client) readLoop(h *Hub) {
	defer h.unregister(c)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Warn("read failed")
			}
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.WithError(err).Warn("ignoring malformed message")
			continue
		}
		switch msg.Type {
		case TypeClick:
			h.submit(click{client: c.id, index: msg.Index})
		default:
			c.log.WithField("type", msg.Type).Warn("ignoring unknown message")
		}
	}
}

// writeLoop only consumes; the hub closes send when the client is dropped.
func (c *client) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			c.log.WithError(err).Warn("write failed")
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
