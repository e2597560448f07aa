package relay

import (
	"encoding/json"

	"github.com/gorilla/websocket"
)

// Client is the middleman between one websocket connection and the
// Hub. Its subscriptions map is only ever touched from the Hub's Run
// goroutine, via updateSubs.
type Client struct {
	hub           *Hub
	conn          *websocket.Conn
	send          chan []byte
	subscriptions map[uint16]bool // empty (no subscribe/unsubscribe yet) means "subscribed to everything"; unsubscribed apids stay as false
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:           hub,
		conn:          conn,
		send:          make(chan []byte, 32),
		subscriptions: make(map[uint16]bool),
	}
}

func (c *Client) remoteAddr() string {
	if c.conn == nil {
		return "unknown"
	}
	return c.conn.RemoteAddr().String()
}

func (c *Client) subscribed(apid uint16) bool {
	if len(c.subscriptions) == 0 {
		return true
	}
	return c.subscriptions[apid]
}

// subscribeRequest is the client-originated JSON control message used
// to add or remove APID subscriptions on an open connection.
type subscribeRequest struct {
	Action string   `json:"action"`
	Apids  []uint16 `json:"apids"`
}

func (c *Client) readPump() {
	defer func() {
		c.hub.removeClient <- c
	}()
	for {
		messageType, p, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var req subscribeRequest
		if err := json.Unmarshal(p, &req); err != nil {
			continue
		}
		switch req.Action {
		case "subscribe":
			c.hub.updateSubs <- subscriptionMsg{client: c, apids: req.Apids, add: true}
		case "unsubscribe":
			c.hub.updateSubs <- subscriptionMsg{client: c, apids: req.Apids, add: false}
		}
	}
}

func (c *Client) writePump() {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
			c.hub.removeClient <- c
			return
		}
	}
	c.conn.Close()
}
