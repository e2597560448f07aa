// Package relay fans Space Packets out to websocket subscribers. A Hub
// is both a transfer.SubLayer (packets pushed outbound by a
// transfer.Service are relayed to clients) and a transfer.Listener (it
// can also be registered directly against a Service to receive every
// dispatched packet without going through a sub-layer round trip).
//
// All client bookkeeping (add, remove, subscription updates) is
// centralized in a single goroutine reading from channels, so the
// packet fan-out path is never blocked while a client connects,
// disconnects, or changes its subscription.
package relay

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lumen-space/spacepacket/bitio"
	"github.com/lumen-space/spacepacket/spacepacket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16384,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type subscriptionMsg struct {
	client *Client
	apids  []uint16
	add    bool
}

// Hub owns the client table and the single dispatch loop. The zero
// value is not usable; construct one with NewHub.
type Hub struct {
	log zerolog.Logger

	clients map[*Client]bool

	addClientChan chan *Client
	removeClient  chan *Client
	updateSubs    chan subscriptionMsg
	broadcast     chan []byte
}

// NewHub constructs a Hub. Run must be started in its own goroutine
// before the Hub is wired to a transfer.Service or an HTTP router.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:           log.With().Str("component", "relay").Logger(),
		clients:       make(map[*Client]bool),
		addClientChan: make(chan *Client, 20),
		removeClient:  make(chan *Client, 20),
		updateSubs:    make(chan subscriptionMsg, 20),
		broadcast:     make(chan []byte, 300),
	}
}

// Run centralizes all mutation of the client table and dispatches
// broadcast packets to matching clients. It never returns; run it in
// its own goroutine for the life of the process.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.addClientChan:
			h.clients[c] = true
			h.log.Debug().Str("remote", c.remoteAddr()).Msg("client connected")

		case c := <-h.removeClient:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.log.Debug().Str("remote", c.remoteAddr()).Msg("client disconnected")
			}

		case msg := <-h.updateSubs:
			for _, apid := range msg.apids {
				if msg.add {
					msg.client.subscriptions[apid] = true
				} else {
					msg.client.subscriptions[apid] = false
				}
			}

		case data := <-h.broadcast:
			h.fanOut(data)
		}
	}
}

func (h *Hub) fanOut(data []byte) {
	if len(data) < spacepacket.PrimaryHeaderSize {
		return
	}
	apid := uint16(data[0]&0x07)<<8 | uint16(data[1])
	for c := range h.clients {
		if !c.subscribed(apid) {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.log.Warn().Str("remote", c.remoteAddr()).Msg("slow client, dropping")
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// PushOutbound satisfies transfer.SubLayer: it copies buf's bytes onto
// the broadcast channel without blocking the caller. A full channel
// (a stalled Run loop) is reported as an error rather than blocking
// the transfer.Service that called it.
func (h *Hub) PushOutbound(buf bitio.Buffer) error {
	cp := make([]byte, buf.Size())
	copy(cp, buf.Bytes())
	select {
	case h.broadcast <- cp:
		return nil
	default:
		return errBroadcastFull
	}
}

// OnPacket satisfies transfer.Listener, letting a Hub be registered
// directly with a transfer.Service instead of (or in addition to)
// being wired as its sub-layer.
func (h *Hub) OnPacket(buf bitio.Buffer) {
	_ = h.PushOutbound(buf)
}

// ServeWS upgrades an HTTP request to a websocket connection and
// registers the resulting client with the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	client := newClient(h, conn)
	h.addClientChan <- client
	go client.writePump()
	go client.readPump()
}
