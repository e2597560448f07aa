package relay

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lumen-space/spacepacket/bitio"
	"github.com/lumen-space/spacepacket/field"
	"github.com/lumen-space/spacepacket/spacepacket"
)

func buildPacket(t *testing.T, apid uint16) []byte {
	t.Helper()
	buf := bitio.NewBuffer(8)
	b := spacepacket.NewBuilder(buf, spacepacket.EmptySecondaryHeader())
	b.Primary.Apid.SetValue(apid)
	b.Primary.SequenceFlags.SetValue(spacepacket.SequenceUnsegmented)
	field.NewValue[uint16](16, 0xBEEF).Serialize(b.Data())
	if err := b.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !b.IsValid() {
		t.Fatalf("built packet is not valid")
	}
	return buf.Bytes()
}

func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestHubApidFiltering(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	router := Router(hub, nil, nil, "/realtime")
	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/realtime"

	filtered := dial(t, wsURL)
	defer filtered.Close()
	everything := dial(t, wsURL)
	defer everything.Close()

	sub := subscribeRequest{Action: "subscribe", Apids: []uint16{42}}
	payload, _ := json.Marshal(sub)
	if err := filtered.WriteMessage(websocket.TextMessage, payload); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	time.Sleep(50 * time.Millisecond) // let the hub goroutine apply the subscription

	if err := hub.PushOutbound(bitio.Borrow(buildPacket(t, 42))); err != nil {
		t.Fatalf("push apid 42: %v", err)
	}
	if err := hub.PushOutbound(bitio.Borrow(buildPacket(t, 99))); err != nil {
		t.Fatalf("push apid 99: %v", err)
	}

	filtered.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := filtered.ReadMessage()
	if err != nil {
		t.Fatalf("filtered client did not receive apid 42: %v", err)
	}
	if got := uint16(msg[0]&0x07)<<8 | uint16(msg[1]); got != 42 {
		t.Errorf("filtered client got apid %d, want 42", got)
	}

	filtered.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := filtered.ReadMessage(); err == nil {
		t.Errorf("filtered client unexpectedly received a second packet (apid 99 should have been dropped)")
	}

	for i := 0; i < 2; i++ {
		everything.SetReadDeadline(time.Now().Add(time.Second))
		if _, _, err := everything.ReadMessage(); err != nil {
			t.Fatalf("unfiltered client missing packet %d: %v", i, err)
		}
	}
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	router := Router(hub, nil, nil, "/realtime")
	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/realtime"
	conn := dial(t, wsURL)
	defer conn.Close()

	subscribe, _ := json.Marshal(subscribeRequest{Action: "subscribe", Apids: []uint16{7}})
	conn.WriteMessage(websocket.TextMessage, subscribe)
	time.Sleep(50 * time.Millisecond)

	unsubscribe, _ := json.Marshal(subscribeRequest{Action: "unsubscribe", Apids: []uint16{7}})
	conn.WriteMessage(websocket.TextMessage, unsubscribe)
	time.Sleep(50 * time.Millisecond)

	hub.PushOutbound(bitio.Borrow(buildPacket(t, 7)))

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Errorf("client unsubscribed from apid 7 but still received a packet")
	}
}
