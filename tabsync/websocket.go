package tabsync

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"adminstyler/model"
)

// WebsocketTransport connects to a sync hub over websocket. The hub fans
// every inbound message out to all connections, sender included, so echoes
// are expected here.
type WebsocketTransport struct {
	conn *websocket.Conn
	ch   chan model.BroadcastMessage

	writeMu sync.Mutex
	once    sync.Once
}

// DialHub connects to the hub at url (ws:// or wss://) and starts the read
// loop.
func DialHub(url string) (*WebsocketTransport, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}

	t := &WebsocketTransport{
		conn: conn,
		ch:   make(chan model.BroadcastMessage, 16),
	}
	go t.readLoop()
	return t, nil
}

func (t *WebsocketTransport) readLoop() {
	defer t.closeChannel()
	for {
		var msg model.BroadcastMessage
		if err := t.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[tabsync] hub connection lost: %v", err)
			}
			return
		}
		t.ch <- msg
	}
}

func (t *WebsocketTransport) Send(msg model.BroadcastMessage) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.conn.WriteJSON(msg)
}

func (t *WebsocketTransport) Receive() <-chan model.BroadcastMessage {
	return t.ch
}

func (t *WebsocketTransport) Close() error {
	err := t.conn.Close()
	// readLoop exits on the closed connection and closes the channel.
	return err
}

func (t *WebsocketTransport) closeChannel() {
	t.once.Do(func() { close(t.ch) })
}
