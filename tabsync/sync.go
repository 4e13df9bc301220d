package tabsync

import (
	"log"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"adminstyler/model"
)

const (
	// EchoTTL is how long a sent changeId is remembered for echo
	// suppression.
	EchoTTL = 5 * time.Second
	// StaleAfter discards inbound messages older than this.
	StaleAfter = 10 * time.Second
)

// Synchronizer broadcasts local changes and applies remote ones. Outbound
// changeIds are remembered in a time-bounded set so a transport that
// delivers the sender's own messages back never reapplies them.
type Synchronizer struct {
	transport Transport
	source    string
	recent    *cache.Cache
	apply     func(model.BroadcastMessage)
	done      chan struct{}
}

// New creates a synchronizer. apply is invoked for every accepted remote
// message; it must bypass history recording.
func New(transport Transport, apply func(model.BroadcastMessage)) *Synchronizer {
	return &Synchronizer{
		transport: transport,
		source:    uuid.NewString(),
		recent:    cache.New(EchoTTL, time.Second),
		apply:     apply,
		done:      make(chan struct{}),
	}
}

// Source identifies this session in outbound messages.
func (s *Synchronizer) Source() string {
	return s.source
}

// Start launches the receive loop.
func (s *Synchronizer) Start() {
	go s.receiveLoop()
}

func (s *Synchronizer) receiveLoop() {
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-s.transport.Receive():
			if !ok {
				return
			}
			s.handle(msg)
		}
	}
}

func (s *Synchronizer) handle(msg model.BroadcastMessage) {
	if _, own := s.recent.Get(msg.ChangeID); own {
		// Our own echo.
		return
	}
	if !msg.Timestamp.IsZero() && time.Since(msg.Timestamp) > StaleAfter {
		log.Printf("[tabsync] dropping stale message %s (age %s)", msg.ChangeID, time.Since(msg.Timestamp).Round(time.Millisecond))
		return
	}
	s.apply(msg)
}

// Broadcast publishes a successfully applied local change.
func (s *Synchronizer) Broadcast(optionID, value string) error {
	msg := model.BroadcastMessage{
		OptionID:  optionID,
		Value:     value,
		ChangeID:  uuid.NewString(),
		Timestamp: time.Now(),
		Source:    s.source,
	}
	s.recent.SetDefault(msg.ChangeID, struct{}{})
	if err := s.transport.Send(msg); err != nil {
		log.Printf("[tabsync] broadcast %s failed: %v", optionID, err)
		return err
	}
	return nil
}

// Close stops the receive loop and closes the transport.
func (s *Synchronizer) Close() error {
	close(s.done)
	return s.transport.Close()
}
