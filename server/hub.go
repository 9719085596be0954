package server

import (
	"sync"
	"time"

	"github.com/mobile-next/qrscan/utils"
)

// eventQueueSize bounds the events buffered for one slow client.
const eventQueueSize = 64

// Notification is a JSON-RPC notification pushed to WebSocket clients.
type Notification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type eventSink interface {
	sendJSON(v interface{}) error
	close() error
}

type subscriber struct {
	sink   eventSink
	events chan Notification
	done   chan struct{}
	once   sync.Once
}

// Hub broadcasts service events to every subscribed WebSocket client. Each
// client has its own queue and delivery goroutine, so events reach a client in
// the order they were published and a slow client does not hold up the rest.
type Hub struct {
	mu      sync.Mutex
	subs    map[*subscriber]struct{}
	retries int
	backoff time.Duration
}

// NewHub creates a hub that tries each delivery up to retries times, waiting
// backoff between attempts, before dropping the client.
func NewHub(retries int, backoff time.Duration) *Hub {
	if retries <= 0 {
		retries = 1
	}
	return &Hub{
		subs:    make(map[*subscriber]struct{}),
		retries: retries,
		backoff: backoff,
	}
}

// Notify implements commands.Notifier.
func (h *Hub) Notify(event string, payload interface{}) {
	n := Notification{JSONRPC: "2.0", Method: event, Params: payload}

	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	utils.Verbose("Publishing %s to %d client(s)", event, len(subs))

	dropped := 0
	for _, sub := range subs {
		select {
		case sub.events <- n:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		utils.Warn("Event %s dropped for %d slow client(s)", event, dropped)
	}
}

// Subscribe starts delivering events to sink until the returned function is
// called or a delivery fails on every attempt.
func (h *Hub) Subscribe(sink eventSink) func() {
	sub := &subscriber{
		sink:   sink,
		events: make(chan Notification, eventQueueSize),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	count := len(h.subs)
	h.mu.Unlock()
	utils.Verbose("Event client subscribed, %d connected", count)

	go h.run(sub)

	return func() { h.unsubscribe(sub) }
}

// Subscribers returns the number of connected event clients.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) unsubscribe(sub *subscriber) {
	sub.once.Do(func() {
		h.mu.Lock()
		delete(h.subs, sub)
		h.mu.Unlock()
		close(sub.done)
	})
}

func (h *Hub) run(sub *subscriber) {
	for {
		select {
		case <-sub.done:
			return
		case n := <-sub.events:
			if err := h.deliver(sub, n); err != nil {
				utils.Error("Dropping event client after %d failed attempt(s) to deliver %s: %v", h.retries, n.Method, err)
				h.unsubscribe(sub)
				_ = sub.sink.close()
				return
			}
		}
	}
}

func (h *Hub) deliver(sub *subscriber, n Notification) error {
	var err error
	for attempt := 1; attempt <= h.retries; attempt++ {
		if err = sub.sink.sendJSON(n); err == nil {
			return nil
		}

		utils.Verbose("Delivering %s failed (attempt %d/%d): %v", n.Method, attempt, h.retries, err)
		if attempt == h.retries {
			break
		}

		select {
		case <-time.After(h.backoff):
		case <-sub.done:
			return err
		}
	}
	return err
}
