// Package sse pushes content change notifications to browsers over
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types.
const (
	TypePageCreated = "page.created"
	TypePageUpdated = "page.updated"
	TypePageDeleted = "page.deleted"
	TypeTOCUpdated  = "toc.updated"
)

const clientBuffer = 64

// Event is one message sent to every client.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type state struct {
	clients     map[chan []byte]struct{}
	lastRefresh time.Time
}

// Broker fans events out to subscribed clients. All mutable state lives in
// the run goroutine; methods hand it closures over an unbuffered channel.
type Broker struct {
	refreshMin time.Duration

	cmds    chan func(*state)
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker. At most one toc.updated event is sent per
// refreshMin.
func NewBroker(refreshMin time.Duration) *Broker {
	if refreshMin <= 0 {
		refreshMin = 2 * time.Second
	}
	b := &Broker{
		refreshMin: refreshMin,
		cmds:       make(chan func(*state)),
		stopCh:     make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	s := &state{clients: make(map[chan []byte]struct{})}
	for {
		select {
		case <-b.stopCh:
			for ch := range s.clients {
				close(ch)
			}
			return
		case fn := <-b.cmds:
			fn(s)
		}
	}
}

// do runs fn on the broker goroutine. It reports false once the broker is
// closed.
func (b *Broker) do(fn func(*state)) bool {
	if b.closed.Load() {
		return false
	}
	select {
	case b.cmds <- fn:
		return true
	case <-b.stopped:
		return false
	}
}

func (s *state) broadcast(ev Event) {
	payload, err := json.Marshal(ev.Data)
	if err != nil {
		return
	}
	msg := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", ev.Type, payload))
	for ch := range s.clients {
		select {
		case ch <- msg:
		default:
			// Slow client; drop rather than stall every other client.
		}
	}
}

// Close stops the broker and closes every client channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a client. The channel is closed on Unsubscribe or Close.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if !b.do(func(s *state) { s.clients[ch] = struct{}{} }) {
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.do(func(s *state) {
		if _, ok := s.clients[ch]; ok {
			delete(s.clients, ch)
			close(ch)
		}
	})
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	resp := make(chan int, 1)
	if !b.do(func(s *state) { resp <- len(s.clients) }) {
		return 0
	}
	return <-resp
}

// Publish sends ev to all clients.
func (b *Broker) Publish(ev Event) {
	b.do(func(s *state) { s.broadcast(ev) })
}

// PublishPageEvent announces a page change (kind is created, updated or
// deleted) followed by a throttled toc.updated.
func (b *Broker) PublishPageEvent(kind, path string) {
	b.do(func(s *state) {
		var typ string
		switch kind {
		case "created":
			typ = TypePageCreated
		case "updated":
			typ = TypePageUpdated
		case "deleted":
			typ = TypePageDeleted
		default:
			return
		}
		s.broadcast(Event{Type: typ, Data: map[string]string{"path": path}})

		if now := time.Now(); now.Sub(s.lastRefresh) >= b.refreshMin {
			s.lastRefresh = now
			s.broadcast(Event{Type: TypeTOCUpdated, Data: map[string]string{}})
		}
	})
}

// ServeHTTP streams events to one client until it disconnects.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
