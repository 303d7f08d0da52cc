// Package sse streams link change events to Server-Sent Events clients.
package sse

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starford/golinks/internal/linkservice"
	"github.com/starford/golinks/internal/observe"
)

// Event types.
const (
	TypeLinkCreated  = "link.created"
	TypeLinkUpdated  = "link.updated"
	TypeLinkDeleted  = "link.deleted"
	TypeLinksChanged = "links.changed"
)

const (
	clientQueue     = 64
	inboxSize       = 256
	defaultThrottle = 2 * time.Second
)

// Event is one SSE frame: Type is the event name and Data is sent as JSON.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// LinkChange is the payload of the link.* events.
type LinkChange struct {
	ID     int64  `json:"id"`
	Source string `json:"source,omitempty"`
}

// encode renders evt in the text/event-stream wire format.
func encode(evt Event) ([]byte, error) {
	data, err := json.Marshal(evt.Data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString("event: ")
	buf.WriteString(evt.Type)
	buf.WriteString("\ndata: ")
	buf.Write(data)
	buf.WriteString("\n\n")
	return buf.Bytes(), nil
}

// subscribers maps each client to its outbound frame queue.
type subscribers map[chan []byte]struct{}

// send offers frame to every client. A full queue loses the frame.
func (s subscribers) send(frame []byte) {
	for ch := range s {
		select {
		case ch <- frame:
		default:
		}
	}
}

func (s subscribers) drop(ch chan []byte) {
	if _, ok := s[ch]; ok {
		delete(s, ch)
		close(ch)
	}
}

// Broker fans link change frames out to subscribed clients.
//
// The loop goroutine owns the subscriber set and the time of the last
// links.changed frame; exported methods hand work to it over channels.
type Broker struct {
	throttle time.Duration

	join    chan chan []byte
	leave   chan chan []byte
	frames  chan Event
	changes chan Event
	size    chan chan int

	quit   chan struct{}
	done   chan struct{}
	closed atomic.Bool
}

var _ observe.Hook = (*Broker)(nil)

// NewBroker starts a broker that emits links.changed at most once per
// throttle. A non-positive throttle means two seconds.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = defaultThrottle
	}
	b := &Broker{
		throttle: throttle,
		join:     make(chan chan []byte),
		leave:    make(chan chan []byte),
		frames:   make(chan Event, inboxSize),
		changes:  make(chan Event, inboxSize),
		size:     make(chan chan int),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.done)

	subs := subscribers{}
	var lastChanged time.Time
	emit := func(evt Event) {
		if frame, err := encode(evt); err == nil {
			subs.send(frame)
		}
	}

	for {
		select {
		case <-b.quit:
			for ch := range subs {
				subs.drop(ch)
			}
			return
		case ch := <-b.join:
			subs[ch] = struct{}{}
		case ch := <-b.leave:
			subs.drop(ch)
		case evt := <-b.frames:
			emit(evt)
		case evt := <-b.changes:
			emit(evt)
			if now := time.Now(); now.Sub(lastChanged) >= b.throttle {
				lastChanged = now
				emit(Event{Type: TypeLinksChanged, Data: struct{}{}})
			}
		case reply := <-b.size:
			reply <- len(subs)
		}
	}
}

// deliver hands v to the loop. It reports false once the broker is closed.
func deliver[T any](b *Broker, ch chan T, v T) bool {
	if b.closed.Load() {
		return false
	}
	select {
	case ch <- v:
		return true
	case <-b.done:
		return false
	}
}

// Close stops the loop and closes every subscriber channel. It is safe to
// call more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.quit)
	}
	<-b.done
}

// Subscribe registers a client. The returned channel is closed by
// Unsubscribe or Close; on a closed broker it is already closed.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientQueue)
	if !deliver(b, b.join, ch) {
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	deliver(b, b.leave, ch)
}

// ClientCount returns the number of subscribed clients.
func (b *Broker) ClientCount() int {
	reply := make(chan int, 1)
	if !deliver(b, b.size, reply) {
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-b.done:
		return 0
	}
}

// Publish sends evt to every client as is.
func (b *Broker) Publish(evt Event) {
	deliver(b, b.frames, evt)
}

// PublishLinkEvent sends a link.* event followed, when the throttle allows,
// by links.changed.
func (b *Broker) PublishLinkEvent(kind string, change LinkChange) {
	deliver(b, b.changes, Event{Type: kind, Data: change})
}

var opEvents = map[string]string{
	linkservice.OpCreate: TypeLinkCreated,
	linkservice.OpUpdate: TypeLinkUpdated,
	linkservice.OpDelete: TypeLinkDeleted,
}

// Observe turns successful link writes into change events.
func (b *Broker) Observe(_ context.Context, evt observe.Event) {
	kind, ok := opEvents[evt.Op]
	if !ok || evt.Err != nil {
		return
	}
	change := LinkChange{ID: evt.ID}
	if evt.Op != linkservice.OpDelete {
		change.Source = evt.Key
	}
	b.PublishLinkEvent(kind, change)
}

// ServeHTTP streams frames to one client until it disconnects or the broker
// closes (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")
	if err := rc.Flush(); err != nil {
		h.Del("Content-Type")
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	frames := b.Subscribe()
	defer b.Unsubscribe(frames)

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
