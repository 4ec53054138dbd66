// Package bus is a small in-process publish/subscribe bus with retained
// messages, MQTT-style wildcards and request/reply.
package bus

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Wildcard tokens accepted in subscription topics.
const (
	SingleLevel = "+"
	MultiLevel  = "#"
)

// -----------------------------------------------------------------------------
// Topics
// -----------------------------------------------------------------------------

// Topic is a sequence of tokens, e.g. Topic{"sampler", "readings"}.
type Topic []string

// T builds a topic from tokens.
func T(tokens ...string) Topic { return Topic(tokens) }

func (t Topic) String() string { return strings.Join(t, "/") }

// Matches reports whether a concrete topic t matches pattern p.
func (t Topic) Matches(p Topic) bool {
	for i, tok := range p {
		if tok == MultiLevel {
			return true
		}
		if i >= len(t) {
			return false
		}
		if tok != SingleLevel && tok != t[i] {
			return false
		}
	}
	return len(t) == len(p)
}

// -----------------------------------------------------------------------------
// Message
// -----------------------------------------------------------------------------

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
	ReplyTo  Topic
}

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection // owning connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type Bus struct {
	mu       sync.RWMutex
	subs     []*Subscription
	retained map[string]*Message
	qLen     int
	seq      atomic.Uint64
}

// NewBus creates a new bus with the given subscription queue length.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8 // safe default
	}
	return &Bus{
		retained: make(map[string]*Message),
		qLen:     queueLen,
	}
}

// NewMessage builds a message; it is not published.
func (b *Bus) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// Publish delivers a message to all matching subscribers. A retained
// message with a nil payload clears the retained value for its topic.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if msg.Retained {
		key := msg.Topic.String()
		if msg.Payload == nil {
			delete(b.retained, key)
		} else {
			b.retained[key] = msg
		}
	}

	for _, sub := range b.subs {
		if msg.Topic.Matches(sub.topic) {
			deliver(sub.ch, msg)
		}
	}
}

// deliver never blocks; when the queue is full the oldest message is dropped.
func deliver(ch chan *Message, msg *Message) {
	for {
		select {
		case ch <- msg:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (b *Bus) addSubscription(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, sub)
	for _, m := range b.retained {
		if m.Topic.Matches(sub.topic) {
			deliver(sub.ch, m)
		}
	}
}

// removeSubscription reports whether sub was still registered.
func (b *Bus) removeSubscription(sub *Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(sub.ch)
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

type Connection struct {
	bus  *Bus
	subs []*Subscription
	mu   sync.Mutex
	id   string
}

// NewConnection creates a new connection bound to this bus.
func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{bus: b, id: id}
}

func (c *Connection) ID() string { return c.id }

func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return c.bus.NewMessage(topic, payload, retained)
}

// Publish sends a message via the bus.
func (c *Connection) Publish(msg *Message) { c.bus.Publish(msg) }

// Subscribe registers a subscription owned by this connection. Retained
// messages matching topic are queued immediately.
func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	c.bus.addSubscription(sub)
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.bus.removeSubscription(sub)
	c.mu.Lock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
}

// Disconnect closes all subscriptions and clears them.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()
	for _, sub := range subs {
		c.bus.removeSubscription(sub)
	}
}

// -----------------------------------------------------------------------------
// Request / reply
// -----------------------------------------------------------------------------

// Request assigns a private reply topic to msg, subscribes to it and
// publishes msg. The caller owns the returned subscription.
func (c *Connection) Request(msg *Message) *Subscription {
	n := c.bus.seq.Add(1)
	msg.ReplyTo = Topic{"_reply", c.id, strconv.FormatUint(n, 10)}
	sub := c.Subscribe(msg.ReplyTo)
	c.Publish(msg)
	return sub
}

// RequestWait publishes msg and blocks for the first reply or ctx expiry.
func (c *Connection) RequestWait(ctx context.Context, msg *Message) (*Message, error) {
	sub := c.Request(msg)
	defer c.Unsubscribe(sub)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case rep, ok := <-sub.Channel():
		if !ok {
			return nil, context.Canceled
		}
		return rep, nil
	}
}

// Reply answers req on its ReplyTo topic. Requests without one are ignored.
func (c *Connection) Reply(req *Message, payload any, retained bool) {
	if req == nil || len(req.ReplyTo) == 0 {
		return
	}
	c.Publish(&Message{Topic: req.ReplyTo, Payload: payload, Retained: retained})
}
