// bus.go
package bus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// -----------------------------------------------------------------------------
// Tokens + Topics
// -----------------------------------------------------------------------------

// Topic is a sequence of tokens. A token is any comparable value; in practice
// strings and small ints. The wildcard tokens "+" (one level) and "#" (this
// level and below) are only meaningful in subscriptions, never in publishes.
type Topic []any

// Wildcard tokens.
const (
	WildOne  = "+"
	WildRest = "#"
)

// T builds a topic from tokens, validating that each is comparable.
// Non-comparable tokens (slices, maps, funcs) panic early here rather than
// later inside the trie.
func T(tokens ...any) Topic {
	for _, tok := range tokens {
		mustComparable(tok)
	}
	return Topic(tokens)
}

// Append returns a new topic with extra tokens added. The receiver is not
// modified.
func (t Topic) Append(tokens ...any) Topic {
	for _, tok := range tokens {
		mustComparable(tok)
	}
	out := make(Topic, 0, len(t)+len(tokens))
	out = append(out, t...)
	out = append(out, tokens...)
	return out
}

// Equal reports whether two topics have identical tokens.
func (t Topic) Equal(o Topic) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		if t[i] != o[i] {
			return false
		}
	}
	return true
}

func mustComparable(tok any) {
	// Comparing a value to itself panics iff its dynamic type is not
	// comparable, which is exactly the property map keys need.
	func() {
		defer func() {
			if recover() != nil {
				panic("bus: topic token is not comparable")
			}
		}()
		_ = tok == tok
	}()
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
	bus   *Bus
	conn  *Connection // owning connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// -----------------------------------------------------------------------------
// Trie node
// -----------------------------------------------------------------------------

type node struct {
	children map[any]*node
	subs     []*Subscription
	retained *Message
}

func (n *node) child(tok any) (*node, bool) {
	if n.children == nil {
		return nil, false
	}
	c, ok := n.children[tok]
	return c, ok
}

func (n *node) ensureChild(tok any) *node {
	if n.children == nil {
		n.children = make(map[any]*node)
	}
	c, ok := n.children[tok]
	if !ok {
		c = &node{}
		n.children[tok] = c
	}
	return c
}

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type Bus struct {
	mu   sync.RWMutex
	root *node
	qLen int
}

// NewBus creates a new bus with the given subscription queue length.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8 // safe default
	}
	return &Bus{
		root: &node{},
		qLen: queueLen,
	}
}

// NewMessage builds a message without publishing it.
func (b *Bus) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// addSubscription inserts a subscription into the trie and delivers any
// retained messages its pattern matches.
func (b *Bus) addSubscription(topic Topic, sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range topic {
		n = n.ensureChild(tok)
	}
	n.subs = append(n.subs, sub)

	var retained []*Message
	collectRetained(b.root, topic, &retained)
	for _, m := range retained {
		offer(sub, m)
	}
}

// collectRetained walks a pattern (which may contain wildcards) over the trie
// and gathers retained messages at every matching node.
func collectRetained(n *node, pattern Topic, out *[]*Message) {
	if len(pattern) == 0 {
		if n.retained != nil {
			*out = append(*out, n.retained)
		}
		return
	}
	switch pattern[0] {
	case WildRest:
		collectSubtree(n, out)
	case WildOne:
		for _, c := range n.children {
			collectRetained(c, pattern[1:], out)
		}
	default:
		if c, ok := n.child(pattern[0]); ok {
			collectRetained(c, pattern[1:], out)
		}
	}
}

func collectSubtree(n *node, out *[]*Message) {
	if n.retained != nil {
		*out = append(*out, n.retained)
	}
	for _, c := range n.children {
		collectSubtree(c, out)
	}
}

// Publish delivers a message to all subscribers whose pattern matches its
// topic. Publishing a retained message with a nil payload clears the
// retained slot for that topic.
func (b *Bus) Publish(msg *Message) {
	for _, tok := range msg.Topic {
		mustComparable(tok)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	deliverMatches(b.root, msg.Topic, msg)

	if !msg.Retained {
		return
	}
	if msg.Payload == nil {
		// Clear: only walk existing nodes.
		n := b.root
		path := make([]*node, 0, len(msg.Topic))
		for _, tok := range msg.Topic {
			c, ok := n.child(tok)
			if !ok {
				return
			}
			path = append(path, n)
			n = c
		}
		n.retained = nil
		prune(path, msg.Topic)
		return
	}
	n := b.root
	for _, tok := range msg.Topic {
		n = n.ensureChild(tok)
	}
	n.retained = msg
}

// deliverMatches matches concrete topic tokens against trie branches,
// following exact children plus "+" and "#" branches.
func deliverMatches(n *node, tokens Topic, msg *Message) {
	if len(tokens) == 0 {
		for _, sub := range n.subs {
			offer(sub, msg)
		}
		// "a/#" also matches "a" itself.
		if h, ok := n.child(WildRest); ok {
			for _, sub := range h.subs {
				offer(sub, msg)
			}
		}
		return
	}
	if c, ok := n.child(tokens[0]); ok {
		deliverMatches(c, tokens[1:], msg)
	}
	if p, ok := n.child(WildOne); ok {
		deliverMatches(p, tokens[1:], msg)
	}
	if h, ok := n.child(WildRest); ok {
		for _, sub := range h.subs {
			offer(sub, msg)
		}
	}
}

// offer enqueues without blocking, dropping the oldest queued message when
// the subscriber is full.
func offer(sub *Subscription, msg *Message) {
	select {
	case sub.ch <- msg:
	default:
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- msg:
		default:
		}
	}
}

// unsubscribe removes a subscription from the trie.
func (b *Bus) unsubscribe(topic Topic, sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	path := make([]*node, 0, len(topic))
	for _, tok := range topic {
		c, ok := n.child(tok)
		if !ok {
			return
		}
		path = append(path, n)
		n = c
	}

	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}
	prune(path, topic)
}

// prune removes empty nodes bottom-up along a walk path.
func prune(path []*node, topic Topic) {
	for i := len(path) - 1; i >= 0; i-- {
		parent := path[i]
		key := topic[i]
		child, ok := parent.child(key)
		if !ok {
			return
		}
		if len(child.subs) == 0 && len(child.children) == 0 && child.retained == nil {
			delete(parent.children, key)
		} else {
			return
		}
	}
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

type Connection struct {
	bus    *Bus
	subs   []*Subscription
	mu     sync.Mutex
	id     string
	reqSeq atomic.Uint32
}

// NewConnection creates a new connection bound to this bus.
func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{
		bus: b,
		id:  id,
	}
}

// NewMessage builds a message without publishing it.
func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// Publish sends a message via the bus.
func (c *Connection) Publish(msg *Message) {
	c.bus.Publish(msg)
}

// Subscribe registers a subscription owned by this connection.
func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		bus:   c.bus,
		conn:  c,
	}
	c.bus.addSubscription(topic, sub)
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscription owned by this connection.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.bus.unsubscribe(sub.topic, sub)
	c.mu.Lock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	close(sub.ch)
}

// Disconnect closes all subscriptions and clears them.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		c.bus.unsubscribe(sub.topic, sub)
		close(sub.ch)
	}
}

// -----------------------------------------------------------------------------
// Request / Reply
// -----------------------------------------------------------------------------

// ErrNoReply is returned by RequestWait when the reply channel closes early.
var ErrNoReply = errors.New("bus: no reply")

// Request stamps msg with a fresh ReplyTo topic, subscribes to it, and
// publishes the request. The caller owns the returned subscription and must
// Unsubscribe it when done.
func (c *Connection) Request(msg *Message) *Subscription {
	seq := c.reqSeq.Add(1)
	msg.ReplyTo = Topic{"$reply", c.id, int(seq)}
	sub := c.Subscribe(msg.ReplyTo)
	c.bus.Publish(msg)
	return sub
}

// RequestWait performs Request and blocks for the first reply or ctx end.
func (c *Connection) RequestWait(ctx context.Context, msg *Message) (*Message, error) {
	sub := c.Request(msg)
	defer c.Unsubscribe(sub)

	select {
	case reply, ok := <-sub.ch:
		if !ok {
			return nil, ErrNoReply
		}
		return reply, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Reply publishes a response on the request's ReplyTo topic. Requests
// without a ReplyTo are ignored.
func (c *Connection) Reply(req *Message, payload any, retained bool) {
	if len(req.ReplyTo) == 0 {
		return
	}
	c.bus.Publish(&Message{Topic: req.ReplyTo, Payload: payload, Retained: retained})
}
