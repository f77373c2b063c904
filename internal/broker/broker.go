package broker

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// Kind identifies one of the four handle types a Broker hands out.
type Kind int

const (
	KindConnection Kind = iota
	KindSession
	KindConsumer
	KindProducer
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindSession:
		return "session"
	case KindConsumer:
		return "consumer"
	case KindProducer:
		return "producer"
	default:
		return "unknown"
	}
}

// Broker is an in-memory message broker. It keeps one FIFO queue per queue name and counts the
// handles that are currently open so tests can check that nothing leaked.
//
// Each handle type has its own way of being released:
//
//	Connection.Close() error
//	Session.Close() error
//	Consumer.Stop()
//	Producer.Shutdown(ctx) error
type Broker struct {
	name string
	log  zerolog.Logger

	mu         sync.Mutex
	queues     map[string][]Message
	open       map[Kind]int
	failClose  map[Kind]bool
	failCreate map[Kind]bool
	closeErrs  []error
	closeOrder []string
}

func New(name string, logger zerolog.Logger) *Broker {
	return &Broker{
		name:       name,
		log:        logger.With().Str("broker", name).Logger(),
		queues:     map[string][]Message{},
		open:       map[Kind]int{},
		failClose:  map[Kind]bool{},
		failCreate: map[Kind]bool{},
	}
}

// FailClose makes every later release of the given kind report ErrInjected. The underlying
// handle is still released. Consumers, whose Stop cannot return an error, panic instead.
func (b *Broker) FailClose(kind Kind, fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failClose[kind] = fail
}

// FailCreate makes every later creation of the given kind fail with ErrInjected.
func (b *Broker) FailCreate(kind Kind, fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failCreate[kind] = fail
}

// Open returns the number of handles of the given kind that are currently open.
func (b *Broker) Open(kind Kind) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open[kind]
}

// OpenTotal returns the number of handles of any kind that are currently open.
func (b *Broker) OpenTotal() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.open {
		total += n
	}
	return total
}

// CloseErrors returns every error a release reported, in the order they happened.
func (b *Broker) CloseErrors() []error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]error(nil), b.closeErrs...)
}

// CloseOrder returns the names of released handles in the order they were released.
func (b *Broker) CloseOrder() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.closeOrder...)
}

// Dial opens a new connection.
func (b *Broker) Dial(name string) (*Connection, error) {
	if err := b.acquire(KindConnection, name); err != nil {
		return nil, err
	}
	return &Connection{handle: handle{broker: b, kind: KindConnection, name: name}}, nil
}

// Depth returns the number of messages waiting on a queue.
func (b *Broker) Depth(queue string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queues[queue])
}

func (b *Broker) acquire(kind Kind, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failCreate[kind] {
		return &Error{Op: "create", Kind: kind, Name: name, SourceError: ErrInjected}
	}
	b.open[kind]++
	b.log.Debug().Stringer("kind", kind).Str("name", name).Msg("opened")
	return nil
}

// release marks a handle closed. dependents is the number of handles created from it that are
// still open.
func (b *Broker) release(h *handle, dependents int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if h.closed {
		return &Error{Op: "close", Kind: h.kind, Name: h.name, SourceError: ErrClosed}
	}
	h.closed = true
	b.open[h.kind]--
	b.closeOrder = append(b.closeOrder, h.name)

	var err error
	switch {
	case b.failClose[h.kind]:
		err = &Error{Op: "close", Kind: h.kind, Name: h.name, SourceError: ErrInjected}
	case dependents > 0:
		err = &Error{Op: "close", Kind: h.kind, Name: h.name, SourceError: ErrDependentsOpen}
	}
	if err != nil {
		b.closeErrs = append(b.closeErrs, err)
		b.log.Debug().Err(err).Msg("close failed")
		return err
	}
	b.log.Debug().Stringer("kind", h.kind).Str("name", h.name).Msg("closed")
	return nil
}

func (b *Broker) push(queue string, msg Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queues[queue] = append(b.queues[queue], msg)
}

func (b *Broker) pop(queue string) (Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	q := b.queues[queue]
	if len(q) == 0 {
		return Message{}, false
	}
	msg := q[0]
	b.queues[queue] = q[1:]
	return msg, true
}

type handle struct {
	broker *Broker
	kind   Kind
	name   string
	closed bool
}

func (h *handle) isClosed() bool {
	h.broker.mu.Lock()
	defer h.broker.mu.Unlock()
	return h.closed
}

// Connection is a connection to the broker. Sessions are created from it.
type Connection struct {
	handle
	sessions []*Session
}

// CreateSession opens a session on the connection.
func (c *Connection) CreateSession() (*Session, error) {
	if c.isClosed() {
		return nil, &Error{Op: "create session on", Kind: KindConnection, Name: c.name, SourceError: ErrClosed}
	}
	name := c.name + "/session"
	if err := c.broker.acquire(KindSession, name); err != nil {
		return nil, err
	}
	s := &Session{handle: handle{broker: c.broker, kind: KindSession, name: name}}
	c.sessions = append(c.sessions, s)
	return s, nil
}

// Close closes the connection. Closing it while sessions are still open reports
// ErrDependentsOpen, although the connection is closed regardless.
func (c *Connection) Close() error {
	return c.broker.release(&c.handle, countOpen(c.sessions))
}

// Session produces consumers and producers bound to queues.
type Session struct {
	handle
	consumers []*Consumer
	producers []*Producer
}

// CreateConsumer opens a consumer reading from queue.
func (s *Session) CreateConsumer(queue string) (*Consumer, error) {
	if s.isClosed() {
		return nil, &Error{Op: "create consumer on", Kind: KindSession, Name: s.name, SourceError: ErrClosed}
	}
	name := s.name + "/consumer:" + queue
	if err := s.broker.acquire(KindConsumer, name); err != nil {
		return nil, err
	}
	c := &Consumer{handle: handle{broker: s.broker, kind: KindConsumer, name: name}, queue: queue}
	s.consumers = append(s.consumers, c)
	return c, nil
}

// CreateProducer opens a producer writing to queue.
func (s *Session) CreateProducer(queue string) (*Producer, error) {
	if s.isClosed() {
		return nil, &Error{Op: "create producer on", Kind: KindSession, Name: s.name, SourceError: ErrClosed}
	}
	name := s.name + "/producer:" + queue
	if err := s.broker.acquire(KindProducer, name); err != nil {
		return nil, err
	}
	p := &Producer{handle: handle{broker: s.broker, kind: KindProducer, name: name}, queue: queue}
	s.producers = append(s.producers, p)
	return p, nil
}

// Close closes the session. Closing it while consumers or producers are still open reports
// ErrDependentsOpen, although the session is closed regardless.
func (s *Session) Close() error {
	return s.broker.release(&s.handle, countOpen(s.consumers)+countOpen(s.producers))
}

// Consumer receives messages from a queue.
type Consumer struct {
	handle
	queue string
}

// Receive takes the next message off the queue without waiting. It returns ErrNoMessage when the
// queue is empty.
func (c *Consumer) Receive(ctx context.Context) (Message, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, err
	}
	if c.isClosed() {
		return Message{}, &Error{Op: "receive on", Kind: KindConsumer, Name: c.name, SourceError: ErrClosed}
	}
	msg, ok := c.broker.pop(c.queue)
	if !ok {
		return Message{}, ErrNoMessage
	}
	return msg, nil
}

// Stop stops the consumer. Stopping an already stopped consumer does nothing. Stop has no error
// result; an injected failure surfaces as a panic.
func (c *Consumer) Stop() {
	err := c.broker.release(&c.handle, 0)
	if err != nil && !errors.Is(err, ErrClosed) {
		panic(err)
	}
}

// Producer sends messages to a queue.
type Producer struct {
	handle
	queue string
}

// Send appends msg to the producer's queue.
func (p *Producer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.isClosed() {
		return &Error{Op: "send on", Kind: KindProducer, Name: p.name, SourceError: ErrClosed}
	}
	p.broker.push(p.queue, msg)
	return nil
}

// Shutdown flushes and closes the producer. It fails with the context's error if ctx is already
// done, leaving the producer open.
func (p *Producer) Shutdown(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.broker.release(&p.handle, 0)
}

type closedChecker interface {
	isClosed() bool
}

func countOpen[T closedChecker](handles []T) int {
	open := 0
	for _, h := range handles {
		if !h.isClosed() {
			open++
		}
	}
	return open
}
