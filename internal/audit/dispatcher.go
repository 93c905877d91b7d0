package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// maxBatch bounds how many queued events one delivery hands to a sink.
const maxBatch = 64

// Config controls dispatcher buffering.
type Config struct {
	Enabled    bool
	BufferSize int
	// DropIfFull makes Emit non-blocking; overflow is counted, not delivered.
	DropIfFull bool
	// Critical lists event types that are never dropped for a full queue,
	// even with DropIfFull. Emit waits for room until ctx is done.
	Critical []string
}

// BatchSink is a [Sink] that can take several events in one call. The
// dispatcher prefers it when the sink implements it.
type BatchSink interface {
	Sink
	EmitBatch(ctx context.Context, events []Event)
}

// Dispatcher relays events to a [Sink] on a background goroutine so the
// request path never waits on audit I/O. Events queued together are
// delivered together.
type Dispatcher struct {
	sink     Sink
	batch    BatchSink
	dropFull bool
	critical map[string]struct{}

	queue   chan Event
	stop    chan struct{}
	stopped chan struct{}
	closing atomic.Bool
	once    sync.Once

	drops dropCounter
}

// NewDispatcher starts a dispatcher. It returns nil when cfg is disabled;
// every method is safe on a nil *Dispatcher.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		sink:     sink,
		dropFull: cfg.DropIfFull,
		critical: make(map[string]struct{}, len(cfg.Critical)),
		queue:    make(chan Event, cfg.BufferSize),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	d.batch, _ = sink.(BatchSink)
	for _, t := range cfg.Critical {
		d.critical[t] = struct{}{}
	}
	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.stopped)
	buf := make([]Event, 0, maxBatch)
	for {
		select {
		case ev := <-d.queue:
			buf = d.collect(append(buf[:0], ev))
			d.deliver(buf)
		case <-d.stop:
			for {
				buf = d.collect(buf[:0])
				if len(buf) == 0 {
					return
				}
				d.deliver(buf)
			}
		}
	}
}

// collect appends whatever is already queued, up to the batch capacity.
func (d *Dispatcher) collect(buf []Event) []Event {
	for len(buf) < cap(buf) {
		select {
		case ev := <-d.queue:
			buf = append(buf, ev)
		default:
			return buf
		}
	}
	return buf
}

func (d *Dispatcher) deliver(events []Event) {
	ctx := context.Background()
	if d.batch != nil {
		d.batch.EmitBatch(ctx, events)
		return
	}
	for _, ev := range events {
		d.sink.Emit(ctx, ev)
	}
}

// Emit queues event. With DropIfFull a non-critical event never blocks;
// otherwise Emit waits for room until ctx is done or the dispatcher closes.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closing.Load() {
		return
	}

	if _, critical := d.critical[event.Type]; d.dropFull && !critical {
		select {
		case d.queue <- event:
		default:
			d.drops.add(event.Type)
		}
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case d.queue <- event:
	case <-ctx.Done():
		d.drops.add(event.Type)
	case <-d.stop:
	}
}

// Close stops accepting events, delivers what is queued, and waits for the
// worker to exit. It is idempotent.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() {
		d.closing.Store(true)
		close(d.stop)
	})
	<-d.stopped
}

// Dropped is the number of events discarded because the queue was full.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.drops.total.Load()
}

// DroppedByType breaks [Dispatcher.Dropped] down by event type.
func (d *Dispatcher) DroppedByType() map[string]uint64 {
	if d == nil {
		return map[string]uint64{}
	}
	return d.drops.snapshot()
}

type dropCounter struct {
	total  atomic.Uint64
	mu     sync.Mutex
	byType map[string]uint64
}

func (c *dropCounter) add(eventType string) {
	c.total.Add(1)
	c.mu.Lock()
	if c.byType == nil {
		c.byType = make(map[string]uint64)
	}
	c.byType[eventType]++
	c.mu.Unlock()
}

func (c *dropCounter) snapshot() map[string]uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]uint64, len(c.byType))
	for k, v := range c.byType {
		out[k] = v
	}
	return out
}
