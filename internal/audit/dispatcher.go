package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Dispatcher forwards events to a sink from a single worker goroutine, so
// authentication flows never wait on sink latency.
type Dispatcher struct {
	sink     Sink
	queue    chan Event
	dropFull bool

	quit     chan struct{}
	wg       sync.WaitGroup
	dropped  atomic.Uint64
	stopping atomic.Bool
	stop     sync.Once
}

// NewDispatcher starts the delivery worker. A nil sink discards events; a
// non-positive buffer is raised to one slot. Whether auditing is enabled
// at all is the builder's decision, not this package's.
func NewDispatcher(sink Sink, buffer int, dropIfFull bool) *Dispatcher {
	if sink == nil {
		sink = NoOpSink{}
	}
	if buffer <= 0 {
		buffer = 1
	}

	d := &Dispatcher{
		sink:     sink,
		queue:    make(chan Event, buffer),
		dropFull: dropIfFull,
		quit:     make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		case <-d.quit:
			d.drain()
			return
		}
	}
}

// drain flushes whatever Emit enqueued before Close flipped the stopping
// flag.
func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Emit queues event for delivery. In drop mode a full queue counts a drop
// and returns immediately; otherwise Emit waits until the queue accepts
// the event, the caller's ctx ends, or the dispatcher shuts down. A wait
// cut short either way counts as a drop.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.stopping.Load() {
		return
	}

	if d.dropFull {
		select {
		case d.queue <- event:
		default:
			d.dropped.Add(1)
		}
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case d.queue <- event:
	case <-ctx.Done():
		d.dropped.Add(1)
	case <-d.quit:
		d.dropped.Add(1)
	}
}

// Close stops intake, waits for already-queued events to reach the sink,
// and returns once the worker has exited. Safe to call more than once and
// on a nil receiver.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.stop.Do(func() {
		d.stopping.Store(true)
		close(d.quit)
		d.wg.Wait()
	})
}

// Dropped reports how many events were discarded because the queue was
// full or an enqueue wait was cut short.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
