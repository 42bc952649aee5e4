package credkit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// auditDispatcher moves credential events from the Manager's hot paths to the
// configured sink on a dedicated goroutine. Backpressure handling is
// outcome-aware: successful outcomes are droppable bookkeeping, but when a
// failure event cannot be queued the dispatcher parks it in a one-slot
// overflow so the most recent failed hash, verification, or token rejection
// still reaches the sink once the buffer frees up.
type auditDispatcher struct {
	cfg  AuditConfig
	sink AuditSink
	ch   chan AuditEvent
	done chan struct{}
	wg   sync.WaitGroup

	dropped     [eventKindCount]atomic.Uint64
	lastFailure atomic.Pointer[AuditEvent]
	closed      atomic.Bool
	closeOnce   sync.Once
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &auditDispatcher{
		cfg:  cfg,
		sink: sink,
		ch:   make(chan AuditEvent, cfg.BufferSize),
		done: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *auditDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.ch:
			d.deliver(event)
		case <-d.done:
			for {
				select {
				case event := <-d.ch:
					d.deliver(event)
				default:
					d.flushRetainedFailure()
					return
				}
			}
		}
	}
}

func (d *auditDispatcher) deliver(event AuditEvent) {
	d.sink.Emit(context.Background(), event)
	d.flushRetainedFailure()
}

func (d *auditDispatcher) flushRetainedFailure() {
	if event := d.lastFailure.Swap(nil); event != nil {
		d.sink.Emit(context.Background(), *event)
	}
}

// Emit queues event for asynchronous delivery. The dispatcher stamps missing
// timestamps and bounds the error string before the event leaves the library.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Error = boundError(event.Error)

	if d.cfg.DropIfFull {
		select {
		case d.ch <- event:
		case <-d.done:
		default:
			d.overflow(event)
		}
		return
	}

	select {
	case d.ch <- event:
	case <-ctx.Done():
		d.markDropped(event.EventType)
	case <-d.done:
	}
}

// overflow handles an event that found the buffer full. Successes are counted
// and discarded. A failure displaces whatever older failure occupies the
// retention slot; only the displaced event counts as dropped.
func (d *auditDispatcher) overflow(event AuditEvent) {
	if event.Success {
		d.markDropped(event.EventType)
		return
	}
	if displaced := d.lastFailure.Swap(&event); displaced != nil {
		d.markDropped(displaced.EventType)
	}
}

func (d *auditDispatcher) markDropped(eventType string) {
	d.dropped[kindOf(eventType)].Add(1)
}

// Close stops intake, drains buffered events through the sink, and waits for
// the delivery goroutine to exit.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped returns the total number of events lost across all event types.
func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	var total uint64
	for i := range d.dropped {
		total += d.dropped[i].Load()
	}
	return total
}

// DropCounts breaks the drop total down by credential event type.
func (d *auditDispatcher) DropCounts() map[string]uint64 {
	counts := make(map[string]uint64, eventKindCount)
	if d == nil {
		return counts
	}
	for i := range d.dropped {
		if n := d.dropped[i].Load(); n > 0 {
			counts[eventKind(i).String()] = n
		}
	}
	return counts
}
