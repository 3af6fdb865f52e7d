package watcher

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Batch is every change seen during one burst of activity.
// Events holds one entry per path, with the operations on that path
// combined, sorted by path.
type Batch struct {
	Events []Event
}

// Paths returns the changed paths in order.
func (b Batch) Paths() []string {
	paths := make([]string, len(b.Events))
	for i, ev := range b.Events {
		paths[i] = ev.Path
	}
	return paths
}

// Batcher groups the events of a Watcher into batches.
// A batch is delivered once no event has arrived for the delay, so a
// save that touches several fixture files triggers a single rerun.
type Batcher struct {
	inner Watcher
	delay time.Duration

	batches chan Batch
	errors  chan error
	flush   chan struct{}
	pending atomic.Int64

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewBatcher wraps inner. A non-positive delay uses the default.
func NewBatcher(inner Watcher, delay time.Duration, bufSize int) *Batcher {
	def := DefaultConfig()
	if delay <= 0 {
		delay = def.DebounceDelay
	}
	if bufSize <= 0 {
		bufSize = def.BufferSize
	}

	b := &Batcher{
		inner:   inner,
		delay:   delay,
		batches: make(chan Batch, bufSize),
		errors:  make(chan error, bufSize),
		flush:   make(chan struct{}),
		done:    make(chan struct{}),
	}

	b.wg.Add(1)
	go b.loop()

	return b
}

// New creates a batching fsnotify watcher from options.
func New(opts ...Option) (*Batcher, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	inner, err := NewFSNotifyWatcher(opts...)
	if err != nil {
		return nil, err
	}
	return NewBatcher(inner, config.DebounceDelay, config.BufferSize), nil
}

// Watch starts watching a path.
func (b *Batcher) Watch(path string) error {
	return b.inner.Watch(path)
}

// Batches returns the batch channel.
// The channel is closed when the batcher is closed.
func (b *Batcher) Batches() <-chan Batch {
	return b.batches
}

// Errors returns the error channel.
// The channel is closed when the batcher is closed.
func (b *Batcher) Errors() <-chan error {
	return b.errors
}

// Pending returns the number of paths waiting in the current batch.
func (b *Batcher) Pending() int {
	return int(b.pending.Load())
}

// Flush delivers the current batch without waiting for the delay.
// It does nothing when no events are pending.
func (b *Batcher) Flush() {
	select {
	case b.flush <- struct{}{}:
	case <-b.done:
	}
}

// Close stops the batcher and the watcher it wraps.
// Pending events are discarded.
func (b *Batcher) Close() error {
	b.closeOnce.Do(func() { close(b.done) })
	b.wg.Wait()
	return b.inner.Close()
}

func (b *Batcher) loop() {
	defer b.wg.Done()
	defer close(b.errors)
	defer close(b.batches)

	pending := make(map[string]Event)
	timer := time.NewTimer(b.delay)
	timer.Stop()
	defer timer.Stop()
	var fire <-chan time.Time
	events, errs := b.inner.Events(), b.inner.Errors()

	emit := func() bool {
		fire = nil
		if len(pending) == 0 {
			return true
		}
		batch := newBatch(pending)
		pending = make(map[string]Event)
		b.pending.Store(0)
		select {
		case b.batches <- batch:
			return true
		case <-b.done:
			return false
		}
	}

	for {
		select {
		case <-b.done:
			return

		case ev, ok := <-events:
			if !ok {
				emit()
				return
			}
			if prev, seen := pending[ev.Path]; seen {
				ev.Op |= prev.Op
			}
			pending[ev.Path] = ev
			b.pending.Store(int64(len(pending)))
			timer.Reset(b.delay)
			fire = timer.C

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			select {
			case b.errors <- err:
			default:
			}

		case <-fire:
			if !emit() {
				return
			}

		case <-b.flush:
			timer.Stop()
			if !emit() {
				return
			}
		}
	}
}

func newBatch(pending map[string]Event) Batch {
	events := make([]Event, 0, len(pending))
	for _, ev := range pending {
		events = append(events, ev)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Path < events[j].Path
	})
	return Batch{Events: events}
}
