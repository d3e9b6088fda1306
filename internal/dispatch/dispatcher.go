// Package dispatch delivers feed events to triggers. Events from one
// device are applied in arrival order on a dedicated goroutine; distinct
// devices run concurrently. Expression failures are contained per
// invocation by the trigger layer, so a dispatch goroutine never dies to a
// user snippet.
package dispatch

import (
	"context"
	"sync"

	"github.com/vk/beatgridgo/internal/catalog"
	"github.com/vk/beatgridgo/internal/ctxlog"
	"github.com/vk/beatgridgo/internal/event"
	"github.com/vk/beatgridgo/internal/state"
	"github.com/vk/beatgridgo/internal/trigger"
)

// queueDepth bounds each device's event queue. Beats arrive a few times a
// second per device; a full queue means expressions are persistently slower
// than the network, and dropping the oldest pending work is the standard
// behavior for status streams.
const queueDepth = 64

// Dispatcher fans events out to the triggers that match their kind.
type Dispatcher struct {
	cat      *catalog.Catalog
	triggers []*trigger.Trigger
	globals  *state.Bag

	mu     sync.Mutex
	queues map[int]chan event.Event
	closed bool
	wg     sync.WaitGroup
}

// New creates a dispatcher for the given triggers.
func New(cat *catalog.Catalog, triggers []*trigger.Trigger, globals *state.Bag) *Dispatcher {
	return &Dispatcher{
		cat:      cat,
		triggers: triggers,
		globals:  globals,
		queues:   make(map[int]chan event.Event),
	}
}

// Dispatch routes an event to its device's queue, starting the device's
// delivery goroutine on first sight. When the queue is full the oldest
// pending event is dropped to make room, keeping delivery current.
//
// The whole enqueue runs under the mutex: Close closes the queue channels
// under the same mutex, so the closed check and the send must be atomic
// with respect to it or a feed handler racing a shutdown sends on a closed
// channel. Every channel operation here is non-blocking, so the lock is
// never held across a wait.
func (d *Dispatcher) Dispatch(ctx context.Context, evt event.Event) {
	device := evt.DeviceNumber()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	queue, ok := d.queues[device]
	if !ok {
		queue = make(chan event.Event, queueDepth)
		d.queues[device] = queue
		d.wg.Add(1)
		go d.deliver(ctx, device, queue)
	}

	for {
		select {
		case queue <- evt:
			return
		default:
		}
		select {
		case dropped := <-queue:
			ctxlog.FromContext(ctx).Warn("Device queue full; dropping oldest pending event.",
				"device", device, "kind", dropped.Kind)
		default:
		}
	}
}

// deliver is the per-device delivery loop.
func (d *Dispatcher) deliver(ctx context.Context, device int, queue chan event.Event) {
	defer d.wg.Done()
	logger := ctxlog.FromContext(ctx).With("device", device)
	logger.Debug("Device delivery goroutine started.")

	for evt := range queue {
		for _, t := range d.triggers {
			if !t.Matches(d.cat, evt.Kind) {
				continue
			}
			t.HandleEvent(ctx, evt, d.globals)
		}
	}

	logger.Debug("Device delivery goroutine finished.")
}

// Close stops accepting events, drains the per-device queues, and waits
// for every delivery goroutine to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, queue := range d.queues {
		close(queue)
	}
	d.mu.Unlock()

	d.wg.Wait()
}
