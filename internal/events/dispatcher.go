package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// ErrHandlerPanic marks a handler that panicked while processing an event.
var ErrHandlerPanic = errors.New("event handler panicked")

type subscription struct {
	name    string
	handler EventHandler
}

// Dispatcher fans task lifecycle events out to named subscribers.
//
// Delivery is synchronous and follows subscription order, so a subscriber
// observes the events of one task in the order the pipeline produced them.
// Subscribers must be cheap: they run on the goroutine of the pipeline step
// that emitted the event.
type Dispatcher struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *slog.Logger
}

// NewDispatcher returns a Dispatcher with no subscribers.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{logger: logger.With("component", "task_events")}
}

// Subscribe adds handler to the delivery list. The name labels the
// handler's failures in logs and errors.
func (d *Dispatcher) Subscribe(name string, handler EventHandler) {
	d.mu.Lock()
	d.subs = append(d.subs, subscription{name: name, handler: handler})
	n := len(d.subs)
	d.mu.Unlock()

	d.logger.Debug("task event subscriber added", "subscriber", name, "subscribers", n)
}

// EmitEvent delivers event to every subscriber. A subscriber that fails or
// panics does not stop delivery to the rest; every failure is joined into
// the returned error.
func (d *Dispatcher) EmitEvent(ctx context.Context, event *TaskEvent) error {
	d.mu.RLock()
	subs := slices.Clone(d.subs)
	d.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if err := deliver(ctx, s.handler, event); err != nil {
			d.logger.Warn("task event subscriber failed",
				"subscriber", s.name,
				"event_type", event.Type,
				"task_id", event.TaskID,
				"from", event.From,
				"to", event.To,
				"error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

func deliver(ctx context.Context, h EventHandler, event *TaskEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return h.HandleEvent(ctx, event)
}

var _ EventEmitter = (*Dispatcher)(nil)
