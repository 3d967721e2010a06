package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ErrDispatcherClosed is returned by Dispatch after Shutdown has begun.
var ErrDispatcherClosed = errors.New("dispatcher closed")

// Handler consumes one event.
type Handler interface {
	Handle(ctx context.Context, ev Event)
}

type queuedEvent struct {
	ctx context.Context
	ev  Event
}

// Dispatcher serializes events per customer and runs different customers in
// parallel, at most maxConcurrent at once. A customer's worker goroutine is
// started on demand and exits as soon as its queue is empty.
type Dispatcher struct {
	handler Handler
	sem     *semaphore.Weighted
	logger  *slog.Logger

	mu     sync.Mutex
	queues map[int64][]queuedEvent
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(handler Handler, maxConcurrent int64, logger *slog.Logger) *Dispatcher {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Dispatcher{
		handler: handler,
		sem:     semaphore.NewWeighted(maxConcurrent),
		logger:  logger,
		queues:  make(map[int64][]queuedEvent),
	}
}

// Dispatch queues ev behind earlier events of the same customer. It never blocks on handling.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	queue, running := d.queues[ev.CustomerID]
	d.queues[ev.CustomerID] = append(queue, queuedEvent{ctx: ctx, ev: ev})
	if !running {
		d.wg.Add(1)
		go d.work(ev.CustomerID)
	}
	return nil
}

func (d *Dispatcher) work(customerID int64) {
	defer d.wg.Done()

	for {
		item, ok := d.next(customerID)
		if !ok {
			return
		}

		if err := d.sem.Acquire(item.ctx, 1); err != nil {
			d.logger.WarnContext(item.ctx, "dropping event",
				"customer_id", customerID,
				"kind", item.ev.Kind.String(),
				"error", err,
			)
			continue
		}
		d.handle(item)
		d.sem.Release(1)
	}
}

// next pops the customer's oldest event, or removes the queue when it is empty.
func (d *Dispatcher) next(customerID int64) (queuedEvent, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	queue := d.queues[customerID]
	if len(queue) == 0 {
		delete(d.queues, customerID)
		return queuedEvent{}, false
	}
	item := queue[0]
	queue[0] = queuedEvent{}
	d.queues[customerID] = queue[1:]
	return item, true
}

func (d *Dispatcher) handle(item queuedEvent) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.ErrorContext(item.ctx, "event handler panicked",
				"customer_id", item.ev.CustomerID,
				"kind", item.ev.Kind.String(),
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	d.handler.Handle(item.ctx, item.ev)
}

// Shutdown stops accepting events and waits for queued ones to finish.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
