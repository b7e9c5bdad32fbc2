// Package queue provides the fixed capacity single-producer/single-consumer
// queues bridging the transport goroutine and the application.
package queue

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"
	ble "github.com/rigado/ble-spi"
)

// DefaultCapacity is the number of entries of each direction queue.
const DefaultCapacity = 16

// Queue is a bounded FIFO. It is used through its Producer and Consumer
// halves, obtained once with Split.
type Queue[T any] struct {
	ch    chan T
	split atomic.Bool
}

// New returns a queue holding at most capacity entries.
func New[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue[T]{ch: make(chan T, capacity)}
}

// Split hands out the two halves of the queue. It fails on any call after
// the first so that no second writer or reader can attach.
func (q *Queue[T]) Split() (*Producer[T], *Consumer[T], error) {
	if !q.split.CompareAndSwap(false, true) {
		return nil, nil, ble.ErrQueueSplit
	}
	return &Producer[T]{ch: q.ch}, &Consumer[T]{ch: q.ch}, nil
}

// Cap ...
func (q *Queue[T]) Cap() int {
	return cap(q.ch)
}

// Producer is the writing half of a Queue.
type Producer[T any] struct {
	ch chan<- T
}

// Enqueue adds v without blocking. It returns ble.ErrQueueFull when the
// queue is at capacity; nothing is overwritten.
func (p *Producer[T]) Enqueue(v T) error {
	select {
	case p.ch <- v:
		return nil
	default:
		return errors.Wrapf(ble.ErrQueueFull, "capacity %v", cap(p.ch))
	}
}

// Len ...
func (p *Producer[T]) Len() int {
	return len(p.ch)
}

// Consumer is the reading half of a Queue.
type Consumer[T any] struct {
	ch <-chan T
}

// Dequeue removes the oldest entry without blocking. ok is false when the
// queue is empty.
func (c *Consumer[T]) Dequeue() (v T, ok bool) {
	select {
	case v = <-c.ch:
		return v, true
	default:
		return v, false
	}
}

// Receive waits for the oldest entry until ctx is done. A deadline
// expiring is reported as ble.ErrTimeout.
func (c *Consumer[T]) Receive(ctx context.Context) (T, error) {
	var zero T
	select {
	case v := <-c.ch:
		return v, nil
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return zero, errors.Wrap(ble.ErrTimeout, "receive")
		}
		return zero, ctx.Err()
	}
}

// Len ...
func (c *Consumer[T]) Len() int {
	return len(c.ch)
}
