package transport

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrChannelClosed is returned by Receive once the channel is closed and
// drained.
var ErrChannelClosed = errors.New("channel closed")

// MessageChannel is a bounded queue bound to an owner context. Sends block
// while the queue is full, which backpressures the producer.
type MessageChannel[T any] struct {
	channel    chan T
	context    context.Context
	bufferSize int
	closed     atomic.Int32
}

// NewMessageChannel creates a MessageChannel that stops accepting sends and
// receives when ctx is done.
func NewMessageChannel[T any](ctx context.Context, bufferSize int) *MessageChannel[T] {
	return &MessageChannel[T]{
		channel:    make(chan T, bufferSize),
		context:    ctx,
		bufferSize: bufferSize,
	}
}

// Send enqueues message. Only the owner may send, and never after Close.
func (mc *MessageChannel[T]) Send(ctx context.Context, message T) error {
	select {
	case mc.channel <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-mc.context.Done():
		return mc.context.Err()
	}
}

// Receive dequeues the next message in send order.
func (mc *MessageChannel[T]) Receive(ctx context.Context) (T, error) {
	var zero T
	select {
	case message, ok := <-mc.channel:
		if !ok {
			return zero, ErrChannelClosed
		}
		return message, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-mc.context.Done():
		return zero, mc.context.Err()
	}
}

// TryReceive dequeues without blocking.
func (mc *MessageChannel[T]) TryReceive() (T, bool) {
	select {
	case message, ok := <-mc.channel:
		return message, ok
	default:
		var zero T
		return zero, false
	}
}

// Close closes the channel once; buffered messages remain receivable.
func (mc *MessageChannel[T]) Close() {
	if mc.closed.CompareAndSwap(0, 1) {
		close(mc.channel)
	}
}

func (mc *MessageChannel[T]) IsClosed() bool {
	return mc.closed.Load() == 1
}

func (mc *MessageChannel[T]) BufferSize() int {
	return mc.bufferSize
}

func (mc *MessageChannel[T]) QueueLength() int {
	return len(mc.channel)
}
