// Package uiloop serializes work onto the single goroutine that owns window
// state.
//
// The window registry is not goroutine-safe. Background work (symbol parsing,
// file watching, scripts) hands its results to the loop with Post, and the loop
// applies them one at a time:
//
//	loop := uiloop.New(64, log)
//	go loop.Run(ctx)
//	defer loop.Close()
//
//	// From any goroutine:
//	err := loop.Do(ctx, func() error {
//	    return reg.SelectTab(1)
//	})
package uiloop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"pkt.systems/pslog"

	"github.com/dshills/winctl/internal/logging"
)

var (
	// ErrClosed is returned when posting to a closed loop.
	ErrClosed = errors.New("ui loop is closed")

	// ErrQueueFull is returned by Post when the queue has no room.
	ErrQueueFull = errors.New("ui loop queue full")
)

// DefaultQueueSize is used when New is given a non-positive size.
const DefaultQueueSize = 100

type call struct {
	fn     func() error
	result chan error
}

// Loop runs posted functions in order on one goroutine.
type Loop struct {
	queue     chan *call
	done      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once
	log       pslog.Logger

	processed atomic.Uint64
	failed    atomic.Uint64
}

// New creates a loop with the given queue size.
func New(queueSize int, log pslog.Logger) *Loop {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Loop{
		queue: make(chan *call, queueSize),
		done:  make(chan struct{}),
		log:   logging.WithComponent(log, "uiloop"),
	}
}

// Run processes posted functions until ctx is cancelled or Close is called.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			l.drain(ctx.Err())
			return
		case <-l.done:
			l.drain(ErrClosed)
			return
		case c := <-l.queue:
			l.exec(c)
		}
	}
}

// RunPending executes everything currently queued on the calling goroutine and
// returns the number of functions run. It is intended for callers that drive
// the loop themselves, such as one-shot commands and tests.
func (l *Loop) RunPending() int {
	n := 0
	for {
		select {
		case c := <-l.queue:
			l.exec(c)
			n++
		default:
			return n
		}
	}
}

func (l *Loop) exec(c *call) {
	err := l.safeCall(c.fn)
	l.processed.Add(1)
	if err != nil {
		l.failed.Add(1)
		if c.result == nil {
			l.log.Warn("posted function failed", "err", err)
		}
	}
	if c.result != nil {
		c.result <- err
		close(c.result)
	}
}

func (l *Loop) safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case error:
				err = v
			default:
				err = fmt.Errorf("panic: %v", v)
			}
		}
	}()
	return fn()
}

func (l *Loop) drain(err error) {
	for {
		select {
		case c := <-l.queue:
			if c.result != nil {
				c.result <- err
				close(c.result)
			}
		default:
			return
		}
	}
}

// Post queues fn without waiting. It never blocks; a full queue returns
// ErrQueueFull.
func (l *Loop) Post(fn func()) error {
	if l.closed.Load() {
		return ErrClosed
	}
	c := &call{fn: func() error { fn(); return nil }}
	select {
	case <-l.done:
		return ErrClosed
	case l.queue <- c:
		return nil
	default:
		return ErrQueueFull
	}
}

// Do runs fn on the loop and waits for its result.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	if l.closed.Load() {
		return ErrClosed
	}
	c := &call{fn: fn, result: make(chan error, 1)}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrClosed
	case l.queue <- c:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err, ok := <-c.result:
		if !ok {
			return ErrClosed
		}
		return err
	}
}

// Close stops the loop. Pending Do calls fail with ErrClosed.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		close(l.done)
	})
}

// IsClosed reports whether Close has been called.
func (l *Loop) IsClosed() bool {
	return l.closed.Load()
}

// Stats returns the number of functions run and how many of them failed.
func (l *Loop) Stats() (processed, failed uint64) {
	return l.processed.Load(), l.failed.Load()
}
