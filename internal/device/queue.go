package device

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ChrisGora/semaphore"
)

type queueOp struct {
	cmds  []*CommandBuffer
	write func()
	done  chan struct{}
	frame bool
}

// Queue executes submissions in order on a dedicated goroutine. Submit
// returns as soon as the work is queued.
type Queue struct {
	dev      *Device
	ops      chan queueOp
	inFlight semaphore.Semaphore

	closeOnce sync.Once
	stopped   chan struct{}
	mu        sync.RWMutex
	closed    bool

	submitted atomic.Uint64
	completed atomic.Uint64
}

func newQueue(d *Device, framesInFlight int) *Queue {
	q := &Queue{
		dev:      d,
		ops:      make(chan queueOp, 64),
		inFlight: semaphore.Init(framesInFlight, framesInFlight),
		stopped:  make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.stopped)
	for op := range q.ops {
		q.execute(op)
		if op.frame {
			q.completed.Add(1)
			q.inFlight.Post()
		}
		if op.done != nil {
			close(op.done)
		}
	}
}

func (q *Queue) execute(op queueOp) {
	defer func() {
		if r := recover(); r != nil {
			q.dev.markLost(fmt.Errorf("queue: %v", r))
		}
	}()
	if op.write != nil {
		op.write()
	}
	if len(op.cmds) == 0 || q.dev.Err() != nil {
		return
	}
	ctx := context.Background()
	for _, cb := range op.cmds {
		for _, cmd := range cb.cmds {
			if err := cmd.execute(ctx, q.dev.workers); err != nil {
				q.dev.markLost(fmt.Errorf("%s: %w", cb.label, err))
				return
			}
		}
	}
}

func (q *Queue) push(op queueOp) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrDestroyed
	}
	q.ops <- op
	return nil
}

// Submit queues command buffers for execution. It blocks only while the
// device already holds MaxFramesInFlight unfinished submissions.
func (q *Queue) Submit(cmds ...*CommandBuffer) error {
	if err := q.dev.Err(); err != nil {
		return err
	}
	q.inFlight.Wait()
	if err := q.push(queueOp{cmds: cmds, frame: true}); err != nil {
		q.inFlight.Post()
		return err
	}
	q.submitted.Add(1)
	return nil
}

// Submitted reports how many submissions have been accepted.
func (q *Queue) Submitted() uint64 { return q.submitted.Load() }

// Completed reports how many submissions have finished executing.
func (q *Queue) Completed() uint64 { return q.completed.Load() }

// WriteBuffer schedules data to be copied into buf at element offset. The
// write lands after every earlier submission and before every later one.
// data is copied before WriteBuffer returns.
func WriteBuffer[T Scalar](q *Queue, buf *Buffer[T], offset int, data []T) error {
	if err := q.dev.Err(); err != nil {
		return err
	}
	if offset < 0 || offset+len(data) > buf.Len() {
		return fmt.Errorf("%w: write of %d elements at %d into %q (%d)", ErrValidation, len(data), offset, buf.label, buf.Len())
	}
	staged := append([]T(nil), data...)
	return q.push(queueOp{write: func() { copy(buf.data[offset:], staged) }})
}

// OnSubmittedWorkDone returns a channel closed once all work queued so far
// has executed.
func (q *Queue) OnSubmittedWorkDone() <-chan struct{} {
	done := make(chan struct{})
	if err := q.push(queueOp{done: done}); err != nil {
		close(done)
	}
	return done
}

// WaitIdle blocks until queued work has executed or ctx ends.
func (q *Queue) WaitIdle(ctx context.Context) error {
	select {
	case <-q.OnSubmittedWorkDone():
		return q.dev.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReadResult carries the outcome of ReadBufferAsync.
type ReadResult[T Scalar] struct {
	Data []T
	Err  error
}

// ReadBufferAsync schedules a copy of buf back to the host after all earlier
// work. The returned channel receives exactly one result once the copy has
// executed; the caller never blocks on the queue.
func ReadBufferAsync[T Scalar](q *Queue, buf *Buffer[T]) <-chan ReadResult[T] {
	res := make(chan ReadResult[T], 1)
	var out []T
	done := make(chan struct{})
	err := q.push(queueOp{
		write: func() { out = append([]T(nil), buf.data...) },
		done:  done,
	})
	if err != nil {
		res <- ReadResult[T]{Err: err}
		return res
	}
	go func() {
		<-done
		if err := q.dev.Err(); err != nil {
			res <- ReadResult[T]{Err: err}
			return
		}
		res <- ReadResult[T]{Data: out}
	}()
	return res
}

// ReadBuffer copies buf back to the host after all earlier work.
func ReadBuffer[T Scalar](ctx context.Context, q *Queue, buf *Buffer[T]) ([]T, error) {
	select {
	case r := <-ReadBufferAsync(q, buf):
		return r.Data, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *Queue) close() {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.ops)
		q.mu.Unlock()
		<-q.stopped
	})
}
