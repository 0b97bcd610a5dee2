package imagevideo

import (
	"strconv"
	"sync"
)

const (
	defaultWriteQueue = 8
)

type frameWriteCommand struct {
	index int
	frame OutputFrame
}

// FrameWriteIterator walks the source frame indices of a WindowPlan and
// hands rescaled frames to a FrameSink. Frames are written by a single
// background goroutine in the order they are set, so reading and rescaling
// the next frame overlaps encoding of the previous one.
type FrameWriteIterator struct {
	sink FrameSink
	plan WindowPlan

	index int // source frame index of the current position

	wg           sync.WaitGroup
	writeLock    sync.RWMutex
	writeQueue   chan frameWriteCommand
	currentError error
	written      int
}

func NewFrameWriteIterator(sink FrameSink, plan WindowPlan, queueSize int) *FrameWriteIterator {
	if queueSize <= 0 {
		queueSize = defaultWriteQueue
	}
	iterator := &FrameWriteIterator{
		sink:       sink,
		plan:       plan,
		index:      -plan.Step, // so first Next() goes to 0
		writeQueue: make(chan frameWriteCommand, queueSize),
	}

	iterator.wg.Go(func() {
		for cmd := range iterator.writeQueue {
			if iterator.Error() != nil {
				continue // drain so SetFrame never blocks
			}
			if err := iterator.sink.WriteFrame(cmd.frame); err != nil {
				iterator.writeLock.Lock()
				iterator.currentError = &FrameWriteError{Index: cmd.index, Err: err}
				iterator.writeLock.Unlock()
				continue
			}
			iterator.writeLock.Lock()
			iterator.written++
			iterator.writeLock.Unlock()
		}
	})

	return iterator
}

func (t *FrameWriteIterator) Plan() WindowPlan {
	return t.plan
}

// Next advances to the next source frame, returning false when the plan is
// exhausted, has no positive step, or a write failed.
func (t *FrameWriteIterator) Next() bool {
	if t.Error() != nil || t.plan.Step <= 0 {
		return false
	}
	t.index += t.plan.Step
	return t.index < t.plan.Total
}

// Index is the source frame index of the current position.
func (t *FrameWriteIterator) Index() int {
	return t.index
}

// SetFrame queues the output for the current position.
func (t *FrameWriteIterator) SetFrame(frame OutputFrame) {
	if t.Error() != nil {
		return
	}
	t.writeQueue <- frameWriteCommand{index: t.index, frame: frame}
}

// Done flushes queued frames. It must be called exactly once.
func (t *FrameWriteIterator) Done() {
	close(t.writeQueue)
	t.wg.Wait()
}

func (t *FrameWriteIterator) Error() error {
	t.writeLock.RLock()
	defer t.writeLock.RUnlock()
	return t.currentError
}

// Written is the number of frames the sink accepted.
func (t *FrameWriteIterator) Written() int {
	t.writeLock.RLock()
	defer t.writeLock.RUnlock()
	return t.written
}

// FrameWriteError records the source frame a sink rejected.
type FrameWriteError struct {
	Index int
	Err   error
}

func (e *FrameWriteError) Error() string {
	return "failed to write frame " + strconv.Itoa(e.Index) + ": " + e.Err.Error()
}

func (e *FrameWriteError) Unwrap() error {
	return e.Err
}
