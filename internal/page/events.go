package page

import (
	"sync"

	"github.com/at-ishikawa/definer/internal/pipeline"
)

// eventStream fans binding calls into a channel without ever blocking the target listener.
// Mutations and clicks only ask for a selection check, so at most one of them waits
// in the queue at a time. Overlay control events are queued in order and never dropped.
type eventStream struct {
	mu           sync.Mutex
	queue        []pipeline.Event
	checkPending bool
	closed       bool

	wake chan struct{}
	done chan struct{}
	ch   chan pipeline.Event
}

func newEventStream() *eventStream {
	stream := &eventStream{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		ch:   make(chan pipeline.Event),
	}
	go stream.forward()
	return stream
}

func isCheck(kind pipeline.EventKind) bool {
	return kind == pipeline.EventMutation || kind == pipeline.EventClick
}

// push reports whether the event was accepted. A check folded into one already queued counts as accepted.
func (stream *eventStream) push(event pipeline.Event) bool {
	stream.mu.Lock()
	if stream.closed {
		stream.mu.Unlock()
		return false
	}
	if isCheck(event.Kind) {
		if stream.checkPending {
			stream.mu.Unlock()
			return true
		}
		stream.checkPending = true
	}
	stream.queue = append(stream.queue, event)
	stream.mu.Unlock()

	select {
	case stream.wake <- struct{}{}:
	default:
	}
	return true
}

func (stream *eventStream) next() (pipeline.Event, bool) {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	if len(stream.queue) == 0 {
		return pipeline.Event{}, false
	}
	event := stream.queue[0]
	stream.queue = stream.queue[1:]
	if isCheck(event.Kind) {
		// A mutation arriving from now on has to be compared again.
		stream.checkPending = false
	}
	return event, true
}

func (stream *eventStream) forward() {
	defer close(stream.ch)
	for {
		event, ok := stream.next()
		if !ok {
			select {
			case <-stream.wake:
				continue
			case <-stream.done:
				return
			}
		}
		select {
		case stream.ch <- event:
		case <-stream.done:
			return
		}
	}
}

func (stream *eventStream) close() {
	stream.mu.Lock()
	defer stream.mu.Unlock()
	if stream.closed {
		return
	}
	stream.closed = true
	stream.queue = nil
	close(stream.done)
}

func (stream *eventStream) events() <-chan pipeline.Event {
	return stream.ch
}
