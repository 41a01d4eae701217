package speech

import (
	"context"
	"sync"

	"oneiro/oneiro/session"
)

// Feed adapts a push-style recognition source (the capture websocket) to
// the pull-style stream a session consumes. Events pushed after Close or
// after the consumer stopped are dropped.
type Feed struct {
	mu     sync.Mutex
	events chan session.CaptureEvent
	closed bool
}

func NewFeed() *Feed {
	return &Feed{events: make(chan session.CaptureEvent, 16)}
}

// Start hands the consumer a stream that ends when the feed is closed or
// the consumer's context is cancelled.
func (f *Feed) Start(ctx context.Context) (<-chan session.CaptureEvent, error) {
	out := make(chan session.CaptureEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-f.events:
				if !ok {
					return
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Push delivers one recognition event. Returns false once the feed is
// closed or its buffer is full (the event is dropped, never blocks the
// socket reader).
func (f *Feed) Push(ev session.CaptureEvent) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	select {
	case f.events <- ev:
		return true
	default:
		return false
	}
}

// Close ends the stream; the consumer sees end-of-stream.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	close(f.events)
}
