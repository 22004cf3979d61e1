// Package input provides keyboard event sources for the controller.
//
// A Source yields key events on a channel. The stream is lazy, unbounded and
// cannot be restarted; once closed, a new Source has to be opened. Key names
// are normalized to lower case ("a", "left", "esc", "f1", ...).
package input

import "sync"

// KeyEvent is a single key transition.
type KeyEvent struct {
	Key  string `json:"key"`
	Down bool   `json:"down"`
}

// Source produces key events until it is closed.
type Source interface {
	// Events returns the event channel. It is closed when a finite source
	// runs out of input.
	Events() <-chan KeyEvent
	// Close stops delivering events and releases the underlying device.
	Close() error
}

// stream carries the channel plumbing shared by all sources.
type stream struct {
	ch       chan KeyEvent
	done     chan struct{}
	stopOnce sync.Once
	endOnce  sync.Once
}

func newStream() *stream {
	return &stream{
		ch:   make(chan KeyEvent, 16),
		done: make(chan struct{}),
	}
}

func (s *stream) Events() <-chan KeyEvent {
	return s.ch
}

// emit delivers ev unless the stream has been stopped.
func (s *stream) emit(ev KeyEvent) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.ch <- ev:
		return true
	case <-s.done:
		return false
	}
}

func (s *stream) stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

func (s *stream) stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// end closes the channel. Only sources with a single producer goroutine may
// call it.
func (s *stream) end() {
	s.endOnce.Do(func() { close(s.ch) })
}
