package store

import "sync"

// Subscription is a live view over one collection. Updates carries full
// ordered snapshots of the collection, the first one reflecting the state
// at subscription time. Errors carries subscription failures that do not
// terminate the stream; a consumer may keep reading Updates after one.
//
// Unsubscribe stops the stream and eventually closes both channels. It is
// safe to call more than once and from any goroutine.
type Subscription[T any] struct {
	Updates <-chan []T
	Errors  <-chan error

	stopOnce sync.Once
	stop     func()
}

// NewSubscription wires a subscription handle over the given channels.
// stop is invoked exactly once, on the first Unsubscribe call.
func NewSubscription[T any](updates <-chan []T, errs <-chan error, stop func()) *Subscription[T] {
	return &Subscription[T]{Updates: updates, Errors: errs, stop: stop}
}

func (s *Subscription[T]) Unsubscribe() {
	s.stopOnce.Do(func() {
		if s.stop != nil {
			s.stop()
		}
	})
}
