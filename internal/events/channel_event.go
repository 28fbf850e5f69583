package events

// ChannelEvent fans values out to listener channels without ever blocking
// the publisher. A listener whose channel is full misses that value.
type ChannelEvent[T any] struct {
	set listenerSet[T, chan<- T]
}

// NewChannelEvent creates a ChannelEvent. With sendLastEventOnListen set, a
// channel registered after the first Notify immediately receives the most
// recent value.
func NewChannelEvent[T any](sendLastEventOnListen bool) *ChannelEvent[T] {
	return &ChannelEvent[T]{set: newListenerSet[T, chan<- T](sendLastEventOnListen)}
}

// Listen registers ch and returns a func that removes it again.
// The returned func is safe to call more than once.
func (e *ChannelEvent[T]) Listen(ch chan<- T) func() {
	if ch == nil {
		panic("channel cannot be nil")
	}
	unregister, last, replay := e.set.add(ch)
	if replay {
		trySend(ch, last)
	}
	return unregister
}

// Notify delivers value to every registered channel that has room for it
func (e *ChannelEvent[T]) Notify(value T) {
	for _, ch := range e.set.publish(value) {
		trySend(ch, value)
	}
}

// LastEvent returns the remembered value, if the event keeps one and it has
// been notified at least once
func (e *ChannelEvent[T]) LastEvent() (T, bool) {
	return e.set.lastValue()
}

// ListenerCount returns the number of registered channels
func (e *ChannelEvent[T]) ListenerCount() int {
	return e.set.count()
}

func trySend[T any](ch chan<- T, value T) bool {
	select {
	case ch <- value:
		return true
	default:
		return false
	}
}
