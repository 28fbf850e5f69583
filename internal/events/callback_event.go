package events

import "sync/atomic"

// CallbackEvent calls registered funcs synchronously on Notify
type CallbackEvent[T any] struct {
	set          listenerSet[T, func(T)]
	panicHandler atomic.Pointer[func(recovered any)]
}

// NewCallbackEvent creates a CallbackEvent. With sendLastEventOnListen set, a
// callback registered after the first Notify is invoked right away with the
// most recent value.
func NewCallbackEvent[T any](sendLastEventOnListen bool) *CallbackEvent[T] {
	return &CallbackEvent[T]{set: newListenerSet[T, func(T)](sendLastEventOnListen)}
}

// OnListenerPanic isolates listeners from the publisher: a panic inside a
// callback is recovered and passed to handler, and the remaining callbacks
// still run. Without a handler a listener panic propagates to Notify's caller.
func (e *CallbackEvent[T]) OnListenerPanic(handler func(recovered any)) {
	if handler == nil {
		e.panicHandler.Store(nil)
		return
	}
	e.panicHandler.Store(&handler)
}

// Listen registers callback and returns a func that removes it again.
// The returned func is safe to call more than once, including from inside the
// callback itself.
func (e *CallbackEvent[T]) Listen(callback func(T)) func() {
	if callback == nil {
		panic("callback cannot be nil")
	}
	unregister, last, replay := e.set.add(callback)
	if replay {
		e.invoke(callback, last)
	}
	return unregister
}

// Notify calls every registered callback with value
func (e *CallbackEvent[T]) Notify(value T) {
	for _, callback := range e.set.publish(value) {
		e.invoke(callback, value)
	}
}

// LastEvent returns the remembered value, if any
func (e *CallbackEvent[T]) LastEvent() (T, bool) {
	return e.set.lastValue()
}

// ListenerCount returns the number of registered callbacks
func (e *CallbackEvent[T]) ListenerCount() int {
	return e.set.count()
}

func (e *CallbackEvent[T]) invoke(callback func(T), value T) {
	if handler := e.panicHandler.Load(); handler != nil {
		defer func() {
			if r := recover(); r != nil {
				(*handler)(r)
			}
		}()
	}
	callback(value)
}
