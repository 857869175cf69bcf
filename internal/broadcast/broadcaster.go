// Package broadcast carries user-facing error messages from the API client
// to whatever wants to display them, without coupling the two.
package broadcast

import "sync"

// Broadcaster delivers published messages to all current subscribers
// synchronously. There is no buffering, no delivery guarantee and no
// acknowledgment; a message published with no subscribers is dropped.
// Subscribers own their own display lifetime.
type Broadcaster struct {
	lock        sync.Mutex
	subscribers map[int]func(message string)
	nextSubID   int
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subscribers: map[int]func(string){}}
}

// Publish fans the message out to every subscriber. Fire and forget.
func (b *Broadcaster) Publish(message string) {
	b.lock.Lock()
	handlers := make([]func(string), 0, len(b.subscribers))
	for _, handler := range b.subscribers {
		handlers = append(handlers, handler)
	}
	b.lock.Unlock()
	for _, handler := range handlers {
		handler(message)
	}
}

// Subscribe registers a handler and returns the function that removes it.
// Handlers are expected to be idempotent to repeated identical messages.
func (b *Broadcaster) Subscribe(handler func(message string)) (cancel func()) {
	b.lock.Lock()
	defer b.lock.Unlock()
	id := b.nextSubID
	b.nextSubID++
	b.subscribers[id] = handler
	return func() {
		b.lock.Lock()
		defer b.lock.Unlock()
		delete(b.subscribers, id)
	}
}
