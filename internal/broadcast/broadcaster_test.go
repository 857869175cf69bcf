package broadcast

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishFansOut(t *testing.T) {
	b := NewBroadcaster()
	var first, second []string
	b.Subscribe(func(message string) { first = append(first, message) })
	b.Subscribe(func(message string) { second = append(second, message) })

	b.Publish("one")
	b.Publish("two")

	assert.Equal(t, []string{"one", "two"}, first)
	assert.Equal(t, []string{"one", "two"}, second)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	b := NewBroadcaster()
	// nothing to assert, it just must not panic
	b.Publish("dropped")
}

func TestSubscribeCancel(t *testing.T) {
	b := NewBroadcaster()
	var got []string
	cancel := b.Subscribe(func(message string) { got = append(got, message) })

	b.Publish("one")
	cancel()
	b.Publish("two")

	assert.Equal(t, []string{"one"}, got)
}

func TestConcurrentPublish(t *testing.T) {
	b := NewBroadcaster()
	var lock sync.Mutex
	count := 0
	b.Subscribe(func(message string) {
		lock.Lock()
		defer lock.Unlock()
		count++
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Publish("x")
		}()
	}
	wg.Wait()

	assert.Equal(t, 16, count)
}
