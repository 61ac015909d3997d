package events

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestEventPublishingAndSubscribing creates EventEmitter objects, subscribes EventHandler callbacks to them, and
// ensures that the events are received as intended.
func TestEventPublishingAndSubscribing(t *testing.T) {
	// Define some event types
	type TestEventA struct{}
	type TestEventB struct{}

	// Create event emitters for both events.
	eventAEmitter1 := EventEmitter[TestEventA]{}
	eventAEmitter2 := EventEmitter[TestEventA]{}
	eventBEmitter1 := EventEmitter[TestEventB]{}
	eventBEmitter2 := EventEmitter[TestEventB]{}

	var eventAEmitter1PublishCount,
		eventAEmitter2PublishCount,
		eventBEmitter1PublishCount,
		eventBEmitter2PublishCount,
		eventAEmitterGlobalPublishCount,
		eventBEmitterGlobalPublishCount int

	eventAEmitter1.Subscribe(func(event TestEventA) error {
		eventAEmitter1PublishCount++
		return nil
	})
	eventAEmitter2.Subscribe(func(event TestEventA) error {
		eventAEmitter2PublishCount++
		return nil
	})
	eventBEmitter1.Subscribe(func(event TestEventB) error {
		eventBEmitter1PublishCount++
		return nil
	})
	eventBEmitter2.Subscribe(func(event TestEventB) error {
		eventBEmitter2PublishCount++
		return nil
	})
	SubscribeAny(func(event TestEventA) error {
		eventAEmitterGlobalPublishCount++
		return nil
	})
	SubscribeAny(func(event TestEventB) error {
		eventBEmitterGlobalPublishCount++
		return nil
	})

	// Publish events a given amount of times.
	const (
		expectedEventAEmitter1PublishCount = 2
		expectedEventAEmitter2PublishCount = 5
		expectedEventBEmitter1PublishCount = 9
		expectedEventBEmitter2PublishCount = 13
	)
	for i := 0; i < expectedEventAEmitter1PublishCount; i++ {
		assert.NoError(t, eventAEmitter1.Publish(TestEventA{}))
	}
	for i := 0; i < expectedEventAEmitter2PublishCount; i++ {
		assert.NoError(t, eventAEmitter2.Publish(TestEventA{}))
	}
	for i := 0; i < expectedEventBEmitter1PublishCount; i++ {
		assert.NoError(t, eventBEmitter1.Publish(TestEventB{}))
	}
	for i := 0; i < expectedEventBEmitter2PublishCount; i++ {
		assert.NoError(t, eventBEmitter2.Publish(TestEventB{}))
	}

	// Assert we received the expected amount of callbacks.
	assert.EqualValues(t, expectedEventAEmitter1PublishCount, eventAEmitter1PublishCount)
	assert.EqualValues(t, expectedEventAEmitter2PublishCount, eventAEmitter2PublishCount)
	assert.EqualValues(t, expectedEventBEmitter1PublishCount, eventBEmitter1PublishCount)
	assert.EqualValues(t, expectedEventBEmitter2PublishCount, eventBEmitter2PublishCount)
	assert.EqualValues(t, expectedEventAEmitter1PublishCount+expectedEventAEmitter2PublishCount, eventAEmitterGlobalPublishCount)
	assert.EqualValues(t, expectedEventBEmitter1PublishCount+expectedEventBEmitter2PublishCount, eventBEmitterGlobalPublishCount)
}

// TestEventHandlerError ensures a failing handler stops publishing and its error reaches the publisher.
func TestEventHandlerError(t *testing.T) {
	type TestEventC struct{}

	handlerErr := errors.New("handler failed")
	emitter := EventEmitter[TestEventC]{}
	secondCalled := false
	emitter.Subscribe(func(event TestEventC) error {
		return handlerErr
	})
	emitter.Subscribe(func(event TestEventC) error {
		secondCalled = true
		return nil
	})

	assert.ErrorIs(t, emitter.Publish(TestEventC{}), handlerErr)
	assert.False(t, secondCalled)
}

// TestConcurrentPublishing publishes to an emitter from several goroutines, as compilation workers do.
func TestConcurrentPublishing(t *testing.T) {
	type TestEventD struct{ Index int }

	emitter := EventEmitter[TestEventD]{}
	var received atomic.Int64
	emitter.Subscribe(func(event TestEventD) error {
		received.Add(1)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, emitter.Publish(TestEventD{Index: i}))
		}(i)
	}
	wg.Wait()
	assert.EqualValues(t, 16, received.Load())
}
