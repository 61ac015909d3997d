package project

import (
	"time"

	"github.com/crytic/solbuild/events"
)

// Reporter defines event emitters for the progress of a compilation run. A Reporter is captured by the scheduler
// before any worker is spawned, so subscriptions must be made before compiling.
type Reporter struct {
	// InvocationStarted emits events when a compiler invocation is about to be spawned.
	InvocationStarted events.EventEmitter[InvocationStartedEvent]

	// InvocationFinished emits events when a compiler invocation has completed, successfully or not.
	InvocationFinished events.EventEmitter[InvocationFinishedEvent]
}

// InvocationStartedEvent describes an event where a compiler invocation is about to be spawned. It may be published
// from any worker goroutine.
type InvocationStartedEvent struct {
	// Job represents the job the invocation compiles.
	Job *CompileJob
}

// InvocationFinishedEvent describes an event where a compiler invocation has completed. It may be published from any
// worker goroutine.
type InvocationFinishedEvent struct {
	// Job represents the job the invocation compiled.
	Job *CompileJob

	// Duration is the time spent waiting for the compiler.
	Duration time.Duration

	// Err is the invocation error, if the invocation failed.
	Err error
}
