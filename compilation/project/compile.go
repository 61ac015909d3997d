package project

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/crytic/solbuild/compilation/cache"
	"github.com/crytic/solbuild/compilation/compilers"
	"github.com/crytic/solbuild/compilation/types"
)

// Compiled is the state of a run once every compiler invocation has completed.
type Compiled struct {
	project *Project
	cache   *cache.ArtifactsCache

	output           *types.AggregatedCompilerOutput
	sets             []cache.CompiledSet
	invocations      int
	invocationErrors []error
}

// jobResult holds the outcome of a single CompileJob.
type jobResult struct {
	dispatched bool
	output     *types.CompilerOutput
	rawOutput  []byte
	err        error

	// eventErr is an error returned by a Reporter event handler.
	eventErr error
}

// Compile runs a compiler invocation for every job. Jobs run one after the other, or on a bounded pool of workers
// when more than one job exists and more than one job may run at once. A failed invocation does not stop the others
// and is recorded as an error in the aggregated output. If a compiler cannot be started, or the context is cancelled,
// no further job is dispatched and an error is returned once the running ones have finished. On cancellation, the
// outputs of the invocations which ran are returned along with the context's error.
func (p *Preprocessed) Compile(ctx context.Context) (*Compiled, error) {
	project := p.project
	reporter := project.Reporter
	results := make([]jobResult, len(p.jobs))

	workers := project.jobCount()
	if len(p.jobs) > 1 && workers >= 2 {
		project.logger.Debug("Compiling ", len(p.jobs), " jobs on ", workers, " workers")
		p.compileParallel(ctx, reporter, workers, results)
	} else {
		p.compileSequential(ctx, reporter, results)
	}

	compiled := &Compiled{
		project:          project,
		cache:            p.cache,
		output:           types.NewAggregatedCompilerOutput(),
		sets:             make([]cache.CompiledSet, 0, len(p.jobs)),
		invocationErrors: make([]error, 0),
	}

	// Results are aggregated in job order, regardless of the order invocations completed in.
	var runErr error
	for i, job := range p.jobs {
		result := results[i]
		if !result.dispatched {
			continue
		}
		compiled.invocations++
		if result.eventErr != nil && runErr == nil {
			runErr = result.eventErr
		}

		key := job.Set.Key()
		if result.err != nil {
			project.logger.Error("Compiler invocation for ", key, " failed", result.err)
			compiled.output.AddInvocationFailure(key, result.err)
			compiled.invocationErrors = append(compiled.invocationErrors, result.err)
			compiled.sets = append(compiled.sets, cache.CompiledSet{Key: key, Dirty: job.Dirty, Failed: true})
			if isSpawnError(result.err) && runErr == nil {
				runErr = result.err
			}
			continue
		}

		// The build context maps the source ids of every file of the input, so it is created before the output is
		// narrowed to the dirty files.
		buildInfo, err := types.NewRawBuildInfo(job.Compiler.Version(), job.Compiler.LongVersion(), job.Input, result.output, result.rawOutput, project.config.Compilation.BuildInfo)
		if err != nil {
			return nil, err
		}
		result.output.RetainFiles(job.Dirty)
		compiled.output.Extend(job.Set.Version, buildInfo, job.Set.Profile, result.output)
		compiled.sets = append(compiled.sets, cache.CompiledSet{Key: key, Dirty: job.Dirty, BuildID: buildInfo.ID})
	}

	if runErr != nil {
		return nil, runErr
	}
	if err := ctx.Err(); err != nil {
		return compiled, err
	}
	return compiled, nil
}

// compileSequential runs the jobs in order on the calling goroutine.
func (p *Preprocessed) compileSequential(ctx context.Context, reporter *Reporter, results []jobResult) {
	for i, job := range p.jobs {
		if ctx.Err() != nil {
			return
		}
		results[i] = runJob(ctx, reporter, job)
		if isSpawnError(results[i].err) || results[i].eventErr != nil {
			return
		}
	}
}

// compileParallel runs the jobs on a pool of at most workers goroutines. Each worker writes only to the result slot
// of its own job.
func (p *Preprocessed) compileParallel(ctx context.Context, reporter *Reporter, workers int, results []jobResult) {
	// We use a channel to block dispatching when we reach capacity.
	threadReserveChannel := make(chan struct{}, workers)
	var wg sync.WaitGroup

	// Define a flag that indicates whether a worker asked us to stop dispatching.
	var stoppedLock sync.Mutex
	stopped := false

dispatch:
	for i, job := range p.jobs {
		// Queue up a spot, or exit if we were cancelled while waiting for one.
		select {
		case threadReserveChannel <- struct{}{}:
		case <-ctx.Done():
			break dispatch
		}

		stoppedLock.Lock()
		stop := stopped
		stoppedLock.Unlock()
		if stop || ctx.Err() != nil {
			<-threadReserveChannel
			break
		}

		wg.Add(1)
		go func(i int, job *CompileJob) {
			defer wg.Done()
			results[i] = runJob(ctx, reporter, job)
			if isSpawnError(results[i].err) || results[i].eventErr != nil {
				stoppedLock.Lock()
				stopped = true
				stoppedLock.Unlock()
			}

			// Unblock our channel by freeing our capacity of another item, making way for another job.
			<-threadReserveChannel
		}(i, job)
	}

	// Already running invocations are never interrupted, we wait for all of them.
	wg.Wait()
}

// runJob invokes the compiler of a job, publishing the start and completion of the invocation.
func runJob(ctx context.Context, reporter *Reporter, job *CompileJob) jobResult {
	result := jobResult{dispatched: true}
	if err := reporter.InvocationStarted.Publish(InvocationStartedEvent{Job: job}); err != nil {
		result.eventErr = err
		result.err = err
		return result
	}

	start := time.Now()
	result.output, result.rawOutput, result.err = job.Compiler.Compile(ctx, job.Input)
	result.eventErr = reporter.InvocationFinished.Publish(InvocationFinishedEvent{
		Job:      job,
		Duration: time.Since(start),
		Err:      result.err,
	})
	return result
}

// isSpawnError reports whether err describes a compiler which could not be started.
func isSpawnError(err error) bool {
	var invocationErr *compilers.InvocationError
	return errors.As(err, &invocationErr) && invocationErr.IsSpawnError()
}

// Output returns the aggregated output of the invocations.
func (c *Compiled) Output() *types.AggregatedCompilerOutput {
	return c.output
}

// Invocations returns the number of compiler invocations of the run.
func (c *Compiled) Invocations() int {
	return c.invocations
}
