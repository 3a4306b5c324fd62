// Package engine runs allocation requests end to end: path validation, space
// check, name resolution, sparse allocation with a streamed fallback, and
// progress reporting through a polled queue.
package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"

	"junkfactory/pkg/guard"
	"junkfactory/pkg/log"
	"junkfactory/pkg/models"
	"junkfactory/pkg/naming"
	"junkfactory/pkg/space"
	"junkfactory/pkg/sparse"
	"junkfactory/pkg/zerofill"
)

const dirPerm = 0o755

// PathGuard decides whether a directory may receive files.
type PathGuard interface {
	Check(path string) error
}

// SpaceChecker answers the pre-flight free space question.
type SpaceChecker interface {
	HasEnoughSpace(path string, required int64) bool
}

// NameResolver picks a file name that is not taken yet.
type NameResolver interface {
	Resolve(directory, desired string) string
}

// FillWriter streams zeros into a file.
type FillWriter interface {
	Write(path string, size int64, sink zerofill.Sink) (zerofill.Result, error)
}

// Recorder receives one record per finished allocation.
type Recorder interface {
	Record(ctx context.Context, record models.AllocationRecord) error
}

// Engine runs at most one allocation at a time on a background worker.
type Engine struct {
	guard     PathGuard
	space     SpaceChecker
	resolver  NameResolver
	allocator sparse.Allocator
	writer    FillWriter
	fs        afero.Fs
	clock     clockwork.Clock
	recorder  Recorder

	queue Queue

	mu    sync.Mutex
	state State
	busy  bool
	wg    sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithGuard sets the path policy.
func WithGuard(g PathGuard) Option {
	return func(e *Engine) { e.guard = g }
}

// WithSpaceChecker sets the free space oracle.
func WithSpaceChecker(s SpaceChecker) Option {
	return func(e *Engine) { e.space = s }
}

// WithResolver sets the name resolver.
func WithResolver(r NameResolver) Option {
	return func(e *Engine) { e.resolver = r }
}

// WithAllocator sets the sparse allocator.
func WithAllocator(a sparse.Allocator) Option {
	return func(e *Engine) { e.allocator = a }
}

// WithWriter sets the streamed fallback writer.
func WithWriter(w FillWriter) Option {
	return func(e *Engine) { e.writer = w }
}

// WithFs sets the filesystem used for directories, verification and cleanup.
func WithFs(fs afero.Fs) Option {
	return func(e *Engine) { e.fs = fs }
}

// WithClock sets the clock used for elapsed times.
func WithClock(clock clockwork.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithRecorder sets the history journal.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// New creates an Engine. Components that are not set explicitly use the host
// implementations on the configured filesystem and clock.
func New(opts ...Option) *Engine {
	e := &Engine{state: StateIdle}
	for _, opt := range opts {
		opt(e)
	}

	if e.fs == nil {
		e.fs = afero.NewOsFs()
	}
	if e.clock == nil {
		e.clock = clockwork.NewRealClock()
	}
	if e.guard == nil {
		e.guard = guard.Default
	}
	if e.space == nil {
		e.space = space.New()
	}
	if e.resolver == nil {
		e.resolver = naming.New(e.fs)
	}
	if e.allocator == nil {
		e.allocator = sparse.Default()
	}
	if e.writer == nil {
		e.writer = zerofill.New(e.fs, zerofill.WithClock(e.clock))
	}
	return e
}

// Submit validates the request and starts it on a worker goroutine.
// It returns the request id, ErrBusy while another request runs, or an
// error wrapping models.ErrInvalidRequest.
func (e *Engine) Submit(directory, filename string, size float64, unit models.Unit, useSparse bool) (string, error) {
	request, err := models.NewAllocationRequest(uuid.NewString(), directory, filename, size, unit, useSparse)
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.busy {
		log.Info().Str("directory", directory).Str("filename", filename).Msg("Submission ignored, allocation in progress")
		return "", ErrBusy
	}
	e.busy = true
	e.state = StateValidating
	e.wg.Add(1)

	log.Info().Str("request_id", request.ID).Str("directory", request.Directory).Str("filename", request.Filename).
		Int64("size", request.Size).Bool("use_sparse", request.UseSparse).Msg("Allocation submitted")

	go e.run(request)
	return request.ID, nil
}

// PollProgress returns every event produced since the last call without blocking.
func (e *Engine) PollProgress() []models.ProgressEvent {
	return e.queue.Drain()
}

// State returns the current state of the machine.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Busy reports whether an allocation is in flight.
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

// Wait blocks until the in-flight allocation, if any, has produced its outcome.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// AcceptDirectory re-validates a directory picked by the user and returns its
// absolute form.
func (e *Engine) AcceptDirectory(path string) (string, error) {
	if err := e.guard.Check(path); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", guard.RejectedError{Path: path, Reason: "path cannot be normalized: " + err.Error()}
	}
	return abs, nil
}

func (e *Engine) setState(request models.AllocationRequest, state State) {
	e.mu.Lock()
	e.state = state
	e.mu.Unlock()
	log.Debug().Str("request_id", request.ID).Str("state", string(state)).Msg("Allocation state changed")
}

// job carries the per-request bookkeeping of a worker.
type job struct {
	request models.AllocationRequest
	target  *models.ResolvedTarget
	last    models.ProgressEvent // last event pushed
	final   *models.ProgressEvent
}

// sink forwards writer events to the queue, holding back the completion event
// so the outcome can be attached to it.
func (e *Engine) sink(j *job) zerofill.Sink {
	return func(event models.ProgressEvent) {
		event.RequestID = j.request.ID
		if event.Percent >= 100 {
			j.final = &event
			return
		}
		j.last = event
		e.queue.Push(event)
	}
}

func (e *Engine) run(request models.AllocationRequest) {
	defer e.wg.Done()

	startedAt := e.clock.Now()
	j := &job{request: request}
	outcome := e.allocate(j)
	e.finish(j, outcome, startedAt)
}

func (e *Engine) allocate(j *job) models.Outcome {
	request := j.request

	e.setState(request, StateValidating)
	if err := e.guard.Check(request.Directory); err != nil {
		reason := err.Error()
		var rejected guard.RejectedError
		if errors.As(err, &rejected) {
			reason = rejected.Reason
		}
		log.Info().Str("request_id", request.ID).Str("directory", request.Directory).Str("reason", reason).
			Msg("Directory rejected")
		return models.PathRejected(reason)
	}
	directory, err := filepath.Abs(request.Directory)
	if err != nil {
		return models.PathRejected("path cannot be normalized: " + err.Error())
	}

	e.setState(request, StateCheckingSpace)
	if !e.space.HasEnoughSpace(directory, request.Size) {
		return models.InsufficientSpace()
	}

	e.setState(request, StateResolving)
	if err := e.fs.MkdirAll(directory, dirPerm); err != nil {
		log.Error().Err(err).Str("request_id", request.ID).Str("directory", directory).Msg("Failed to create directory")
		return models.IOFailure(err)
	}
	filename := e.resolver.Resolve(directory, request.Filename)
	j.target = &models.ResolvedTarget{Path: filepath.Join(directory, filename), Filename: filename}
	path := j.target.Path

	if request.UseSparse {
		e.setState(request, StateAllocatingSparse)
		start := e.clock.Now()
		if e.trySparse(request, path) {
			return models.Success(models.MethodSparse, request.Size, e.clock.Since(start))
		}
		log.Info().Str("request_id", request.ID).Str("path", path).Msg("Sparse allocation failed, falling back to streamed writing")
	}

	e.setState(request, StateAllocatingStreamed)
	result, err := e.writer.Write(path, request.Size, e.sink(j))
	if err != nil {
		log.Error().Err(err).Str("request_id", request.ID).Str("path", path).
			Int64("bytes_written", result.BytesWritten).Msg("Streamed allocation failed")
		e.removePartial(request, path)
		return models.IOFailure(err)
	}
	return models.Success(models.MethodStreamed, result.BytesWritten, result.Elapsed)
}

// trySparse runs the allocator and verifies its result independently: the
// file must exist with at least the requested size, and is cut back to the
// exact size when longer.
func (e *Engine) trySparse(request models.AllocationRequest, path string) bool {
	if !e.allocator.Allocate(path, request.Size) {
		return false
	}

	info, err := e.fs.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() < request.Size {
		log.Warn().Err(err).Str("request_id", request.ID).Str("path", path).
			Msg("Sparse allocator reported success without a file of the requested size")
		return false
	}
	if info.Size() == request.Size {
		return true
	}

	file, err := e.fs.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		log.Warn().Err(err).Str("request_id", request.ID).Str("path", path).Msg("Failed to open oversized sparse file")
		return false
	}
	err = file.Truncate(request.Size)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		log.Warn().Err(err).Str("request_id", request.ID).Str("path", path).Msg("Failed to truncate oversized sparse file")
		return false
	}
	return true
}

func (e *Engine) removePartial(request models.AllocationRequest, path string) {
	if err := e.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("request_id", request.ID).Str("path", path).Msg("Failed to remove partial file")
	}
}

// finish publishes the single terminal event and releases the engine.
func (e *Engine) finish(j *job, outcome models.Outcome, startedAt time.Time) {
	request := j.request
	outcome.RequestID = request.ID
	outcome.Target = j.target

	filename := request.Filename
	if j.target != nil {
		filename = j.target.Filename
	}

	var event models.ProgressEvent
	switch {
	case outcome.Succeeded() && j.final != nil:
		event = *j.final
	case outcome.Succeeded():
		event = models.ProgressEvent{
			RequestID:    request.ID,
			Percent:      100,
			BytesWritten: outcome.BytesWritten,
			TotalBytes:   request.Size,
			ETA:          0,
		}
	default:
		event = j.last
		event.RequestID = request.ID
		event.TotalBytes = request.Size
		event.Throughput = 0
		event.ETA = models.ETAUnknown
	}
	event.Status = models.StatusFor(outcome, filename)
	event.Outcome = &outcome

	if e.recorder != nil {
		record := models.AllocationRecord{
			Request:    request,
			Outcome:    outcome,
			StartedAt:  startedAt,
			FinishedAt: e.clock.Now(),
		}
		if err := e.recorder.Record(context.Background(), record); err != nil {
			log.Warn().Err(err).Str("request_id", request.ID).Msg("Failed to record allocation")
		}
	}

	state := StateDone
	if !outcome.Succeeded() {
		state = StateFailed
	}

	log.Info().Str("request_id", request.ID).Str("outcome", string(outcome.Kind)).Str("status", event.Status).
		Msg("Allocation finished")

	// Nothing may run after this block: callers treat the terminal event as the end of the worker.
	e.mu.Lock()
	e.queue.Push(event)
	e.state = state
	e.busy = false
	e.mu.Unlock()
}
