package framepipe

import "errors"

// Sentinel errors. ErrInvalidConfig lives in config.go next to Validate.
var (
	// ErrNilRenderer is returned by New when no Renderer is supplied.
	ErrNilRenderer = errors.New("framepipe: nil renderer")

	// ErrNilPresenter is returned by New when no Presenter is supplied.
	ErrNilPresenter = errors.New("framepipe: nil presenter")

	// ErrAlreadyStarted is returned by Start on a running pipeline.
	ErrAlreadyStarted = errors.New("framepipe: pipeline already started")

	// ErrNotStarted is returned by Stop on a pipeline that is not running.
	ErrNotStarted = errors.New("framepipe: pipeline not started")

	// ErrWorkerTimeout marks a render attempt that exceeded the configured
	// worker timeout. It is handled internally by the dispatcher's retry
	// path and only surfaces in logs and counters.
	ErrWorkerTimeout = errors.New("framepipe: worker timeout")

	// ErrWorkerPanic marks a render attempt that panicked. The panic is
	// recovered inside the worker; the pipeline treats it as a failed
	// attempt and the worker stays poolable.
	ErrWorkerPanic = errors.New("framepipe: worker panic")

	// ErrNilFrame marks a render attempt that returned neither a frame
	// nor an error.
	ErrNilFrame = errors.New("framepipe: renderer returned nil frame")
)
