package mockxhr

import "github.com/rs/zerolog"

// Config controls construction of a Factory.
type Config struct {
	// Scheduler receives the deferred send hand-offs. When nil, the factory
	// uses its own TaskQueue, drained by Flush.
	Scheduler Scheduler

	// Logger receives debug traces of state transitions and event
	// dispatches. When nil, logging is disabled.
	Logger *zerolog.Logger

	// OnCreate runs synchronously with each instance NewXHR returns.
	OnCreate func(*XHR)

	// OnSend is the factory-level send hook. It runs before any
	// per-instance OnSend, once per delivered send.
	OnSend func(*XHR)

	// Recorder, when set, is attached to every instance the factory
	// creates.
	Recorder *Recorder
}

// Factory creates XHR instances that share a scheduler, logger, and hooks.
// Separate factories are fully isolated from each other.
type Factory struct {
	sched    Scheduler
	queue    *TaskQueue // non-nil only when the default scheduler is in use
	log      zerolog.Logger
	onCreate func(*XHR)
	onSend   func(*XHR)
	recorder *Recorder
}

// NewFactory builds a Factory from cfg.
func NewFactory(cfg Config) *Factory {
	f := &Factory{
		sched:    cfg.Scheduler,
		log:      zerolog.Nop(),
		onCreate: cfg.OnCreate,
		onSend:   cfg.OnSend,
		recorder: cfg.Recorder,
	}
	if cfg.Logger != nil {
		f.log = *cfg.Logger
	}
	if f.sched == nil {
		f.queue = NewTaskQueue()
		f.sched = f.queue
	}
	return f
}

// NewXHR returns a fresh instance in the UNSENT state, attached to the
// factory's recorder (if any) and passed to the OnCreate hook.
func (f *Factory) NewXHR() *XHR {
	x := newXHR(f)
	if f.recorder != nil {
		f.recorder.Attach(x)
	}
	if f.onCreate != nil {
		f.onCreate(x)
	}
	return x
}

// Flush drains the factory's own task queue, delivering pending send
// hand-offs. It is a no-op when a custom Scheduler was configured; whoever
// owns that scheduler decides when tasks run.
func (f *Factory) Flush() {
	if f.queue != nil {
		f.queue.Flush()
	}
}

// HasPending reports whether the factory's own task queue holds undelivered
// hand-offs. It is always false with a custom Scheduler.
func (f *Factory) HasPending() bool {
	return f.queue != nil && f.queue.HasPending()
}

// SetOnCreate replaces the construction hook.
func (f *Factory) SetOnCreate(fn func(*XHR)) {
	f.onCreate = fn
}

// SetOnSend replaces the factory-level send hook. Sends already scheduled
// keep the hook captured when they were scheduled.
func (f *Factory) SetOnSend(fn func(*XHR)) {
	f.onSend = fn
}

func (f *Factory) onSendHook() func(*XHR) {
	return f.onSend
}

func (f *Factory) scheduler() Scheduler {
	return f.sched
}

// New returns a standalone instance backed by its own private factory with
// default configuration.
func New() *XHR {
	return NewFactory(Config{}).NewXHR()
}
