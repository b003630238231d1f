package mockxhr

// Scheduler defers work until after the current call stack unwinds. Send
// uses it to hand delivered requests to their hooks without ever invoking a
// hook from inside Send itself.
type Scheduler interface {
	Schedule(task func())
}

// TaskQueue is the default Scheduler: a deterministic FIFO that runs nothing
// until Flush is called. Tests drive it explicitly instead of waiting on
// timers.
type TaskQueue struct {
	tasks []func()
}

// NewTaskQueue returns an empty queue.
func NewTaskQueue() *TaskQueue {
	return &TaskQueue{}
}

// Schedule appends a task to the queue.
func (q *TaskQueue) Schedule(task func()) {
	q.tasks = append(q.tasks, task)
}

// Flush runs queued tasks in order until none remain. Tasks scheduled while
// flushing run in the same call.
func (q *TaskQueue) Flush() {
	for len(q.tasks) > 0 {
		// Snapshot the current batch; running tasks may schedule more.
		batch := q.tasks
		q.tasks = nil
		for _, task := range batch {
			task()
		}
	}
}

// HasPending reports whether any task is queued.
func (q *TaskQueue) HasPending() bool {
	return len(q.tasks) > 0
}

// Reset drops queued tasks without running them.
func (q *TaskQueue) Reset() {
	q.tasks = nil
}
