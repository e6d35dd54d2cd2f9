package tasks

// TaskSchedulerInterface is what the HTTP API needs from the scheduler: a way
// to queue follow-up work for a source.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
