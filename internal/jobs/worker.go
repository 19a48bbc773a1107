package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/feraben/crm-api/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker runs fire-and-forget tasks (audit writes) and named recurring jobs
type Worker struct {
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	asyncWG       sync.WaitGroup
	queue         chan Job
	asyncSem      chan struct{}
	maxConcurrent int
	stats         WorkerStats
	statsMu       sync.RWMutex
}

// WorkerStats holds statistics about the worker. CompletedJobs counts every
// finished job, FailedJobs the subset that returned an error or panicked.
type WorkerStats struct {
	ActiveJobs    int                     `json:"active_jobs"`
	CompletedJobs int64                   `json:"completed_jobs"`
	FailedJobs    int64                   `json:"failed_jobs"`
	QueueLength   int                     `json:"queue_length"`
	MaxConcurrent int                     `json:"max_concurrent"`
	Scheduled     map[string]ScheduledRun `json:"scheduled"`
}

// ScheduledRun is the outcome of the last run of a named recurring job
type ScheduledRun struct {
	Interval  string    `json:"interval"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	Runs      int64     `json:"runs"`
}

// NewWorker creates a worker with N queue processors
func NewWorker(numWorkers int) *Worker {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	asyncLimit := numWorkers * 2
	if asyncLimit < 10 {
		asyncLimit = 10
	}

	w := &Worker{
		ctx:           ctx,
		cancel:        cancel,
		queue:         make(chan Job, 100),
		asyncSem:      make(chan struct{}, asyncLimit),
		maxConcurrent: asyncLimit,
		stats:         WorkerStats{Scheduled: make(map[string]ScheduledRun)},
	}

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	return w
}

// Enqueue adds a job to the queue, running it inline when the queue is full
func (w *Worker) Enqueue(job Job) {
	select {
	case w.queue <- job:
	default:
		logger.Warn("[Worker] queue full, running job synchronously")
		w.run("inline", job)
	}
}

// EnqueueAsync runs a job in its own goroutine, bounded by a semaphore
func (w *Worker) EnqueueAsync(job Job) {
	w.wg.Add(1)
	w.asyncWG.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.asyncWG.Done()

		w.asyncSem <- struct{}{}
		defer func() { <-w.asyncSem }()

		w.run("async", job)
	}()
}

func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case job, ok := <-w.queue:
			if !ok {
				return
			}
			w.run("queue", job, "worker", workerID)
		}
	}
}

// run executes job with panic recovery and stats tracking
func (w *Worker) run(kind string, job Job, attrs ...any) (err error) {
	w.trackJobStart()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("[Worker] job panic", append(attrs, "kind", kind, "panic", r)...)
			w.trackJobFailure()
		}
		w.trackJobEnd()
	}()

	if err = job(w.ctx); err != nil {
		logger.Error("[Worker] job error", append(attrs, "kind", kind, "error", err)...)
		w.trackJobFailure()
		return err
	}
	logger.Debug("[Worker] job completed", append(attrs, "kind", kind, "elapsed", time.Since(start))...)
	return nil
}

// ScheduleEvery runs a named job at fixed intervals. With immediate set the
// first run happens at startup instead of after the first interval.
func (w *Worker) ScheduleEvery(name string, interval time.Duration, immediate bool, job Job) {
	w.statsMu.Lock()
	w.stats.Scheduled[name] = ScheduledRun{Interval: interval.String()}
	w.statsMu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if immediate {
			w.runScheduled(name, job)
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.runScheduled(name, job)
			}
		}
	}()
}

func (w *Worker) runScheduled(name string, job Job) {
	err := w.run("scheduled", job, "job", name)

	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	run := w.stats.Scheduled[name]
	run.LastRun = time.Now()
	run.Runs++
	run.LastError = ""
	if err != nil {
		run.LastError = err.Error()
	}
	w.stats.Scheduled[name] = run
}

// Shutdown stops the scheduler and waits for running jobs
func (w *Worker) Shutdown() {
	w.cancel()
	close(w.queue)
	w.wg.Wait()
}

// Wait blocks until every async job enqueued so far has finished
func (w *Worker) Wait() {
	w.asyncWG.Wait()
}

// Context returns the worker's context for checking cancellation
func (w *Worker) Context() context.Context {
	return w.ctx
}

// GetStats returns a snapshot of the worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.QueueLength = len(w.queue)
	stats.MaxConcurrent = w.maxConcurrent
	stats.Scheduled = make(map[string]ScheduledRun, len(w.stats.Scheduled))
	for k, v := range w.stats.Scheduled {
		stats.Scheduled[k] = v
	}
	return stats
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs++
}

func (w *Worker) trackJobEnd() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
}

func (w *Worker) trackJobFailure() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.FailedJobs++
}
