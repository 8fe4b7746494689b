package compensation

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mkuznecov/ticketgate/internal/metrics"
)

// Task is a compensating action that must eventually succeed. Run is retried
// on every sweep until it returns nil.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Worker retries enqueued compensation tasks on a fixed interval for the life
// of the process. Tasks are held in memory only; a restart abandons them.
type Worker struct {
	interval time.Duration
	logger   *log.Entry
	metrics  *metrics.GatewayMetrics

	mu      sync.Mutex
	pending []Task
}

func NewWorker(interval time.Duration, logger *log.Entry, m *metrics.GatewayMetrics) *Worker {
	if logger == nil {
		logger = log.New().WithField("component", "compensation")
	}
	if interval == 0 {
		interval = 10 * time.Second
	}
	return &Worker{
		interval: interval,
		logger:   logger,
		metrics:  m,
	}
}

// Enqueue registers a task without blocking the caller. The triggering
// request does not wait for the task to run.
func (w *Worker) Enqueue(task Task) {
	w.mu.Lock()
	w.pending = append(w.pending, task)
	n := len(w.pending)
	w.mu.Unlock()

	w.metrics.SetCompensationPending(n)
	w.logger.WithField("task", task.Name).Warn("compensation task enqueued")
}

// PendingCount reports how many tasks are still waiting to succeed.
func (w *Worker) PendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Run sweeps pending tasks every interval until ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep(ctx)
		case <-ctx.Done():
			w.logger.Info("compensation worker stopped")
			return
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	w.mu.Lock()
	tasks := w.pending
	w.pending = nil
	w.mu.Unlock()

	if len(tasks) == 0 {
		return
	}

	var failed []Task
	for _, task := range tasks {
		w.metrics.RecordCompensationRetry()
		if err := task.Run(ctx); err != nil {
			w.logger.WithError(err).WithField("task", task.Name).Warn("compensation attempt failed, will retry")
			failed = append(failed, task)
			continue
		}
		w.logger.WithField("task", task.Name).Info("compensation task completed")
	}

	w.mu.Lock()
	w.pending = append(failed, w.pending...)
	n := len(w.pending)
	w.mu.Unlock()

	w.metrics.SetCompensationPending(n)
}
