package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Constants for worker configuration
const (
	ProbeTimeout     = 30 * time.Second
	ConfirmInterval  = 30 * time.Second
	ConfirmBatchSize = 50
)

// Upstream is the part of the Hiro client the workers use
type Upstream interface {
	IsConfigured() bool
	ProbeAuth(ctx context.Context) error
	GetNetworkBlockTimes(ctx context.Context) (json.RawMessage, error)
	GetTransaction(ctx context.Context, txID string) (json.RawMessage, error)
}

// Task is a long-running job that returns once ctx is cancelled
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// WorkerManager runs the background workers and stops them on shutdown
type WorkerManager struct {
	logger *zap.Logger

	monitor   *StatusMonitor
	confirmer *PledgeConfirmer
	tasks     []Task

	// Control
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorkerManager creates a manager for the status monitor and pledge
// confirmer. Extra tasks, like the campaign watcher, run alongside them.
func NewWorkerManager(monitor *StatusMonitor, confirmer *PledgeConfirmer, logger *zap.Logger, tasks ...Task) *WorkerManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerManager{
		logger:    logger.Named("worker"),
		monitor:   monitor,
		confirmer: confirmer,
		tasks:     tasks,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start starts all worker goroutines
func (wm *WorkerManager) Start() {
	wm.logger.Info("Starting worker manager", zap.Int("num_tasks", len(wm.tasks)))

	if wm.monitor != nil {
		wm.wg.Add(1)
		go func() {
			defer wm.wg.Done()
			wm.monitor.Run(wm.ctx)
		}()
	}

	if wm.confirmer != nil {
		wm.wg.Add(1)
		go func() {
			defer wm.wg.Done()
			wm.confirmer.Run(wm.ctx)
		}()
	}

	for _, task := range wm.tasks {
		wm.wg.Add(1)
		go func(task Task) {
			defer wm.wg.Done()
			if err := task.Run(wm.ctx); err != nil {
				wm.logger.Error("Worker task failed", zap.String("task", task.Name), zap.Error(err))
			}
		}(task)
	}

	wm.logger.Info("Worker manager started")
}

// Monitor returns the status monitor, or nil
func (wm *WorkerManager) Monitor() *StatusMonitor {
	return wm.monitor
}

// Shutdown gracefully stops all workers
func (wm *WorkerManager) Shutdown(timeout time.Duration) error {
	wm.logger.Info("Shutting down worker manager")

	// Signal workers to stop
	wm.cancel()

	// Wait for workers to finish with timeout
	done := make(chan struct{})
	go func() {
		wm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		wm.logger.Info("Workers stopped gracefully")
	case <-time.After(timeout):
		wm.logger.Warn("Worker shutdown timed out")
	}

	wm.logger.Info("Worker manager shutdown complete")
	return nil
}
