package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dealhound/dealhound/app/cfg"
	"github.com/dealhound/dealhound/app/database"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler drives the two recurring sweep jobs. Each job has its own
// cadence and an in-flight guard: a tick that fires while the previous
// sweep of the same job is still running is skipped, never run
// concurrently. The two jobs may interleave freely; they touch disjoint
// data.
type Scheduler struct {
	monitorRepo  database.MonitorRepository
	seenRepo     database.SeenItemRepository
	bidRepo      database.BidRepository
	market       MarketClient
	notifier     Notifier
	dealInterval time.Duration
	bidInterval  time.Duration
	searchLimit  int
	workerCount  int
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	taskQueue    chan TaskInterface

	dealInFlight atomic.Bool
	bidInFlight  atomic.Bool
}

func NewScheduler(monitorRepo database.MonitorRepository, seenRepo database.SeenItemRepository,
	bidRepo database.BidRepository, client MarketClient, notifier Notifier) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		monitorRepo:  monitorRepo,
		seenRepo:     seenRepo,
		bidRepo:      bidRepo,
		market:       client,
		notifier:     notifier,
		dealInterval: time.Duration(cfg.DealSweepInterval) * time.Second,
		bidInterval:  time.Duration(cfg.BidSweepInterval) * time.Second,
		searchLimit:  cfg.SearchLimit,
		workerCount:  cfg.WorkerCount,
		ctx:          ctx,
		cancel:       cancel,
		taskQueue:    make(chan TaskInterface, 16),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		dealTicker := time.NewTicker(s.dealInterval)
		defer dealTicker.Stop()
		bidTicker := time.NewTicker(s.bidInterval)
		defer bidTicker.Stop()

		s.enqueueDealSweep()
		s.enqueueBidSweep()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-dealTicker.C:
				s.enqueueDealSweep()
			case <-bidTicker.C:
				s.enqueueBidSweep()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueDealSweep() {
	if !s.dealInFlight.CompareAndSwap(false, true) {
		slog.Warn("Previous deal sweep still running, skipping tick")
		return
	}

	task := NewDealSweepTask(s.monitorRepo, s.seenRepo, s.market, s.notifier, s.searchLimit,
		func() { s.dealInFlight.Store(false) })
	if err := s.EnqueueTask(task); err != nil {
		s.dealInFlight.Store(false)
		slog.Warn("Failed to enqueue DealSweepTask", "error", err)
	}
}

func (s *Scheduler) enqueueBidSweep() {
	if !s.bidInFlight.CompareAndSwap(false, true) {
		slog.Warn("Previous bid sweep still running, skipping tick")
		return
	}

	task := NewBidSweepTask(s.bidRepo, s.market, s.notifier,
		func() { s.bidInFlight.Store(false) })
	if err := s.EnqueueTask(task); err != nil {
		s.bidInFlight.Store(false)
		slog.Warn("Failed to enqueue BidSweepTask", "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "job", task.GetJobName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		}
	}
}
