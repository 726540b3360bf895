package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/ravell-app/tg-bridge/internal/backend"
	"github.com/ravell-app/tg-bridge/internal/linker"
	"github.com/ravell-app/tg-bridge/types"
)

// Scheduler drains the bind-sync queue in the background so a temporarily
// unreachable backend does not lose bindings. The store is already written
// by the time a job lands here, so a dropped job only delays backend-side
// notifications, it never loses the binding itself.
type Scheduler struct {
	queue    types.BindQueue
	notifier linker.BindNotifier
	log      *zap.Logger
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool

	pollInterval time.Duration
	retryBase    time.Duration
	maxAttempts  int
}

type Config struct {
	Workers      int
	PollInterval time.Duration
	RetryBase    time.Duration
	MaxAttempts  int
}

func New(queue types.BindQueue, notifier linker.BindNotifier, log *zap.Logger, config Config) *Scheduler {
	if config.Workers <= 0 {
		config.Workers = 2
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	if config.RetryBase <= 0 {
		config.RetryBase = time.Second
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 10
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		queue:        queue,
		notifier:     notifier,
		log:          log,
		workers:      config.Workers,
		ctx:          ctx,
		cancel:       cancel,
		pollInterval: config.PollInterval,
		retryBase:    config.RetryBase,
		maxAttempts:  config.MaxAttempts,
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	s.log.Info("bind sync scheduler started", zap.Int("workers", s.workers))
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.log.Info("bind sync scheduler stopped")
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			for {
				job, err := s.queue.Dequeue()
				if err != nil {
					s.log.Error("bind sync dequeue failed", zap.Error(err))
					break
				}
				if job == nil {
					break
				}
				s.processJob(s.ctx, job)
			}
		}
	}
}

func (s *Scheduler) processJob(ctx context.Context, job *types.BindJob) {
	b := retry.WithMaxRetries(3, retry.NewFibonacci(s.retryBase))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		err := s.notifier.NotifyBind(ctx, job.UserID, job.ChatID)
		if errors.Is(err, backend.ErrUnreachable) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err == nil {
		s.log.Info("bind synced to backend",
			zap.String("job_id", job.ID),
			zap.Int64("user_id", job.UserID))
		return
	}

	if errors.Is(err, backend.ErrRejected) {
		s.log.Error("backend rejected bind sync, dropping job",
			zap.String("job_id", job.ID),
			zap.Int64("user_id", job.UserID),
			zap.Error(err))
		return
	}

	job.Attempts++
	if job.Attempts >= s.maxAttempts {
		s.log.Error("bind sync job exhausted attempts, dropping",
			zap.String("job_id", job.ID),
			zap.Int64("user_id", job.UserID),
			zap.Int("attempts", job.Attempts))
		return
	}
	if qerr := s.queue.Enqueue(*job); qerr != nil {
		s.log.Error("failed to re-queue bind sync job",
			zap.String("job_id", job.ID),
			zap.Error(qerr))
		return
	}
	s.log.Warn("bind sync deferred",
		zap.String("job_id", job.ID),
		zap.Int64("user_id", job.UserID),
		zap.Int("attempts", job.Attempts))
}
