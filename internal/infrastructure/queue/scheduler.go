package queue

import (
	"time"

	"github.com/hibiken/asynq"

	"shop-backend/internal/config"
	"shop-backend/internal/shared"
	"shop-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(cfg config.RedisConfig) *Scheduler {
	return &Scheduler{
		scheduler: asynq.NewScheduler(RedisOpt(cfg), &asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		}),
	}
}

// RegisterJobs registers every periodic task.
func (s *Scheduler) RegisterJobs() error {
	// Every 5 minutes: cancel orders whose payment never completed.
	_, err := s.scheduler.Register(
		"*/5 * * * *",
		asynq.NewTask(shared.TypeExpirePendingOrders, nil),
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register ExpirePendingOrders job", err)
		return err
	}
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
