package queue

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"novelhub-backend/internal/config"
	"novelhub-backend/internal/shared"
	"novelhub-backend/pkg/logger"
)

// PeriodicJob là một cron entry của scheduler
type PeriodicJob struct {
	Name     string
	Cronspec string
	TaskType string
	Payload  interface{}
	Timeout  time.Duration
}

// PeriodicJobs trả về danh sách job định kỳ theo config
func PeriodicJobs(jobConfig config.JobConfig) []PeriodicJob {
	flushEvery := jobConfig.ViewFlushInterval
	if flushEvery <= 0 {
		flushEvery = 5 * time.Minute
	}

	return []PeriodicJob{
		{
			// Hourly: gia hạn hoặc expire subscription hết hạn
			Name:     "SubscriptionRenewOrExpire",
			Cronspec: "0 * * * *",
			TaskType: shared.TypeSubscriptionRenew,
			Payload:  struct{}{},
			Timeout:  10 * time.Minute,
		},
		{
			Name:     "FlushViewCounters",
			Cronspec: fmt.Sprintf("@every %s", flushEvery),
			TaskType: shared.TypeFlushViews,
			Payload:  struct{}{},
			Timeout:  2 * time.Minute,
		},
		{
			// Daily at 3 AM
			Name:     "CleanupOldNotifications",
			Cronspec: "0 3 * * *",
			TaskType: shared.TypeCleanupNotifications,
			Payload:  shared.CleanupNotificationsPayload{Days: jobConfig.CleanupRetentionDays},
			Timeout:  5 * time.Minute,
		},
	}
}

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(opt asynq.RedisClientOpt, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Location: time.UTC,
		LogLevel: asynq.InfoLevel,
	})

	return &Scheduler{scheduler: scheduler, jobConfig: jobConfig}
}

// RegisterJobs đăng ký toàn bộ PeriodicJobs
func (s *Scheduler) RegisterJobs() error {
	for _, job := range PeriodicJobs(s.jobConfig) {
		task, err := NewTask(job.TaskType, job.Payload)
		if err != nil {
			return err
		}

		if _, err := s.scheduler.Register(job.Cronspec, task, asynq.Timeout(job.Timeout), asynq.MaxRetry(1)); err != nil {
			logger.Error(fmt.Sprintf("Failed to register %s job", job.Name), err)
			return err
		}

		logger.Info("Registered periodic job", map[string]interface{}{
			"job":      job.Name,
			"cronspec": job.Cronspec,
		})
	}
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
