package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/admin/tg-bots/raffle-bot/internal/ports/jobs"
	"github.com/admin/tg-bots/raffle-bot/internal/ports/service"
)

// defaultRetryDelays лестница ретраев для джоб без своей: now + 1m + 10m + 30m
var defaultRetryDelays = []time.Duration{
	1 * time.Minute,
	10 * time.Minute,
	30 * time.Minute,
}

// Scheduler управляет запуском периодических джоб
type Scheduler struct {
	jobs           []jobs.Job
	alerterService service.IAlerterService
	log            *slog.Logger
	wg             sync.WaitGroup
}

// NewScheduler создаёт новый планировщик джоб
func NewScheduler(log *slog.Logger, alerterService service.IAlerterService) *Scheduler {
	return &Scheduler{
		jobs:           make([]jobs.Job, 0),
		alerterService: alerterService,
		log:            log,
	}
}

// Register регистрирует джобу в планировщике
func (s *Scheduler) Register(job jobs.Job) {
	s.jobs = append(s.jobs, job)
	s.log.Debug("job registered", "job_name", job.Name(), "total_jobs", len(s.jobs))
}

// Start запускает все зарегистрированные джобы, каждую в своей горутине. Останавливаются по ctx
func (s *Scheduler) Start(ctx context.Context) error {
	if len(s.jobs) == 0 {
		s.log.Error("no jobs registered, scheduler not started")
		return nil
	}

	s.log.Info("starting job scheduler", "jobs_count", len(s.jobs))

	for _, job := range s.jobs {
		job := job
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runJob(ctx, job)
		}()
	}

	return nil
}

// Wait ждёт остановки всех джоб после отмены контекста
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// runJob запускает отдельную джобу в цикле
func (s *Scheduler) runJob(ctx context.Context, job jobs.Job) {
	jobName := job.Name()
	for {
		now := time.Now()
		timer := time.NewTimer(job.NextRun(now).Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("job stopped by context", "job_name", jobName)
			return
		case <-timer.C:
			attemptErrors, err := s.executeJobWithRetry(ctx, job)
			switch {
			case err == nil:
				s.log.Debug("job executed successfully", "job_name", jobName)
			case ctx.Err() != nil:
				s.log.Info("job interrupted by shutdown", "job_name", jobName, "error", err)
			default:
				s.log.Error("job failed after all retries",
					"job_name", jobName,
					"attempts", len(attemptErrors),
					"error", err,
				)
				s.sendAlert(ctx, jobName, attemptErrors)
			}
		}
	}
}

// jobAttemptError представляет ошибку конкретной попытки выполнения джобы
type jobAttemptError struct {
	attempt int
	err     error
}

func retryDelays(job jobs.Job) []time.Duration {
	if r, ok := job.(jobs.Retryable); ok {
		return r.RetryDelays()
	}
	return defaultRetryDelays
}

// executeJobWithRetry выполняет джобу с retry при ошибках.
// Возвращает список ошибок попыток и финальную ошибку
func (s *Scheduler) executeJobWithRetry(ctx context.Context, job jobs.Job) ([]jobAttemptError, error) {
	jobName := job.Name()
	retries := retryDelays(job)

	var attemptErrors []jobAttemptError

	// Первая попытка
	err := job.Run(ctx)
	if err == nil {
		return nil, nil
	}
	attemptErrors = append(attemptErrors, jobAttemptError{attempt: 1, err: err})
	s.log.Warn("job execution failed",
		"job_name", jobName,
		"attempt", 1,
		"retries_remaining", len(retries),
		"error", err,
	)

	// Retry
	for i, retryDelay := range retries {
		attemptNum := i + 2
		timer := time.NewTimer(retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attemptErrors, ctx.Err()
		case <-timer.C:
			err = job.Run(ctx)
			if err == nil {
				return nil, nil
			}
			attemptErrors = append(attemptErrors, jobAttemptError{attempt: attemptNum, err: err})
			s.log.Warn("job retry failed",
				"job_name", jobName,
				"attempt", attemptNum,
				"retries_remaining", len(retries)-i-1,
				"error", err,
			)
		}
	}

	return attemptErrors, fmt.Errorf("all attempts failed (total attempts: %d): %w", 1+len(retries), err)
}

// sendAlert алертит на финальную ошибку после ретраев
func (s *Scheduler) sendAlert(ctx context.Context, jobName string, attemptErrors []jobAttemptError) {
	if s.alerterService == nil {
		return
	}

	var errorLines []string
	for _, attemptErr := range attemptErrors {
		errorLines = append(errorLines, fmt.Sprintf("Попытка %d: %s", attemptErr.attempt, attemptErr.err.Error()))
	}

	var message strings.Builder
	message.WriteString("⚠️ Финальная ошибка планировщика, ретраи исчерпаны\n\n")
	message.WriteString(fmt.Sprintf("Джоба: %s\n\n", jobName))
	message.WriteString("Ошибки попыток:\n")
	message.WriteString(strings.Join(errorLines, "\n"))

	if alertErr := s.alerterService.SendAlert(ctx, message.String()); alertErr != nil {
		s.log.Warn("failed to send job failure alert",
			"job_name", jobName,
			"error", alertErr,
		)
	}
}
