package job

import (
	"context"
	"fmt"
	"time"

	rds "sourcing/internal/platform/redis"
)

type JobService struct{ redis *rds.Service }

func NewJobService(redis *rds.Service) *JobService { return &JobService{redis: redis} }

func (s *JobService) GetJobStatus(ctx context.Context, jobID string) (*Job, error) {
	var job Job
	if err := s.redis.CacheGet(ctx, key(jobID), &job); err != nil {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	return &job, nil
}

// InitPending records a job the moment it is enqueued so the status
// endpoint can answer before a worker picks it up.
func (s *JobService) InitPending(ctx context.Context, snapshot Job) error {
	snapshot.Status = StatusPending
	snapshot.StartedAt = time.Now().UTC()
	return s.store(ctx, snapshot)
}

func (s *JobService) SetRunning(ctx context.Context, jobID, storeJobID string) error {
	return s.update(ctx, jobID, func(j *Job) {
		j.Status = StatusRunning
		j.StoreJobID = storeJobID
	})
}

func (s *JobService) SetCompleted(ctx context.Context, jobID string, inserted, errorCount int) error {
	return s.update(ctx, jobID, func(j *Job) {
		j.Status = StatusCompleted
		j.Inserted = inserted
		j.ErrorCount = errorCount
		now := time.Now().UTC()
		j.FinishedAt = &now
	})
}

func (s *JobService) SetFailed(ctx context.Context, jobID, message string) error {
	return s.update(ctx, jobID, func(j *Job) {
		j.Status = StatusFailed
		j.Error = message
		now := time.Now().UTC()
		j.FinishedAt = &now
	})
}

func (s *JobService) update(ctx context.Context, jobID string, mutate func(*Job)) error {
	var job Job
	_ = s.redis.CacheGet(ctx, key(jobID), &job)
	job.JobID = jobID
	mutate(&job)
	return s.store(ctx, job)
}

func (s *JobService) store(ctx context.Context, job Job) error {
	if err := s.redis.CacheSet(ctx, key(job.JobID), job, ttl(job.Status)); err != nil {
		return err
	}
	// Publish an update event for SSE listeners
	_ = s.redis.Client().Publish(ctx, key(job.JobID), "updated").Err()
	return nil
}

func key(id string) string { return "import:job:" + id }

func ttl(s Status) int {
	if s.Terminal() {
		return 3600
	}
	return 600
}
