package subscription

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// JobID identifies a scheduled job.
type JobID = cron.EntryID

// Scheduler runs jobs on a fixed interval until they are removed.
type Scheduler interface {
	Every(interval time.Duration, job func()) (JobID, error)
	Remove(id JobID)
}

// CronScheduler is a Scheduler backed by robfig/cron.
type CronScheduler struct {
	cron *cron.Cron
}

// NewCronScheduler creates and starts a cron scheduler.
func NewCronScheduler(opts ...cron.Option) *CronScheduler {
	c := cron.New(opts...)
	c.Start()
	return &CronScheduler{cron: c}
}

// Every registers job to run every interval. Intervals are rounded down to
// whole seconds, with a one second minimum.
func (s *CronScheduler) Every(interval time.Duration, job func()) (JobID, error) {
	if interval <= 0 {
		return 0, ErrInvalidInterval
	}
	interval = max(interval.Truncate(time.Second), time.Second)
	return s.cron.AddFunc(fmt.Sprintf("@every %s", interval), job)
}

// Remove unschedules the job. Runs already in progress are not interrupted.
func (s *CronScheduler) Remove(id JobID) {
	s.cron.Remove(id)
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *CronScheduler) Stop() {
	<-s.cron.Stop().Done()
}
