// Package job holds the scheduled background work of the server.
package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/iliyamo/swapi-mirror/internal/logger"
	"github.com/iliyamo/swapi-mirror/internal/service"
)

// SyncRunner synchronizes every resource kind.  *service.Synchronizer
// satisfies it.
type SyncRunner interface {
	SyncAll(ctx context.Context) ([]service.SyncResult, error)
}

// SyncJob re-mirrors all six resources on a schedule.
type SyncJob struct {
	runner  SyncRunner
	timeout time.Duration
}

func NewSyncJob(runner SyncRunner, timeout time.Duration) *SyncJob {
	return &SyncJob{runner: runner, timeout: timeout}
}

// Run implements cron.Job.
func (j *SyncJob) Run() {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	results, err := j.runner.SyncAll(ctx)
	upserted := 0
	for _, r := range results {
		upserted += r.TotalUpserted
	}
	if err != nil {
		logger.Warningf("scheduled sync: %d kinds ok, %d rows upserted, errors: %v", len(results), upserted, err)
		return
	}
	logger.Infof("scheduled sync: %d kinds ok, %d rows upserted", len(results), upserted)
}

// printfLogger routes cron's own messages into the application log.
type printfLogger struct{}

func (printfLogger) Printf(format string, args ...any) { logger.Infof(format, args...) }

// NewScheduler builds a UTC cron running j at spec (standard five-field
// syntax or a descriptor such as "@every 6h").  Overlapping runs are
// skipped and panics recovered.  The returned cron is not started.
func NewScheduler(spec string, j cron.Job) (*cron.Cron, error) {
	l := cron.PrintfLogger(printfLogger{})
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)
	if _, err := c.AddJob(spec, j); err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", spec, err)
	}
	return c, nil
}
