package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/moimsport/matchfeed/internal/platform/logging"
	"github.com/moimsport/matchfeed/internal/usecase"
)

type passRunner interface {
	RunPass(ctx context.Context) usecase.PassResult
}

// Scheduler fires one ingestion pass at process start and then once a
// day at the configured wall-clock time.
type Scheduler struct {
	cron        *cron.Cron
	runner      passRunner
	passTimeout time.Duration
	logger      *logging.Logger
}

func New(runner passRunner, hour, minute int, location *time.Location, passTimeout time.Duration, logger *logging.Logger) (*Scheduler, error) {
	if runner == nil {
		return nil, fmt.Errorf("pass runner is required")
	}
	if location == nil {
		location = time.Local
	}
	if passTimeout <= 0 {
		passTimeout = 5 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}

	s := &Scheduler{
		cron:        cron.New(cron.WithLocation(location)),
		runner:      runner,
		passTimeout: passTimeout,
		logger:      logger,
	}

	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	if _, err := s.cron.AddFunc(spec, s.trigger); err != nil {
		return nil, fmt.Errorf("register daily trigger %q: %w", spec, err)
	}
	return s, nil
}

// Start runs one pass immediately so a fresh deployment fills its
// window without waiting for the first daily tick, then arms the cron.
func (s *Scheduler) Start() {
	go s.trigger()
	s.cron.Start()
	s.logger.Info("ingestion scheduler started")
}

// Stop halts the cron and waits for an in-flight trigger to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("ingestion scheduler stopped")
}

func (s *Scheduler) trigger() {
	ctx, cancel := context.WithTimeout(context.Background(), s.passTimeout)
	defer cancel()

	result := s.runner.RunPass(ctx)
	if !result.Started {
		return
	}
	s.logger.InfoContext(ctx, "scheduled ingestion pass completed",
		"total_inserted", result.TotalInserted,
		"failed_competitions", len(result.FailedCodes),
	)
}
