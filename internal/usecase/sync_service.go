package usecase

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/moimsport/matchfeed/internal/platform/logging"
)

type matchFetcher interface {
	FetchMatches(ctx context.Context, competitionCode string, dateFrom, dateTo time.Time) ([]ExternalMatch, error)
}

type matchSaver interface {
	SaveMatches(ctx context.Context, competitionCode string, items []ExternalMatch) (int, error)
}

// PassResult reports one ingestion pass. Started is false when the
// pass was skipped because another one was still running.
type PassResult struct {
	Started        bool
	InsertedByCode map[string]int
	TotalInserted  int
	FailedCodes    []string
}

// SyncService drives one full ingestion pass: for every tracked
// competition, fetch the upcoming window and persist it. Competitions
// are processed sequentially in configured order, and a failure in one
// never stops the rest.
type SyncService struct {
	fetcher      matchFetcher
	saver        matchSaver
	competitions []string
	windowDays   int
	location     *time.Location
	logger       *logging.Logger

	running atomic.Bool
	now     func() time.Time
}

func NewSyncService(
	fetcher matchFetcher,
	saver matchSaver,
	competitions []string,
	windowDays int,
	location *time.Location,
	logger *logging.Logger,
) *SyncService {
	if windowDays < 1 {
		windowDays = 10
	}
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = logging.Default()
	}

	cleaned := make([]string, 0, len(competitions))
	for _, code := range competitions {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			cleaned = append(cleaned, code)
		}
	}

	return &SyncService{
		fetcher:      fetcher,
		saver:        saver,
		competitions: cleaned,
		windowDays:   windowDays,
		location:     location,
		logger:       logger,
		now:          time.Now,
	}
}

// RunPass executes one ingestion pass over all tracked competitions.
// The window is recomputed from the current wall clock on every call.
// Overlapping invocations are rejected rather than queued.
func (s *SyncService) RunPass(ctx context.Context) PassResult {
	return s.runPass(ctx, s.competitions)
}

// RunPassFor syncs only the given competitions; an empty list falls
// back to the tracked set.
func (s *SyncService) RunPassFor(ctx context.Context, competitions []string) PassResult {
	cleaned := make([]string, 0, len(competitions))
	for _, code := range competitions {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			cleaned = append(cleaned, code)
		}
	}
	if len(cleaned) == 0 {
		cleaned = s.competitions
	}
	return s.runPass(ctx, cleaned)
}

func (s *SyncService) runPass(ctx context.Context, competitions []string) PassResult {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.RunPass")
	defer span.End()

	if !s.running.CompareAndSwap(false, true) {
		s.logger.WarnContext(ctx, "ingestion pass already running, skipping trigger")
		return PassResult{Started: false}
	}
	defer s.running.Store(false)
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "ingestion pass panicked", "panic", r)
		}
	}()

	today := s.now().In(s.location)
	dateFrom := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, s.location)
	dateTo := dateFrom.AddDate(0, 0, s.windowDays)

	result := PassResult{
		Started:        true,
		InsertedByCode: make(map[string]int, len(competitions)),
	}
	for _, code := range competitions {
		items, err := s.fetcher.FetchMatches(ctx, code, dateFrom, dateTo)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to fetch matches",
				"competition", code,
				"error", err,
			)
			result.FailedCodes = append(result.FailedCodes, code)
			continue
		}

		inserted, err := s.saver.SaveMatches(ctx, code, items)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to save matches",
				"competition", code,
				"fetched", len(items),
				"error", err,
			)
			result.FailedCodes = append(result.FailedCodes, code)
			continue
		}

		result.InsertedByCode[code] = inserted
		result.TotalInserted += inserted
		s.logger.InfoContext(ctx, "competition synced",
			"competition", code,
			"fetched", len(items),
			"inserted", inserted,
		)
	}

	s.logger.InfoContext(ctx, "ingestion pass finished",
		"date_from", dateFrom.Format("2006-01-02"),
		"date_to", dateTo.Format("2006-01-02"),
		"competitions", len(competitions),
		"failed", len(result.FailedCodes),
		"total_inserted", result.TotalInserted,
	)
	return result
}
