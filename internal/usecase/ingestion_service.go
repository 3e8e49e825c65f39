package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/moimsport/matchfeed/internal/domain/match"
	"github.com/moimsport/matchfeed/internal/platform/logging"
)

// IngestionService validates upstream match rows and persists them.
// A bad record is logged and skipped: one malformed match must never
// sink the rest of the batch.
type IngestionService struct {
	matchRepo match.Repository
	logger    *logging.Logger
}

func NewIngestionService(matchRepo match.Repository, logger *logging.Logger) *IngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestionService{
		matchRepo: matchRepo,
		logger:    logger,
	}
}

// SaveMatches stores the given upstream rows for one competition and
// returns how many rows were newly inserted. Rows whose id already
// exists are left untouched.
func (s *IngestionService) SaveMatches(ctx context.Context, competitionCode string, items []ExternalMatch) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.SaveMatches")
	defer span.End()

	competitionCode = strings.ToUpper(strings.TrimSpace(competitionCode))
	if len(items) == 0 {
		return 0, nil
	}

	inserted := 0
	for _, item := range items {
		if item.ID <= 0 {
			s.logger.WarnContext(ctx, "skipping match without a usable id",
				"competition", competitionCode,
			)
			continue
		}

		matchDate, err := time.Parse(time.RFC3339, strings.TrimSpace(item.UTCDate))
		if err != nil {
			s.logger.WarnContext(ctx, "skipping match with unparseable kickoff date",
				"match_id", item.ID,
				"competition", competitionCode,
				"utc_date", item.UTCDate,
				"error", err,
			)
			continue
		}

		code := strings.ToUpper(strings.TrimSpace(item.CompetitionCode))
		if code == "" {
			code = competitionCode
		}

		row := match.Match{
			ID:              item.ID,
			CompetitionCode: code,
			MatchDate:       matchDate.UTC(),
			Status:          match.NormalizeStatus(item.Status),
			HomeTeam:        trimOptional(item.HomeTeam),
			AwayTeam:        trimOptional(item.AwayTeam),
			Venue:           trimOptional(item.Venue),
			Category:        item.Category,
		}

		created, err := s.matchRepo.InsertIgnore(ctx, row)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to store match",
				"match_id", row.ID,
				"competition", row.CompetitionCode,
				"match_date", row.MatchDate,
				"error", err,
			)
			continue
		}
		if created {
			inserted++
		}
	}

	return inserted, nil
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	out := strings.TrimSpace(*v)
	if out == "" {
		return nil
	}
	return &out
}
