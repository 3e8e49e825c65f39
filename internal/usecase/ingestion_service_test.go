package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/moimsport/matchfeed/internal/domain/match"
	"github.com/moimsport/matchfeed/internal/platform/logging"
)

func TestIngestionService_SaveMatches_EmptyInput(t *testing.T) {
	t.Parallel()

	repo := &stubMatchRepo{}
	svc := NewIngestionService(repo, logging.NewNop())

	inserted, err := svc.SaveMatches(context.Background(), "PL", nil)
	if err != nil {
		t.Fatalf("SaveMatches error: %v", err)
	}
	if inserted != 0 {
		t.Fatalf("expected 0 inserted, got=%d", inserted)
	}
	if len(repo.inserted) != 0 {
		t.Fatalf("expected no repository calls, got=%d", len(repo.inserted))
	}
}

func TestIngestionService_SaveMatches_SkipsMalformedRows(t *testing.T) {
	t.Parallel()

	repo := &stubMatchRepo{}
	svc := NewIngestionService(repo, logging.NewNop())

	home := "Arsenal"
	items := []ExternalMatch{
		{ID: 101, UTCDate: "2026-09-01T15:00:00Z", Status: "SCHEDULED", HomeTeam: &home},
		{ID: 0, UTCDate: "2026-09-01T15:00:00Z"},
		{ID: 102, UTCDate: "not-a-date"},
		{ID: 103, UTCDate: "2026-09-02T18:30:00Z"},
	}

	inserted, err := svc.SaveMatches(context.Background(), "pl", items)
	if err != nil {
		t.Fatalf("SaveMatches error: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("expected 2 inserted, got=%d", inserted)
	}
	if len(repo.inserted) != 2 {
		t.Fatalf("expected 2 repository calls, got=%d", len(repo.inserted))
	}
	first := repo.inserted[0]
	if first.ID != 101 || first.CompetitionCode != "PL" {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if first.HomeTeam == nil || *first.HomeTeam != "Arsenal" {
		t.Fatalf("expected home team Arsenal, got=%v", first.HomeTeam)
	}
	want := time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)
	if !first.MatchDate.Equal(want) {
		t.Fatalf("unexpected match date: %v", first.MatchDate)
	}
}

func TestIngestionService_SaveMatches_InsertFailureDoesNotAbortBatch(t *testing.T) {
	t.Parallel()

	repo := &stubMatchRepo{failIDs: map[int64]bool{102: true}}
	svc := NewIngestionService(repo, logging.NewNop())

	items := []ExternalMatch{
		{ID: 101, UTCDate: "2026-09-01T15:00:00Z"},
		{ID: 102, UTCDate: "2026-09-01T17:00:00Z"},
		{ID: 103, UTCDate: "2026-09-01T19:00:00Z"},
	}

	inserted, err := svc.SaveMatches(context.Background(), "PL", items)
	if err != nil {
		t.Fatalf("SaveMatches error: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("expected 2 inserted, got=%d", inserted)
	}
}

func TestIngestionService_SaveMatches_DuplicateIDNotCounted(t *testing.T) {
	t.Parallel()

	repo := &stubMatchRepo{existingIDs: map[int64]bool{101: true}}
	svc := NewIngestionService(repo, logging.NewNop())

	items := []ExternalMatch{
		{ID: 101, UTCDate: "2026-09-01T15:00:00Z"},
		{ID: 104, UTCDate: "2026-09-01T15:00:00Z"},
	}

	inserted, err := svc.SaveMatches(context.Background(), "PL", items)
	if err != nil {
		t.Fatalf("SaveMatches error: %v", err)
	}
	if inserted != 1 {
		t.Fatalf("expected 1 inserted, got=%d", inserted)
	}
}

type stubMatchRepo struct {
	inserted    []match.Match
	existingIDs map[int64]bool
	failIDs     map[int64]bool

	searchRows  []match.Match
	searchTotal int
	searchErr   error
	lastQuery   match.SearchQuery

	getRow   match.Match
	getFound bool
	getErr   error
}

func (r *stubMatchRepo) InsertIgnore(_ context.Context, m match.Match) (bool, error) {
	if r.failIDs[m.ID] {
		return false, errors.New("insert failed")
	}
	if r.existingIDs[m.ID] {
		return false, nil
	}
	r.inserted = append(r.inserted, m)
	return true, nil
}

func (r *stubMatchRepo) Search(_ context.Context, q match.SearchQuery) ([]match.Match, int, error) {
	r.lastQuery = q
	return r.searchRows, r.searchTotal, r.searchErr
}

func (r *stubMatchRepo) GetByID(_ context.Context, _ int64) (match.Match, bool, error) {
	return r.getRow, r.getFound, r.getErr
}
