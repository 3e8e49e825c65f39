package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/moimsport/matchfeed/internal/domain/match"
	qb "github.com/moimsport/matchfeed/internal/platform/querybuilder"
)

func renderConditions(t *testing.T, conditions []qb.Condition) (string, []any) {
	t.Helper()

	query, args, err := qb.Select("*").From("matches").Where(conditions...).ToSQL()
	if err != nil {
		t.Fatalf("ToSQL error: %v", err)
	}
	return query, args
}

func TestBuildMatchConditions_TeamOverridesHomeAway(t *testing.T) {
	t.Parallel()

	query, args := renderConditions(t, buildMatchConditions(match.SearchQuery{
		Team: "Arsenal",
		Home: "Chelsea",
		Away: "Liverpool",
	}))

	want := "SELECT * FROM matches WHERE (home_team ILIKE $1 OR away_team ILIKE $2)"
	if query != want {
		t.Fatalf("query = %q, want %q", query, want)
	}
	if len(args) != 2 || args[0] != "%Arsenal%" || args[1] != "%Arsenal%" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildMatchConditions_StrictAndInclusiveBounds(t *testing.T) {
	t.Parallel()

	from := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	query, _ := renderConditions(t, buildMatchConditions(match.SearchQuery{
		DateFrom:       &from,
		DateFromStrict: true,
	}))
	if !strings.Contains(query, "match_date > $1") {
		t.Fatalf("expected strict lower bound, got %q", query)
	}

	to := from.AddDate(0, 0, 10)
	query, _ = renderConditions(t, buildMatchConditions(match.SearchQuery{
		DateFrom: &from,
		DateTo:   &to,
	}))
	if !strings.Contains(query, "match_date >= $1") || !strings.Contains(query, "match_date <= $2") {
		t.Fatalf("expected inclusive interval, got %q", query)
	}
}

func TestBuildMatchConditions_CompetitionAndCategory(t *testing.T) {
	t.Parallel()

	category := 2
	query, args := renderConditions(t, buildMatchConditions(match.SearchQuery{
		CompetitionCodes: []string{"PL", "CL"},
		Category:         &category,
	}))

	want := "SELECT * FROM matches WHERE competition_code IN ($1, $2) AND category = $3"
	if query != want {
		t.Fatalf("query = %q, want %q", query, want)
	}
	if len(args) != 3 || args[0] != "PL" || args[1] != "CL" || args[2] != 2 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestMatchOrderBy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query match.SearchQuery
		want  []string
	}{
		{name: "default", query: match.SearchQuery{SortField: "match_date"}, want: []string{"match_date ASC", "id ASC"}},
		{name: "date desc", query: match.SearchQuery{SortField: "match_date", SortDesc: true}, want: []string{"match_date DESC", "id ASC"}},
		{name: "id desc", query: match.SearchQuery{SortField: "id", SortDesc: true}, want: []string{"id DESC"}},
		{name: "unknown falls back", query: match.SearchQuery{SortField: "venue"}, want: []string{"match_date ASC", "id ASC"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := matchOrderBy(tt.query)
			if strings.Join(got, ", ") != strings.Join(tt.want, ", ") {
				t.Fatalf("matchOrderBy = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchInsertModelBuildsInsertIgnore(t *testing.T) {
	t.Parallel()

	home := "Arsenal"
	query, args, err := qb.InsertModel("matches", matchInsertModel{
		ID:              101,
		CompetitionCode: "PL",
		MatchDate:       time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC),
		Status:          "SCHEDULED",
		HomeTeam:        &home,
	}, "ON CONFLICT (id) DO NOTHING")
	if err != nil {
		t.Fatalf("InsertModel error: %v", err)
	}

	want := "INSERT INTO matches (id, competition_code, match_date, status, home_team, away_team, venue, category) " +
		"VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (id) DO NOTHING"
	if query != want {
		t.Fatalf("query = %q, want %q", query, want)
	}
	if len(args) != 8 {
		t.Fatalf("expected 8 args, got=%d", len(args))
	}
}

func TestMatchTableModelToDomain(t *testing.T) {
	t.Parallel()

	row := matchTableModel{
		ID:              101,
		CompetitionCode: "PL",
		MatchDate:       time.Date(2026, 9, 1, 15, 0, 0, 0, time.FixedZone("KST", 9*3600)),
		Status:          "SCHEDULED",
	}
	out := row.toDomain()

	if out.MatchDate.Location() != time.UTC {
		t.Fatalf("match date not normalized to UTC: %v", out.MatchDate)
	}
	if out.HomeTeam != nil || out.AwayTeam != nil || out.Venue != nil || out.Category != nil {
		t.Fatalf("expected nil optional fields, got=%+v", out)
	}
}
