package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/moimsport/matchfeed/internal/domain/match"
	qb "github.com/moimsport/matchfeed/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// InsertIgnore stores one match row, silently skipping an id that
// already exists. Returns true when a new row was written.
func (r *MatchRepository) InsertIgnore(ctx context.Context, m match.Match) (bool, error) {
	insertModel := matchInsertModel{
		ID:              m.ID,
		CompetitionCode: m.CompetitionCode,
		MatchDate:       m.MatchDate,
		Status:          m.Status,
		HomeTeam:        m.HomeTeam,
		AwayTeam:        m.AwayTeam,
		Venue:           m.Venue,
		Category:        m.Category,
	}

	query, args, err := qb.InsertModel("matches", insertModel, "ON CONFLICT (id) DO NOTHING")
	if err != nil {
		return false, fmt.Errorf("build insert match query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert match id=%d: %w", m.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert match id=%d rows affected: %w", m.ID, err)
	}
	return affected > 0, nil
}

// Search runs the same predicate twice: once for the total count and
// once for the requested page, so pagination math stays consistent.
func (r *MatchRepository) Search(ctx context.Context, q match.SearchQuery) ([]match.Match, int, error) {
	conditions := buildMatchConditions(q)

	countQuery, countArgs, err := qb.Select("COUNT(*)").From("matches").
		Where(conditions...).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count matches query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count matches: %w", err)
	}

	builder := qb.Select("*").From("matches").
		Where(conditions...).
		OrderBy(matchOrderBy(q)...)
	if q.Limit > 0 {
		builder = builder.Limit(q.Limit).Offset(q.Offset)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build select matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("select matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, total, nil
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match by id query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match by id: %w", err)
	}
	return row.toDomain(), true, nil
}

func buildMatchConditions(q match.SearchQuery) []qb.Condition {
	conditions := make([]qb.Condition, 0, 6)

	if len(q.CompetitionCodes) > 0 {
		values := make([]any, 0, len(q.CompetitionCodes))
		for _, code := range q.CompetitionCodes {
			values = append(values, code)
		}
		conditions = append(conditions, qb.In("competition_code", values))
	}
	if q.DateFrom != nil {
		if q.DateFromStrict {
			conditions = append(conditions, qb.Gt("match_date", *q.DateFrom))
		} else {
			conditions = append(conditions, qb.Gte("match_date", *q.DateFrom))
		}
	}
	if q.DateTo != nil {
		conditions = append(conditions, qb.Lte("match_date", *q.DateTo))
	}
	if q.Team != "" {
		conditions = append(conditions, qb.Or(
			qb.ILike("home_team", q.Team),
			qb.ILike("away_team", q.Team),
		))
	} else {
		if q.Home != "" {
			conditions = append(conditions, qb.ILike("home_team", q.Home))
		}
		if q.Away != "" {
			conditions = append(conditions, qb.ILike("away_team", q.Away))
		}
	}
	if q.Venue != "" {
		conditions = append(conditions, qb.ILike("venue", q.Venue))
	}
	if q.Category != nil {
		conditions = append(conditions, qb.Eq("category", *q.Category))
	}

	return conditions
}

func matchOrderBy(q match.SearchQuery) []string {
	column := "match_date"
	if q.SortField == "id" {
		column = "id"
	}
	direction := "ASC"
	if q.SortDesc {
		direction = "DESC"
	}
	if column == "id" {
		return []string{"id " + direction}
	}
	// id as deterministic tie-break for identical kickoff times.
	return []string{column + " " + direction, "id ASC"}
}
