package postgres

import (
	"database/sql"
	"time"

	"github.com/moimsport/matchfeed/internal/domain/match"
)

type matchTableModel struct {
	ID              int64          `db:"id"`
	CompetitionCode string         `db:"competition_code"`
	MatchDate       time.Time      `db:"match_date"`
	Status          string         `db:"status"`
	HomeTeam        sql.NullString `db:"home_team"`
	AwayTeam        sql.NullString `db:"away_team"`
	Venue           sql.NullString `db:"venue"`
	Category        sql.NullInt64  `db:"category"`
	CreatedAt       time.Time      `db:"created_at"`
}

type matchInsertModel struct {
	ID              int64     `db:"id"`
	CompetitionCode string    `db:"competition_code"`
	MatchDate       time.Time `db:"match_date"`
	Status          string    `db:"status"`
	HomeTeam        *string   `db:"home_team"`
	AwayTeam        *string   `db:"away_team"`
	Venue           *string   `db:"venue"`
	Category        *int      `db:"category"`
}

func (m matchTableModel) toDomain() match.Match {
	return match.Match{
		ID:              m.ID,
		CompetitionCode: m.CompetitionCode,
		MatchDate:       m.MatchDate.UTC(),
		Status:          m.Status,
		HomeTeam:        nullStringToPtr(m.HomeTeam),
		AwayTeam:        nullStringToPtr(m.AwayTeam),
		Venue:           nullStringToPtr(m.Venue),
		Category:        nullInt64ToIntPtr(m.Category),
	}
}

func nullStringToPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	out := v.String
	return &out
}

func nullInt64ToIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	out := int(v.Int64)
	return &out
}
