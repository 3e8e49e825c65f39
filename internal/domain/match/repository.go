package match

import (
	"context"
	"time"
)

// SearchQuery is the normalized predicate the query engine hands to
// storage. Sort and pagination fields are already validated; a Limit
// of zero or below means no LIMIT/OFFSET at all.
type SearchQuery struct {
	CompetitionCodes []string
	DateFrom         *time.Time
	DateFromStrict   bool
	DateTo           *time.Time
	Team             string
	Home             string
	Away             string
	Venue            string
	Category         *int
	SortField        string
	SortDesc         bool
	Limit            int
	Offset           int
}

// Repository exposes match persistence. Rows are insert-only: the
// writer never updates or deletes what a previous pass stored.
type Repository interface {
	InsertIgnore(ctx context.Context, m Match) (bool, error)
	Search(ctx context.Context, q SearchQuery) ([]Match, int, error)
	GetByID(ctx context.Context, id int64) (Match, bool, error)
}
