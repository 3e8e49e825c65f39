package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/moimsport/matchfeed/internal/domain/match"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	sortDirAsc  = "asc"
	sortDirDesc = "desc"
)

var sortableFields = map[string]bool{
	"match_date": true,
	"id":         true,
}

// SearchParams carries raw query-string values; normalization and
// validation happen inside Search.
type SearchParams struct {
	Sort        string
	DateFrom    string
	DateTo      string
	Team        string
	Home        string
	Away        string
	Venue       string
	Category    string
	Competition string
	Page        string
	PageSize    string
	All         string
}

// SearchResult echoes the normalized sort and filters actually applied
// alongside the page of rows, so callers can see what their raw
// parameters resolved to.
type SearchResult struct {
	Matches   []match.Match
	Total     int
	SortField string
	SortDir   string
	Filters   map[string]string
}

type MatchQueryService struct {
	matchRepo match.Repository
	now       func() time.Time
}

func NewMatchQueryService(matchRepo match.Repository) *MatchQueryService {
	return &MatchQueryService{
		matchRepo: matchRepo,
		now:       time.Now,
	}
}

func (s *MatchQueryService) Search(ctx context.Context, params SearchParams) (SearchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchQueryService.Search")
	defer span.End()

	sortField, sortDesc := parseSort(params.Sort)

	query := match.SearchQuery{
		SortField: sortField,
		SortDesc:  sortDesc,
	}
	filters := map[string]string{}

	dateFrom, err := parseDateBound(params.DateFrom, false)
	if err != nil {
		return SearchResult{}, fmt.Errorf("%w: date_from: %v", ErrInvalidInput, err)
	}
	dateTo, err := parseDateBound(params.DateTo, true)
	if err != nil {
		return SearchResult{}, fmt.Errorf("%w: date_to: %v", ErrInvalidInput, err)
	}
	if dateFrom != nil && dateTo != nil && dateFrom.After(*dateTo) {
		return SearchResult{}, fmt.Errorf("%w: date_from must not be after date_to", ErrInvalidInput)
	}
	switch {
	case dateFrom == nil && dateTo == nil:
		// Default to upcoming matches when no explicit bound is given.
		now := s.now().UTC()
		query.DateFrom = &now
		query.DateFromStrict = true
		filters["upcoming"] = "true"
	default:
		query.DateFrom = dateFrom
		query.DateTo = dateTo
		if dateFrom != nil {
			filters["date_from"] = dateFrom.Format(time.RFC3339)
		}
		if dateTo != nil {
			filters["date_to"] = dateTo.Format(time.RFC3339)
		}
	}

	if team := strings.TrimSpace(params.Team); team != "" {
		query.Team = team
		filters["team"] = team
	} else {
		if home := strings.TrimSpace(params.Home); home != "" {
			query.Home = home
			filters["home"] = home
		}
		if away := strings.TrimSpace(params.Away); away != "" {
			query.Away = away
			filters["away"] = away
		}
	}
	if venue := strings.TrimSpace(params.Venue); venue != "" {
		query.Venue = venue
		filters["venue"] = venue
	}
	if competition := strings.TrimSpace(params.Competition); competition != "" {
		codes := []string{}
		for _, code := range strings.Split(competition, ",") {
			code = strings.ToUpper(strings.TrimSpace(code))
			if code != "" {
				codes = append(codes, code)
			}
		}
		if len(codes) > 0 {
			query.CompetitionCodes = codes
			filters["competition"] = strings.Join(codes, ",")
		}
	}
	if raw := strings.TrimSpace(params.Category); raw != "" {
		category, err := strconv.Atoi(raw)
		if err != nil {
			return SearchResult{}, fmt.Errorf("%w: category must be an integer", ErrInvalidInput)
		}
		query.Category = &category
		filters["category"] = strconv.Itoa(category)
	}

	limit, offset, err := parsePagination(params.Page, params.PageSize, params.All)
	if err != nil {
		return SearchResult{}, err
	}
	query.Limit = limit
	query.Offset = offset

	rows, total, err := s.matchRepo.Search(ctx, query)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search matches: %w", err)
	}

	dir := sortDirAsc
	if sortDesc {
		dir = sortDirDesc
	}
	return SearchResult{
		Matches:   rows,
		Total:     total,
		SortField: sortField,
		SortDir:   dir,
		Filters:   filters,
	}, nil
}

// GetByID returns one match by its upstream identifier.
func (s *MatchQueryService) GetByID(ctx context.Context, rawID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchQueryService.GetByID")
	defer span.End()

	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil || id <= 0 {
		return match.Match{}, fmt.Errorf("%w: match id must be a positive integer", ErrInvalidInput)
	}

	row, found, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match %d: %w", id, err)
	}
	if !found {
		return match.Match{}, fmt.Errorf("%w: match %d", ErrNotFound, id)
	}
	return row, nil
}

// parseSort resolves a "field:direction" pair. An unknown field falls
// back to match_date while the requested direction still applies.
func parseSort(raw string) (string, bool) {
	field := "match_date"
	desc := false

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return field, desc
	}

	parts := strings.SplitN(raw, ":", 2)
	candidate := strings.ToLower(strings.TrimSpace(parts[0]))
	if sortableFields[candidate] {
		field = candidate
	}
	if len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[1]), sortDirDesc) {
		desc = true
	}
	return field, desc
}

// parseDateBound accepts either a bare calendar date or a full RFC 3339
// timestamp. Bare dates become start-of-day for lower bounds and
// end-of-day for upper bounds.
func parseDateBound(raw string, upper bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if t, err := time.Parse("2006-01-02", raw); err == nil {
		t = t.UTC()
		if upper {
			t = t.Add(24*time.Hour - time.Second)
		}
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or RFC 3339", raw)
}

func parsePagination(rawPage, rawPageSize, rawAll string) (int, int, error) {
	rawAll = strings.TrimSpace(rawAll)
	rawPageSize = strings.TrimSpace(rawPageSize)
	if strings.EqualFold(rawAll, "true") || strings.EqualFold(rawPageSize, "all") {
		return 0, 0, nil
	}

	page := 1
	if raw := strings.TrimSpace(rawPage); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return 0, 0, fmt.Errorf("%w: page must be a positive integer", ErrInvalidInput)
		}
		page = parsed
	}

	pageSize := defaultPageSize
	if rawPageSize != "" {
		parsed, err := strconv.Atoi(rawPageSize)
		if err != nil || parsed < 1 {
			return 0, 0, fmt.Errorf("%w: page_size must be a positive integer or \"all\"", ErrInvalidInput)
		}
		if parsed > maxPageSize {
			parsed = maxPageSize
		}
		pageSize = parsed
	}

	return pageSize, (page - 1) * pageSize, nil
}
