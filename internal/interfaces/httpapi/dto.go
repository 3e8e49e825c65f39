package httpapi

import (
	"time"

	"github.com/moimsport/matchfeed/internal/domain/match"
)

type matchDTO struct {
	ID              int64   `json:"id"`
	CompetitionCode string  `json:"competitionCode"`
	MatchDate       string  `json:"matchDate"`
	Status          string  `json:"status"`
	HomeTeam        *string `json:"homeTeam"`
	AwayTeam        *string `json:"awayTeam"`
	Venue           *string `json:"venue"`
	Category        *int    `json:"category"`
}

type matchListDTO struct {
	Rows      []matchDTO        `json:"rows"`
	Total     int               `json:"total"`
	SortField string            `json:"sortField"`
	SortDir   string            `json:"sortDir"`
	Filters   map[string]string `json:"filters"`
}

type syncPassDTO struct {
	Started        bool           `json:"started"`
	TotalInserted  int            `json:"totalInserted"`
	InsertedByCode map[string]int `json:"insertedByCode,omitempty"`
	FailedCodes    []string       `json:"failedCodes,omitempty"`
}

func matchToDTO(m match.Match) matchDTO {
	return matchDTO{
		ID:              m.ID,
		CompetitionCode: m.CompetitionCode,
		MatchDate:       m.MatchDate.UTC().Format(time.RFC3339),
		Status:          m.Status,
		HomeTeam:        m.HomeTeam,
		AwayTeam:        m.AwayTeam,
		Venue:           m.Venue,
		Category:        m.Category,
	}
}
