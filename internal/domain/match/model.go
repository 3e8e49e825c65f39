package match

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusTimed     = "TIMED"
	StatusInPlay    = "IN_PLAY"
	StatusPaused    = "PAUSED"
	StatusFinished  = "FINISHED"
	StatusPostponed = "POSTPONED"
	StatusCancelled = "CANCELLED"
)

// Match is one scheduled fixture harvested from the upstream provider.
// ID is the provider's identifier and the table's primary key.
type Match struct {
	ID              int64
	CompetitionCode string
	MatchDate       time.Time
	Status          string
	HomeTeam        *string
	AwayTeam        *string
	Venue           *string
	Category        *int
}

// NormalizeStatus keeps the upstream label opaque but trims and
// uppercases it; an absent label defaults to SCHEDULED.
func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsLiveStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusInPlay, StatusPaused, "LIVE", "HT":
		return true
	default:
		return false
	}
}

func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinished, "FT", "AET", "PEN", "AWARDED":
		return true
	default:
		return false
	}
}
