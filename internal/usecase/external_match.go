package usecase

// ExternalMatch is one match row as delivered by the upstream football
// API, before validation and date parsing.
type ExternalMatch struct {
	ID              int64
	CompetitionCode string
	UTCDate         string
	Status          string
	HomeTeam        *string
	AwayTeam        *string
	Venue           *string
	Category        *int
}
