package models

import "time"

// TournamentStatus mirrors the ENUM in the database.
type TournamentStatus string

const (
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusFinished     TournamentStatus = "finished"
	StatusCanceled     TournamentStatus = "canceled"
)

type Tournament struct {
	ID           int              `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	MaxTeams     int              `json:"max_teams" db:"max_teams"`
	Status       TournamentStatus `json:"status" db:"status"`
	WinnerTeamID *int             `json:"winner_team_id,omitempty" db:"winner_team_id"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`

	// Optional related entities, loaded on demand.
	Teams   []Team  `json:"teams,omitempty" db:"-"`
	Matches []Match `json:"matches,omitempty" db:"-"`
}
