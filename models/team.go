package models

import "time"

type Team struct {
	ID             int       `json:"id" db:"id"`
	TournamentID   int       `json:"tournament_id" db:"tournament_id"`
	Name           string    `json:"name" db:"name"`
	LeaderUsername string    `json:"leader_username" db:"leader_username"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	PhotoKey *string `json:"-" db:"photo_key"`
	PhotoURL *string `json:"photo_url,omitempty" db:"-"`
}
