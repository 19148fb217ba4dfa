package models

import "time"

// Slot identifies the A or B position of a bracket match.
type Slot int

const (
	SlotA Slot = 0
	SlotB Slot = 1
)

// Match is one node of a single-elimination bracket. RoundIndex and
// MatchIndex are 0-based; round 0 is the first round and the highest
// round holds the single final. A nil team reference means the slot is
// not determined yet (later round) or is a bye (round 0 padding).
type Match struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	RoundIndex   int       `json:"round_index" db:"round_index"`
	MatchIndex   int       `json:"match_index" db:"match_index"`
	TeamAID      *int      `json:"team_a_id,omitempty" db:"team_a_id"`
	TeamBID      *int      `json:"team_b_id,omitempty" db:"team_b_id"`
	WinnerTeamID *int      `json:"winner_team_id,omitempty" db:"winner_team_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// HasTeam reports whether teamID occupies one of the match's slots.
func (m *Match) HasTeam(teamID int) bool {
	if m.TeamAID != nil && *m.TeamAID == teamID {
		return true
	}
	return m.TeamBID != nil && *m.TeamBID == teamID
}

// Decided reports whether a winner has been recorded.
func (m *Match) Decided() bool {
	return m.WinnerTeamID != nil
}
