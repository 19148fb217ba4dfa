package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aldiyar-dev/knockout-system/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
	ErrMatchTeamInvalid       = errors.New("match team conflict or invalid")
)

// MatchRepository is the match record store: the durable table of bracket
// matches keyed by (tournament, round, match). Write methods take an
// SQLExecutor so a record-winner-and-propagate cycle can run inside one
// transaction.
type MatchRepository interface {
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Match, error)
	ReplaceForTournament(ctx context.Context, exec SQLExecutor, tournamentID int, matches []*models.Match) error
	UpdateWinner(ctx context.Context, exec SQLExecutor, matchID int, winnerTeamID int) error
	UpdateSlot(ctx context.Context, exec SQLExecutor, matchID int, slot models.Slot, teamID int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, round_index, match_index, team_a_id, team_b_id, winner_team_id, created_at`

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM bracket_matches
		WHERE id = $1`

	match := &models.Match{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&match.ID,
		&match.TournamentID,
		&match.RoundIndex,
		&match.MatchIndex,
		&match.TeamAID,
		&match.TeamBID,
		&match.WinnerTeamID,
		&match.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

// ListByTournament reads through exec when given so propagation sweeps
// see their own transaction's writes; a nil exec falls back to the pool.
func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Match, error) {
	if exec == nil {
		exec = r.db
	}
	query := `
		SELECT ` + matchColumns + `
		FROM bracket_matches
		WHERE tournament_id = $1
		ORDER BY round_index ASC, match_index ASC`

	rows, err := exec.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var match models.Match
		if scanErr := rows.Scan(
			&match.ID,
			&match.TournamentID,
			&match.RoundIndex,
			&match.MatchIndex,
			&match.TeamAID,
			&match.TeamBID,
			&match.WinnerTeamID,
			&match.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, &match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

// ReplaceForTournament deletes the tournament's existing bracket and
// inserts the given matches. Run it inside a transaction so a regenerated
// bracket replaces the old one atomically.
func (r *postgresMatchRepository) ReplaceForTournament(ctx context.Context, exec SQLExecutor, tournamentID int, matches []*models.Match) error {
	if err := r.DeleteByTournament(ctx, exec, tournamentID); err != nil {
		return err
	}

	query := `
		INSERT INTO bracket_matches
			(tournament_id, round_index, match_index, team_a_id, team_b_id, winner_team_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	for _, match := range matches {
		err := exec.QueryRowContext(ctx, query,
			tournamentID,
			match.RoundIndex,
			match.MatchIndex,
			match.TeamAID,
			match.TeamBID,
			match.WinnerTeamID,
		).Scan(&match.ID, &match.CreatedAt)
		if err != nil {
			return r.handleMatchError(err)
		}
		match.TournamentID = tournamentID
	}
	return nil
}

func (r *postgresMatchRepository) UpdateWinner(ctx context.Context, exec SQLExecutor, matchID int, winnerTeamID int) error {
	query := `UPDATE bracket_matches SET winner_team_id = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, winnerTeamID, matchID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateSlot(ctx context.Context, exec SQLExecutor, matchID int, slot models.Slot, teamID int) error {
	column := "team_a_id"
	if slot == models.SlotB {
		column = "team_b_id"
	}
	query := fmt.Sprintf(`UPDATE bracket_matches SET %s = $1 WHERE id = $2`, column)
	result, err := exec.ExecContext(ctx, query, teamID, matchID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	query := `DELETE FROM bracket_matches WHERE tournament_id = $1`
	if _, err := exec.ExecContext(ctx, query, tournamentID); err != nil {
		return fmt.Errorf("failed to delete matches for tournament %d: %w", tournamentID, err)
	}
	return nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" { // foreign_key_violation
		switch pqErr.Constraint {
		case "bracket_matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "bracket_matches_team_a_id_fkey", "bracket_matches_team_b_id_fkey", "bracket_matches_winner_team_id_fkey":
			return ErrMatchTeamInvalid
		}
	}
	return err
}
