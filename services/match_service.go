package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aldiyar-dev/knockout-system/brackets"
	"github.com/aldiyar-dev/knockout-system/models"
	"github.com/aldiyar-dev/knockout-system/repositories"
)

// RecordWinnerResult reports what a recorded result did to the bracket.
// Champion is set only when the tournament completed on this call.
type RecordWinnerResult struct {
	Match    *models.Match `json:"match"`
	Complete bool          `json:"complete"`
	Champion *models.Team  `json:"champion,omitempty"`
}

type MatchService interface {
	// RecordWinner validates and writes a match result, then runs a full
	// propagation sweep in the same transaction. A match can be decided
	// at most once.
	RecordWinner(ctx context.Context, matchID int, winnerTeamID int) (*RecordWinnerResult, error)

	// Propagate re-runs the propagation sweep for a tournament. It is
	// idempotent, so callers may retry it freely after boundary failures.
	Propagate(ctx context.Context, tournamentID int) (*brackets.Outcome, error)

	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
}

type matchService struct {
	tx             repositories.Transactor
	matchRepo      repositories.MatchRepository
	teamRepo       repositories.TeamRepository
	tournamentRepo repositories.TournamentRepository
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewMatchService(
	tx repositories.Transactor,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		tx:             tx,
		matchRepo:      matchRepo,
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		hub:            hub,
		logger:         logger,
	}
}

func (s *matchService) RecordWinner(ctx context.Context, matchID int, winnerTeamID int) (*RecordWinnerResult, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}

	if match.Decided() {
		return nil, ErrMatchAlreadyDecided
	}
	if !match.HasTeam(winnerTeamID) {
		return nil, ErrInvalidWinner
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament %d: %w", match.TournamentID, err)
	}
	if tournament.Status != models.StatusActive {
		return nil, ErrTournamentNotActive
	}

	var outcome *brackets.Outcome
	err = s.tx.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.UpdateWinner(ctx, exec, matchID, winnerTeamID); err != nil {
			return fmt.Errorf("failed to record winner for match %d: %w", matchID, err)
		}

		var sweepErr error
		outcome, sweepErr = s.sweep(ctx, exec, match.TournamentID)
		return sweepErr
	})
	if err != nil {
		return nil, err
	}

	winner := winnerTeamID
	match.WinnerTeamID = &winner

	result := &RecordWinnerResult{Match: match, Complete: outcome.Complete}
	if outcome.Complete && outcome.Champion != nil {
		champion, err := s.teamRepo.GetByID(ctx, *outcome.Champion)
		if err != nil {
			// The champion row disappearing between commit and read is a
			// report-only failure; the bracket state is already durable.
			s.logger.Error("failed to load champion team",
				slog.Int("tournament_id", match.TournamentID),
				slog.Int("team_id", *outcome.Champion),
				slog.Any("error", err))
		} else {
			result.Champion = champion
		}
	}

	s.notify(match.TournamentID, result)
	return result, nil
}

func (s *matchService) Propagate(ctx context.Context, tournamentID int) (*brackets.Outcome, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}

	var outcome *brackets.Outcome
	err := s.tx.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		var sweepErr error
		outcome, sweepErr = s.sweep(ctx, exec, tournamentID)
		return sweepErr
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// sweep loads the tournament's full match set, runs one propagation pass
// over it in memory, and writes back only the deltas. Completion flips
// the tournament to finished with the champion recorded.
func (s *matchService) sweep(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (*brackets.Outcome, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, exec, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches for tournament %d: %w", tournamentID, err)
	}

	outcome := brackets.Propagate(matches)

	for _, delta := range outcome.Winners {
		if err := s.matchRepo.UpdateWinner(ctx, exec, delta.MatchID, delta.WinnerTeamID); err != nil {
			return nil, fmt.Errorf("failed to write bye winner for match %d: %w", delta.MatchID, err)
		}
	}
	for _, delta := range outcome.Slots {
		if err := s.matchRepo.UpdateSlot(ctx, exec, delta.MatchID, delta.Slot, delta.TeamID); err != nil {
			return nil, fmt.Errorf("failed to advance team into match %d: %w", delta.MatchID, err)
		}
	}

	if outcome.Complete && outcome.Champion != nil {
		if err := s.tournamentRepo.SetWinner(ctx, exec, tournamentID, *outcome.Champion); err != nil {
			return nil, fmt.Errorf("failed to finish tournament %d: %w", tournamentID, err)
		}
	}

	return outcome, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

func (s *matchService) notify(tournamentID int, result *RecordWinnerResult) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(tournamentRoom(tournamentID), brackets.Event{
		Type:    "MATCH_DECIDED",
		Payload: result.Match,
	})
	if result.Complete {
		s.hub.BroadcastToRoom(tournamentRoom(tournamentID), brackets.Event{
			Type:    "TOURNAMENT_FINISHED",
			Payload: result.Champion,
		})
	}
}
