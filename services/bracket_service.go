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

type BracketService interface {
	// GenerateBracket builds a fresh single-elimination bracket for the
	// tournament's registered teams and atomically replaces any existing
	// one. Byes are left unresolved; they advance on the first
	// propagation sweep.
	GenerateBracket(ctx context.Context, tournamentID int) ([]*models.Match, error)
}

type bracketService struct {
	tx             repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	generator      brackets.BracketGenerator
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewBracketService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	generator brackets.BracketGenerator,
	hub *brackets.Hub,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		generator:      generator,
		hub:            hub,
		logger:         logger,
	}
}

func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	if tournament.Status == models.StatusFinished || tournament.Status == models.StatusCanceled {
		return nil, ErrTournamentAlreadyFinished
	}

	dbTeams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for tournament %d: %w", tournamentID, err)
	}
	if len(dbTeams) < 2 {
		return nil, ErrInvalidTeamCount
	}

	teams := make([]models.Team, len(dbTeams))
	for i, t := range dbTeams {
		teams[i] = *t
	}

	generated, err := s.generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
		TournamentID: tournamentID,
		Teams:        teams,
	})
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughTeams) {
			return nil, ErrInvalidTeamCount
		}
		return nil, fmt.Errorf("failed to generate bracket for tournament %d: %w", tournamentID, err)
	}

	err = s.tx.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.ReplaceForTournament(ctx, exec, tournamentID, generated); err != nil {
			return fmt.Errorf("failed to store bracket for tournament %d: %w", tournamentID, err)
		}
		if tournament.Status != models.StatusActive {
			if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.StatusActive); err != nil {
				return fmt.Errorf("failed to activate tournament %d: %w", tournamentID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bracket generated",
		slog.Int("tournament_id", tournamentID),
		slog.String("generator", s.generator.GetName()),
		slog.Int("teams", len(teams)),
		slog.Int("matches", len(generated)))

	if s.hub != nil {
		s.hub.BroadcastToRoom(tournamentRoom(tournamentID), brackets.Event{
			Type:    "BRACKET_UPDATED",
			Payload: generated,
		})
	}

	return generated, nil
}

func tournamentRoom(tournamentID int) string {
	return fmt.Sprintf("tournament_%d", tournamentID)
}
