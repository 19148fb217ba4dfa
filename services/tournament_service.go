package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aldiyar-dev/knockout-system/models"
	"github.com/aldiyar-dev/knockout-system/repositories"
	"github.com/aldiyar-dev/knockout-system/storage"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Name     string `json:"name"`
	MaxTeams int    `json:"max_teams"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error)
	CancelTournament(ctx context.Context, id int) error
	DeleteTournament(ctx context.Context, id int) error
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, ErrTournamentNameRequired
	}
	if input.MaxTeams < 2 {
		return nil, ErrTournamentInvalidCapacity
	}

	tournament := &models.Tournament{
		Name:     input.Name,
		MaxTeams: input.MaxTeams,
		Status:   models.StatusRegistration,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	s.logger.Info("tournament created",
		slog.Int("tournament_id", tournament.ID),
		slog.String("name", tournament.Name),
		slog.Int("max_teams", tournament.MaxTeams))
	return tournament, nil
}

// GetTournament loads a tournament with its roster and bracket. Teams and
// matches are fetched concurrently.
func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", id, err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		teams, err := s.teamRepo.ListByTournament(gCtx, id)
		if err != nil {
			return fmt.Errorf("failed to list teams for tournament %d: %w", id, err)
		}
		tournament.Teams = make([]models.Team, len(teams))
		for i, team := range teams {
			if team.PhotoKey != nil {
				if url := s.uploader.GetPublicURL(*team.PhotoKey); url != "" {
					team.PhotoURL = &url
				}
			}
			tournament.Teams[i] = *team
		}
		return nil
	})

	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gCtx, nil, id)
		if err != nil {
			return fmt.Errorf("failed to list matches for tournament %d: %w", id, err)
		}
		tournament.Matches = make([]models.Match, len(matches))
		for i, match := range matches {
			tournament.Matches[i] = *match
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *tournamentService) CancelTournament(ctx context.Context, id int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to load tournament %d: %w", id, err)
	}
	if tournament.Status == models.StatusFinished {
		return ErrTournamentAlreadyFinished
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, models.StatusCanceled); err != nil {
		return fmt.Errorf("failed to cancel tournament %d: %w", id, err)
	}
	return nil
}

// DeleteTournament removes the tournament with its teams, bracket, and
// stored roster photos.
func (s *tournamentService) DeleteTournament(ctx context.Context, id int) error {
	teams, err := s.teamRepo.ListByTournament(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list teams for tournament %d: %w", id, err)
	}

	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}

	for _, team := range teams {
		if team.PhotoKey == nil {
			continue
		}
		if err := s.uploader.Delete(ctx, *team.PhotoKey); err != nil {
			s.logger.Error("failed to delete roster photo",
				slog.Int("team_id", team.ID),
				slog.String("key", *team.PhotoKey),
				slog.Any("error", err))
		}
	}

	s.logger.Info("tournament deleted", slog.Int("tournament_id", id))
	return nil
}
