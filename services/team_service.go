package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aldiyar-dev/knockout-system/models"
	"github.com/aldiyar-dev/knockout-system/repositories"
	"github.com/aldiyar-dev/knockout-system/storage"
)

type RegisterTeamInput struct {
	Name           string `json:"name"`
	LeaderUsername string `json:"leader_username"`
}

// RosterPhoto is an optional photo attached during registration.
type RosterPhoto struct {
	Reader      io.Reader
	ContentType string
}

type TeamService interface {
	RegisterTeam(ctx context.Context, tournamentID int, input RegisterTeamInput, photo *RosterPhoto) (*models.Team, error)
	GetTeam(ctx context.Context, teamID int) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error)
	DeleteTeam(ctx context.Context, teamID int) error
}

type teamService struct {
	teamRepo       repositories.TeamRepository
	tournamentRepo repositories.TournamentRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *teamService) RegisterTeam(ctx context.Context, tournamentID int, input RegisterTeamInput, photo *RosterPhoto) (*models.Team, error) {
	if input.Name == "" {
		return nil, ErrTeamNameRequired
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	if tournament.Status != models.StatusRegistration {
		return nil, ErrRegistrationClosed
	}

	count, err := s.teamRepo.CountByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count teams for tournament %d: %w", tournamentID, err)
	}
	if count >= tournament.MaxTeams {
		return nil, ErrTournamentFull
	}

	team := &models.Team{
		TournamentID:   tournamentID,
		Name:           input.Name,
		LeaderUsername: input.LeaderUsername,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		if errors.Is(err, repositories.ErrTeamTournamentInvalid) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to register team: %w", err)
	}

	if photo != nil {
		key := fmt.Sprintf("rosters/%d/%d", tournamentID, team.ID)
		uploaded, err := s.uploader.Upload(ctx, key, photo.ContentType, photo.Reader)
		if err != nil {
			// Registration stands even if the photo upload fails; the
			// leader can re-send the roster later.
			s.logger.Error("roster photo upload failed",
				slog.Int("team_id", team.ID),
				slog.Any("error", err))
		} else if err := s.teamRepo.UpdatePhotoKey(ctx, team.ID, &uploaded.Key); err != nil {
			s.logger.Error("failed to store roster photo key",
				slog.Int("team_id", team.ID),
				slog.Any("error", err))
		} else {
			team.PhotoKey = &uploaded.Key
		}
	}

	s.fillPhotoURL(team)
	return team, nil
}

func (s *teamService) GetTeam(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	s.fillPhotoURL(team)
	return team, nil
}

func (s *teamService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for tournament %d: %w", tournamentID, err)
	}
	for _, team := range teams {
		s.fillPhotoURL(team)
	}
	return teams, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, teamID int) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to load team %d: %w", teamID, err)
	}

	if err := s.teamRepo.Delete(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to delete team %d: %w", teamID, err)
	}

	if team.PhotoKey != nil {
		if err := s.uploader.Delete(ctx, *team.PhotoKey); err != nil {
			s.logger.Error("failed to delete roster photo",
				slog.Int("team_id", teamID),
				slog.String("key", *team.PhotoKey),
				slog.Any("error", err))
		}
	}
	return nil
}

func (s *teamService) fillPhotoURL(team *models.Team) {
	if team.PhotoKey == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*team.PhotoKey); url != "" {
		team.PhotoURL = &url
	}
}
