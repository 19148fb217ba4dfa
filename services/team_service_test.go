package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aldiyar-dev/knockout-system/models"
	"github.com/aldiyar-dev/knockout-system/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingUploader captures upload and delete calls for assertions.
type recordingUploader struct {
	uploaded []string
	deleted  []string
	baseURL  string
}

func (u *recordingUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return nil, err
	}
	u.uploaded = append(u.uploaded, key)
	return &storage.UploadResult{Key: key}, nil
}

func (u *recordingUploader) Delete(ctx context.Context, key string) error {
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *recordingUploader) GetPublicURL(key string) string {
	if u.baseURL == "" {
		return ""
	}
	return u.baseURL + "/" + key
}

type teamFixture struct {
	svc            TeamService
	teamRepo       *fakeTeamRepo
	tournamentRepo *fakeTournamentRepo
	uploader       *recordingUploader
	tournamentID   int
}

func newTeamFixture(t *testing.T, status models.TournamentStatus, maxTeams int) *teamFixture {
	t.Helper()

	tournamentRepo := newFakeTournamentRepo()
	teamRepo := newFakeTeamRepo()
	uploader := &recordingUploader{baseURL: "https://cdn.example.com"}

	tournament := &models.Tournament{Name: "spring-cup", MaxTeams: maxTeams, Status: status}
	require.NoError(t, tournamentRepo.Create(context.Background(), tournament))

	svc := NewTeamService(teamRepo, tournamentRepo, uploader, testLogger())
	return &teamFixture{
		svc:            svc,
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		uploader:       uploader,
		tournamentID:   tournament.ID,
	}
}

func TestRegisterTeam_Success(t *testing.T) {
	f := newTeamFixture(t, models.StatusRegistration, 8)

	team, err := f.svc.RegisterTeam(context.Background(), f.tournamentID, RegisterTeamInput{
		Name:           "wolves",
		LeaderUsername: "@akela",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "wolves", team.Name)
	assert.Equal(t, "@akela", team.LeaderUsername)
	assert.Nil(t, team.PhotoKey)

	stored, err := f.teamRepo.GetByID(context.Background(), team.ID)
	require.NoError(t, err)
	assert.Equal(t, f.tournamentID, stored.TournamentID)
}

func TestRegisterTeam_WithRosterPhoto(t *testing.T) {
	f := newTeamFixture(t, models.StatusRegistration, 8)

	photo := &RosterPhoto{Reader: strings.NewReader("fake-image-bytes"), ContentType: "image/png"}
	team, err := f.svc.RegisterTeam(context.Background(), f.tournamentID, RegisterTeamInput{Name: "wolves"}, photo)
	require.NoError(t, err)

	require.Len(t, f.uploader.uploaded, 1)
	require.NotNil(t, team.PhotoKey)
	assert.Equal(t, f.uploader.uploaded[0], *team.PhotoKey)
	require.NotNil(t, team.PhotoURL)
	assert.Equal(t, "https://cdn.example.com/"+*team.PhotoKey, *team.PhotoURL)
}

func TestRegisterTeam_NameRequired(t *testing.T) {
	f := newTeamFixture(t, models.StatusRegistration, 8)

	_, err := f.svc.RegisterTeam(context.Background(), f.tournamentID, RegisterTeamInput{}, nil)
	assert.ErrorIs(t, err, ErrTeamNameRequired)
}

func TestRegisterTeam_RegistrationClosed(t *testing.T) {
	f := newTeamFixture(t, models.StatusActive, 8)

	_, err := f.svc.RegisterTeam(context.Background(), f.tournamentID, RegisterTeamInput{Name: "wolves"}, nil)
	assert.ErrorIs(t, err, ErrRegistrationClosed)
}

func TestRegisterTeam_TournamentFull(t *testing.T) {
	f := newTeamFixture(t, models.StatusRegistration, 2)

	for _, name := range []string{"wolves", "bears"} {
		_, err := f.svc.RegisterTeam(context.Background(), f.tournamentID, RegisterTeamInput{Name: name}, nil)
		require.NoError(t, err)
	}

	_, err := f.svc.RegisterTeam(context.Background(), f.tournamentID, RegisterTeamInput{Name: "foxes"}, nil)
	assert.ErrorIs(t, err, ErrTournamentFull)
}

func TestRegisterTeam_DuplicateName(t *testing.T) {
	f := newTeamFixture(t, models.StatusRegistration, 8)

	_, err := f.svc.RegisterTeam(context.Background(), f.tournamentID, RegisterTeamInput{Name: "wolves"}, nil)
	require.NoError(t, err)

	_, err = f.svc.RegisterTeam(context.Background(), f.tournamentID, RegisterTeamInput{Name: "wolves"}, nil)
	assert.ErrorIs(t, err, ErrTeamNameConflict)
}

func TestRegisterTeam_TournamentNotFound(t *testing.T) {
	f := newTeamFixture(t, models.StatusRegistration, 8)

	_, err := f.svc.RegisterTeam(context.Background(), 999, RegisterTeamInput{Name: "wolves"}, nil)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestDeleteTeam_RemovesRosterPhoto(t *testing.T) {
	f := newTeamFixture(t, models.StatusRegistration, 8)

	photo := &RosterPhoto{Reader: strings.NewReader("fake-image-bytes"), ContentType: "image/png"}
	team, err := f.svc.RegisterTeam(context.Background(), f.tournamentID, RegisterTeamInput{Name: "wolves"}, photo)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteTeam(context.Background(), team.ID))

	assert.Equal(t, f.uploader.uploaded, f.uploader.deleted)
	_, err = f.svc.GetTeam(context.Background(), team.ID)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestDeleteTeam_NotFound(t *testing.T) {
	f := newTeamFixture(t, models.StatusRegistration, 8)

	err := f.svc.DeleteTeam(context.Background(), 42)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}
