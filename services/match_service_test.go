package services

import (
	"context"
	"testing"

	"github.com/aldiyar-dev/knockout-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

type matchFixture struct {
	svc            MatchService
	matchRepo      *fakeMatchRepo
	teamRepo       *fakeTeamRepo
	tournamentRepo *fakeTournamentRepo
	tournamentID   int
}

// newMatchFixture seeds an active tournament with teams 1..n and a
// hand-built bracket so tests control exactly which slot holds which team.
func newMatchFixture(t *testing.T, n int, matches []*models.Match) *matchFixture {
	t.Helper()

	tournamentRepo := newFakeTournamentRepo()
	teamRepo := newFakeTeamRepo()
	matchRepo := newFakeMatchRepo()

	tournament := &models.Tournament{Name: "summer-cup", MaxTeams: 16, Status: models.StatusActive}
	require.NoError(t, tournamentRepo.Create(context.Background(), tournament))

	for i := 1; i <= n; i++ {
		team := &models.Team{TournamentID: tournament.ID, Name: "team-" + string(rune('a'+i-1))}
		require.NoError(t, teamRepo.Create(context.Background(), team))
		require.Equal(t, i, team.ID)
	}

	for _, m := range matches {
		m.TournamentID = tournament.ID
		matchRepo.insert(m)
	}

	svc := NewMatchService(fakeTransactor{}, matchRepo, teamRepo, tournamentRepo, nil, testLogger())
	return &matchFixture{
		svc:            svc,
		matchRepo:      matchRepo,
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		tournamentID:   tournament.ID,
	}
}

func fourTeamBracket() []*models.Match {
	return []*models.Match{
		{RoundIndex: 0, MatchIndex: 0, TeamAID: intPtr(1), TeamBID: intPtr(2)},
		{RoundIndex: 0, MatchIndex: 1, TeamAID: intPtr(3), TeamBID: intPtr(4)},
		{RoundIndex: 1, MatchIndex: 0},
	}
}

func threeTeamBracket() []*models.Match {
	return []*models.Match{
		{RoundIndex: 0, MatchIndex: 0, TeamAID: intPtr(1), TeamBID: intPtr(2)},
		{RoundIndex: 0, MatchIndex: 1, TeamAID: intPtr(3)},
		{RoundIndex: 1, MatchIndex: 0},
	}
}

func TestRecordWinner_MatchNotFound(t *testing.T) {
	f := newMatchFixture(t, 4, fourTeamBracket())

	_, err := f.svc.RecordWinner(context.Background(), 999, 1)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestRecordWinner_InvalidWinner(t *testing.T) {
	f := newMatchFixture(t, 4, fourTeamBracket())

	_, err := f.svc.RecordWinner(context.Background(), 1, 3)
	assert.ErrorIs(t, err, ErrInvalidWinner)

	stored, getErr := f.matchRepo.GetByID(context.Background(), 1)
	require.NoError(t, getErr)
	assert.Nil(t, stored.WinnerTeamID)
}

func TestRecordWinner_AlreadyDecided(t *testing.T) {
	f := newMatchFixture(t, 4, fourTeamBracket())

	_, err := f.svc.RecordWinner(context.Background(), 1, 2)
	require.NoError(t, err)

	_, err = f.svc.RecordWinner(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrMatchAlreadyDecided)

	stored, getErr := f.matchRepo.GetByID(context.Background(), 1)
	require.NoError(t, getErr)
	require.NotNil(t, stored.WinnerTeamID)
	assert.Equal(t, 2, *stored.WinnerTeamID)
}

func TestRecordWinner_TournamentNotActive(t *testing.T) {
	f := newMatchFixture(t, 4, fourTeamBracket())
	require.NoError(t, f.tournamentRepo.UpdateStatus(context.Background(), nil, f.tournamentID, models.StatusCanceled))

	_, err := f.svc.RecordWinner(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrTournamentNotActive)
}

func TestRecordWinner_AdvancesIntoNextRound(t *testing.T) {
	f := newMatchFixture(t, 4, fourTeamBracket())

	result, err := f.svc.RecordWinner(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.False(t, result.Complete)
	assert.Nil(t, result.Champion)

	final, err := f.matchRepo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, final.TeamAID)
	assert.Equal(t, 1, *final.TeamAID)
	assert.Nil(t, final.TeamBID)
	assert.Nil(t, final.WinnerTeamID)
}

func TestRecordWinner_FinalCrownsChampion(t *testing.T) {
	f := newMatchFixture(t, 4, fourTeamBracket())

	_, err := f.svc.RecordWinner(context.Background(), 1, 1)
	require.NoError(t, err)
	_, err = f.svc.RecordWinner(context.Background(), 2, 4)
	require.NoError(t, err)

	result, err := f.svc.RecordWinner(context.Background(), 3, 4)
	require.NoError(t, err)
	assert.True(t, result.Complete)
	require.NotNil(t, result.Champion)
	assert.Equal(t, 4, result.Champion.ID)

	tournament, err := f.tournamentRepo.GetByID(context.Background(), f.tournamentID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, tournament.Status)
	require.NotNil(t, tournament.WinnerTeamID)
	assert.Equal(t, 4, *tournament.WinnerTeamID)
}

func TestRecordWinner_ByeOpponentNeverWins(t *testing.T) {
	// After the first sweep team 3 already advanced out of its bye match;
	// re-deciding that match must fail rather than rewrite history.
	f := newMatchFixture(t, 3, threeTeamBracket())

	_, err := f.svc.Propagate(context.Background(), f.tournamentID)
	require.NoError(t, err)

	_, err = f.svc.RecordWinner(context.Background(), 2, 3)
	assert.ErrorIs(t, err, ErrMatchAlreadyDecided)
}

func TestPropagate_ResolvesByesOnFirstSweep(t *testing.T) {
	f := newMatchFixture(t, 3, threeTeamBracket())

	outcome, err := f.svc.Propagate(context.Background(), f.tournamentID)
	require.NoError(t, err)
	require.Len(t, outcome.Winners, 1)
	assert.False(t, outcome.Complete)

	byeMatch, err := f.matchRepo.GetByID(context.Background(), 2)
	require.NoError(t, err)
	require.NotNil(t, byeMatch.WinnerTeamID)
	assert.Equal(t, 3, *byeMatch.WinnerTeamID)

	final, err := f.matchRepo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, final.TeamBID)
	assert.Equal(t, 3, *final.TeamBID)
}

func TestPropagate_Idempotent(t *testing.T) {
	f := newMatchFixture(t, 3, threeTeamBracket())

	_, err := f.svc.Propagate(context.Background(), f.tournamentID)
	require.NoError(t, err)

	outcome, err := f.svc.Propagate(context.Background(), f.tournamentID)
	require.NoError(t, err)
	assert.Empty(t, outcome.Winners)
	assert.Empty(t, outcome.Slots)
}

func TestPropagate_TournamentNotFound(t *testing.T) {
	f := newMatchFixture(t, 3, threeTeamBracket())

	_, err := f.svc.Propagate(context.Background(), 999)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
