package services

import "errors"

// Sentinel errors shared across services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrMatchNotFound      = errors.New("match not found")

	// Bracket engine failures.
	ErrInvalidTeamCount    = errors.New("at least 2 teams are required to generate a bracket")
	ErrInvalidWinner       = errors.New("winner must be one of the match's two teams")
	ErrMatchAlreadyDecided = errors.New("match already has a winner")

	// Registration gates.
	ErrRegistrationClosed     = errors.New("tournament registration is not open")
	ErrTournamentFull         = errors.New("tournament registration is full")
	ErrTeamNameRequired       = errors.New("team name is required")
	ErrTeamNameConflict       = errors.New("team name is already taken in this tournament")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrTournamentNameConflict = errors.New("tournament name already exists")

	// Tournament lifecycle.
	ErrTournamentNotActive       = errors.New("tournament is not active")
	ErrTournamentAlreadyFinished = errors.New("tournament is already finished")
	ErrTournamentInvalidCapacity = errors.New("tournament max teams must be at least 2")

	// Authentication and authorization.
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
)
