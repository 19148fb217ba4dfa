package handlers

import (
	"net/http"

	"github.com/aldiyar-dev/knockout-system/services"
)

type MatchHandler struct {
	matchService services.MatchService
	teamService  services.TeamService
}

func NewMatchHandler(matchService services.MatchService, teamService services.TeamService) *MatchHandler {
	return &MatchHandler{
		matchService: matchService,
		teamService:  teamService,
	}
}

type recordWinnerRequest struct {
	WinnerTeamID int `json:"winner_team_id"`
}

// RecordWinnerHandler handles POST /matches/{matchID}/winner.
func (h *MatchHandler) RecordWinnerHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input recordWinnerRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.matchService.RecordWinner(r.Context(), matchID, input.WinnerTeamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PropagateHandler handles POST /tournaments/{tournamentID}/propagate.
// The sweep is idempotent, so this is safe to call after a timed-out
// record-winner request.
func (h *MatchHandler) PropagateHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.matchService.Propagate(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"outcome": outcome}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByTournamentHandler handles GET /tournaments/{tournamentID}/matches.
func (h *MatchHandler) ListByTournamentHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type teamRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type matchView struct {
	ID         int      `json:"id"`
	MatchIndex int      `json:"match_index"`
	TeamA      *teamRef `json:"team_a,omitempty"`
	TeamB      *teamRef `json:"team_b,omitempty"`
	Winner     *teamRef `json:"winner,omitempty"`
}

type roundView struct {
	Round   int         `json:"round"`
	Matches []matchView `json:"matches"`
}

// GetBracketHandler handles GET /tournaments/{tournamentID}/bracket and
// returns the bracket grouped by round with team names resolved.
func (h *MatchHandler) GetBracketHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	teams, err := h.teamService.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	namesByID := make(map[int]string, len(teams))
	for _, team := range teams {
		namesByID[team.ID] = team.Name
	}
	ref := func(teamID *int) *teamRef {
		if teamID == nil {
			return nil
		}
		return &teamRef{ID: *teamID, Name: namesByID[*teamID]}
	}

	rounds := make([]roundView, 0)
	for _, match := range matches {
		for len(rounds) <= match.RoundIndex {
			rounds = append(rounds, roundView{Round: len(rounds), Matches: []matchView{}})
		}
		rounds[match.RoundIndex].Matches = append(rounds[match.RoundIndex].Matches, matchView{
			ID:         match.ID,
			MatchIndex: match.MatchIndex,
			TeamA:      ref(match.TeamAID),
			TeamB:      ref(match.TeamBID),
			Winner:     ref(match.WinnerTeamID),
		})
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rounds": rounds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
