package brackets

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/aldiyar-dev/knockout-system/models"
)

// ErrNotEnoughTeams is returned when fewer than two teams are available.
// Callers are expected to gate on roster size as well, but the generator
// defends the invariant itself.
var ErrNotEnoughTeams = errors.New("at least 2 teams are required to generate a single elimination bracket")

type SingleEliminationGenerator struct {
	// shuffle reorders the team list in place before pairing, so bracket
	// order does not correlate with registration order. Tests substitute
	// a fixed ordering.
	shuffle func([]models.Team)
}

func NewSingleEliminationGenerator() BracketGenerator {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &SingleEliminationGenerator{
		shuffle: func(teams []models.Team) {
			rnd.Shuffle(len(teams), func(i, j int) {
				teams[i], teams[j] = teams[j], teams[i]
			})
		},
	}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket shuffles the teams, pads them to the next power of two
// with byes, and emits every match of the bracket: round 0 carries the
// shuffled teams (a nil TeamBID marks a bye), all later rounds down to the
// single final are created empty. Matches are ordered by round, then by
// position within the round.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	n := len(params.Teams)
	if n < 2 {
		return nil, ErrNotEnoughTeams
	}

	shuffled := make([]models.Team, n)
	copy(shuffled, params.Teams)
	if g.shuffle != nil {
		g.shuffle(shuffled)
	}

	slotCount := nextPowerOfTwo(n)

	// slotCount slots pair into slotCount-1 matches across all rounds.
	matches := make([]*models.Match, 0, slotCount-1)

	for i := 0; i < slotCount; i += 2 {
		m := &models.Match{
			TournamentID: params.TournamentID,
			RoundIndex:   0,
			MatchIndex:   i / 2,
		}
		if i < n {
			teamA := shuffled[i].ID
			m.TeamAID = &teamA
		}
		if i+1 < n {
			teamB := shuffled[i+1].ID
			m.TeamBID = &teamB
		}
		matches = append(matches, m)
	}

	for round, count := 1, slotCount/4; count >= 1; round, count = round+1, count/2 {
		for idx := 0; idx < count; idx++ {
			matches = append(matches, &models.Match{
				TournamentID: params.TournamentID,
				RoundIndex:   round,
				MatchIndex:   idx,
			})
		}
	}

	return matches, nil
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
