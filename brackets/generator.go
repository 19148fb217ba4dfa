package brackets

import (
	"context"

	"github.com/aldiyar-dev/knockout-system/models"
)

type GenerateBracketParams struct {
	TournamentID int
	Teams        []models.Team
}

// BracketGenerator builds the full match set for a tournament from its
// registered teams. Generators only lay out the structure; winners are
// resolved later by propagation sweeps.
type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error)

	GetName() string
}
