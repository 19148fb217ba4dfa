package brackets

import (
	"sort"

	"github.com/aldiyar-dev/knockout-system/models"
)

// WinnerDelta records a winner written during a sweep (bye auto-advance).
type WinnerDelta struct {
	MatchID      int
	WinnerTeamID int
}

// SlotDelta records a team advanced into a slot of a later-round match.
type SlotDelta struct {
	MatchID int
	Slot    models.Slot
	TeamID  int
}

// Outcome is the result of one propagation sweep. Only the deltas are
// reported; the boundary persists them and nothing else.
type Outcome struct {
	Winners  []WinnerDelta
	Slots    []SlotDelta
	Champion *int
	Complete bool
}

type bracketKey struct {
	round int
	index int
}

// Propagate runs a single round-ascending, index-ascending sweep over a
// tournament's full match list:
//
//   - an undecided match whose empty slot can structurally never be
//     filled (a round-0 bye, or a later-round slot whose entire source
//     subtree is byes) auto-advances its sole team as the winner;
//   - every decided match below the final forwards its winner into
//     (round+1, index/2), slot A when the index is even and slot B when
//     it is odd, if that slot is still empty;
//   - the tournament is complete when the unique match of the highest
//     round has a winner; that team is the champion.
//
// A slot that is merely waiting on an unfinished sibling match is never
// auto-resolved. The sweep mutates the given matches in memory and is
// idempotent: re-running it with no new results yields no deltas.
func Propagate(matches []*models.Match) *Outcome {
	out := &Outcome{}
	if len(matches) == 0 {
		return out
	}

	byKey := make(map[bracketKey]*models.Match, len(matches))
	maxRound := 0
	for _, m := range matches {
		byKey[bracketKey{m.RoundIndex, m.MatchIndex}] = m
		if m.RoundIndex > maxRound {
			maxRound = m.RoundIndex
		}
	}

	ordered := make([]*models.Match, len(matches))
	copy(ordered, matches)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].RoundIndex != ordered[j].RoundIndex {
			return ordered[i].RoundIndex < ordered[j].RoundIndex
		}
		return ordered[i].MatchIndex < ordered[j].MatchIndex
	})

	// barren marks matches that can never produce a winner: both slots
	// empty and both structurally unfillable. Round-0 padding can pair two
	// byes together; the emptiness then cascades up one side of the tree.
	barren := make(map[bracketKey]bool, len(matches))

	for _, m := range ordered {
		key := bracketKey{m.RoundIndex, m.MatchIndex}
		deadA := slotDead(m, models.SlotA, barren)
		deadB := slotDead(m, models.SlotB, barren)

		if !m.Decided() {
			switch {
			case m.TeamAID != nil && m.TeamBID == nil && deadB:
				w := *m.TeamAID
				m.WinnerTeamID = &w
				out.Winners = append(out.Winners, WinnerDelta{MatchID: m.ID, WinnerTeamID: w})
			case m.TeamBID != nil && m.TeamAID == nil && deadA:
				w := *m.TeamBID
				m.WinnerTeamID = &w
				out.Winners = append(out.Winners, WinnerDelta{MatchID: m.ID, WinnerTeamID: w})
			case m.TeamAID == nil && m.TeamBID == nil && deadA && deadB:
				barren[key] = true
			}
		}

		if !m.Decided() || m.RoundIndex == maxRound {
			continue
		}

		next, ok := byKey[bracketKey{m.RoundIndex + 1, m.MatchIndex / 2}]
		if !ok {
			continue
		}
		winner := *m.WinnerTeamID
		if m.MatchIndex%2 == 0 {
			if next.TeamAID == nil {
				next.TeamAID = &winner
				out.Slots = append(out.Slots, SlotDelta{MatchID: next.ID, Slot: models.SlotA, TeamID: winner})
			}
		} else {
			if next.TeamBID == nil {
				next.TeamBID = &winner
				out.Slots = append(out.Slots, SlotDelta{MatchID: next.ID, Slot: models.SlotB, TeamID: winner})
			}
		}
	}

	if final, ok := byKey[bracketKey{maxRound, 0}]; ok && final.Decided() {
		champion := *final.WinnerTeamID
		out.Champion = &champion
		out.Complete = true
	}

	return out
}

// slotDead reports whether the given slot of a match can never be filled.
// In round 0 an empty slot is a bye. In later rounds a slot is dead only
// when its source match is barren; a pending source match keeps the slot
// alive.
func slotDead(m *models.Match, slot models.Slot, barren map[bracketKey]bool) bool {
	if m.RoundIndex == 0 {
		if slot == models.SlotA {
			return m.TeamAID == nil
		}
		return m.TeamBID == nil
	}
	source := bracketKey{m.RoundIndex - 1, m.MatchIndex*2 + int(slot)}
	return barren[source]
}
