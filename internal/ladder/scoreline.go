package ladder

import "fmt"

// maxGamesPerSet bounds a single set; padel sets go to 6 with a 7-game
// tie-break ceiling.
const maxGamesPerSet = 7

// DeriveWinner validates a reported set sequence and returns the winning
// team (TeamA or TeamB). The sequence must be a decided best-of-three:
// two or three sets, no drawn sets, one side taking the majority.
func DeriveWinner(sets []SetScore) (int, error) {
	if len(sets) < 2 || len(sets) > 3 {
		return 0, fmt.Errorf("%w: expected 2 or 3 sets, got %d", ErrInvalidScoreline, len(sets))
	}
	setsA, setsB := 0, 0
	for i, set := range sets {
		if set.TeamA < 0 || set.TeamB < 0 || set.TeamA > maxGamesPerSet || set.TeamB > maxGamesPerSet {
			return 0, fmt.Errorf("%w: set %d has games out of range (%d-%d)", ErrInvalidScoreline, i+1, set.TeamA, set.TeamB)
		}
		if set.TeamA == set.TeamB {
			return 0, fmt.Errorf("%w: set %d is drawn (%d-%d)", ErrInvalidScoreline, i+1, set.TeamA, set.TeamB)
		}
		if set.TeamA > set.TeamB {
			setsA++
		} else {
			setsB++
		}
	}
	if setsA == setsB {
		return 0, fmt.Errorf("%w: no side won a majority of sets", ErrInvalidScoreline)
	}
	if setsA > setsB {
		return TeamA, nil
	}
	return TeamB, nil
}

// validateTeams checks side sizes and that no player appears twice.
func validateTeams(teamA, teamB []Participant) error {
	if len(teamA) < 1 || len(teamA) > 2 || len(teamB) < 1 || len(teamB) > 2 {
		return fmt.Errorf("%w: each side needs 1 or 2 players", ErrInvalidScoreline)
	}
	seen := make(map[string]bool, len(teamA)+len(teamB))
	for _, p := range append(append([]Participant{}, teamA...), teamB...) {
		if p.UserID == "" {
			return fmt.Errorf("%w: participant without user id", ErrInvalidScoreline)
		}
		if seen[p.UserID] {
			return fmt.Errorf("%w: player %s appears twice", ErrInvalidScoreline, p.UserID)
		}
		seen[p.UserID] = true
	}
	return nil
}
