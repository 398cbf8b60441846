package ladder

import "errors"

// Sentinel errors surfaced across the ladder. The HTTP layer maps these to
// status codes; everything else wraps them with context via fmt.Errorf and %w.
var (
	// ErrNotFound means the match result does not exist.
	ErrNotFound = errors.New("match result not found")

	// ErrPlayerNotFound means a referenced player has no rating profile.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrForbidden covers non-participants and the reporter trying to act
	// on their own report.
	ErrForbidden = errors.New("actor may not perform this transition")

	// ErrIllegalTransition means the result is not in a status that allows
	// the requested transition.
	ErrIllegalTransition = errors.New("transition not allowed for current status")

	// ErrAlreadyApplied marks an idempotent replay of a transition that has
	// already settled. Callers treat it as success-no-op.
	ErrAlreadyApplied = errors.New("result already settled")

	// ErrInvalidScoreline rejects malformed set sequences.
	ErrInvalidScoreline = errors.New("invalid scoreline")

	// ErrLeagueMembersMissing rejects league results whose participants are
	// not all members of the league.
	ErrLeagueMembersMissing = errors.New("participants are not all members of the league")
)
