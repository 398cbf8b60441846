package league

import "errors"

var (
	// ErrNotFound means the league does not exist.
	ErrNotFound = errors.New("league not found")

	// ErrAlreadyMember means the player is already on the roster.
	ErrAlreadyMember = errors.New("player is already a league member")
)
