package challenge

import "errors"

var (
	// ErrNotFound means the challenge does not exist.
	ErrNotFound = errors.New("challenge not found")

	// ErrForbidden covers callers acting on challenges they are not part of,
	// or the wrong side responding.
	ErrForbidden = errors.New("caller may not act on this challenge")

	// ErrIllegalState means the challenge is not in a status that allows the
	// requested action.
	ErrIllegalState = errors.New("action not allowed for current challenge status")

	// ErrSelfChallenge rejects players challenging themselves.
	ErrSelfChallenge = errors.New("cannot challenge yourself")
)
