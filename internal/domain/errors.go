package domain

import "errors"

var (
	// ErrNotFound is returned when a referenced user, post, or notification
	// does not exist (or the post is soft-deleted).
	ErrNotFound = errors.New("not found")

	// ErrSelfFollow is returned when a user attempts to follow themselves.
	ErrSelfFollow = errors.New("cannot follow yourself")

	// ErrForbidden is returned when the caller does not own the resource the
	// operation mutates.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalid is returned for malformed input (empty content, unknown
	// visibility, bad reaction type).
	ErrInvalid = errors.New("invalid input")
)
