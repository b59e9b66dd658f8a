package service

import "errors"

// Message-send failures carry a specific reason so the UI can correct the
// right field instead of showing a generic error.
var (
	ErrEmptyMessage   = errors.New("message body is empty")
	ErrMessageTooLong = errors.New("message body exceeds the maximum length")
	ErrNotGroupMember = errors.New("user is not an active member of this group")
)

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrNoOrganizer   = errors.New("outing has no organizer")
)

var (
	ErrOutingNotFound    = errors.New("outing not found")
	ErrOutingNotOpen     = errors.New("outing is not open for registration")
	ErrOutingFull        = errors.New("outing has reached its capacity")
	ErrDeadlinePassed    = errors.New("registration deadline has passed")
	ErrAlreadyRegistered = errors.New("user is already registered for this outing")
	ErrNotRegistered     = errors.New("user is not registered for this outing")
	ErrNotOrganizer      = errors.New("only the organizer may do this")
	ErrInvalidTransition = errors.New("outing state does not allow this transition")
)
