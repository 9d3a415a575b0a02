package store

import "errors"

var (
	// ErrNotFound indicates an unknown participant or message id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidSender indicates a message from an unregistered identity.
	ErrInvalidSender = errors.New("invalid sender")

	// ErrEmptyContent indicates a blank message body.
	ErrEmptyContent = errors.New("empty content")

	// ErrForbidden indicates a non-owner attempting an owner-only dispatch.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidStatus indicates a status value outside the known set.
	ErrInvalidStatus = errors.New("invalid status")
)
