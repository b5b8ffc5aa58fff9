package membershiprepo

import "errors"

var (
	// ErrNotFound indicates the requested membership does not exist.
	ErrNotFound = errors.New("membership not found")

	// ErrAlreadyExists indicates a membership already exists with the provided ID.
	ErrAlreadyExists = errors.New("membership already exists")
)
