package profilerepo

import "errors"

var (
	// ErrNotFound indicates the requested profile does not exist.
	ErrNotFound = errors.New("profile not found")

	// ErrEmailTaken indicates a profile already exists with the provided email.
	ErrEmailTaken = errors.New("profile email already in use")

	// ErrAlreadyExists indicates a profile already exists with the provided ID.
	ErrAlreadyExists = errors.New("profile already exists")
)
