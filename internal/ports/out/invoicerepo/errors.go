package invoicerepo

import "errors"

var (
	// ErrNotFound indicates the requested invoice does not exist.
	ErrNotFound = errors.New("invoice not found")

	// ErrAlreadyExists indicates an invoice already exists with the provided ID
	// or invoice number.
	ErrAlreadyExists = errors.New("invoice already exists")
)
