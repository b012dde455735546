package models

import "errors"

var (
	// ErrInvalidIntent marks malformed search filters.
	ErrInvalidIntent = errors.New("invalid intent")
	// ErrInvalidVendor marks a catalog record that breaks a Vendor invariant.
	ErrInvalidVendor = errors.New("invalid vendor")
)
