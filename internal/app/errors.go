package app

import "errors"

var (
	// ErrInvalidCredentials covers unknown identifiers and wrong passwords
	// alike, so login failures never reveal which half was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
