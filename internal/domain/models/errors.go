package models

import "errors"

// Closed set of failure kinds raised by the services. The API layer maps
// each one to a status code with errors.Is; nothing else inspects messages.
var (
	ErrValidation     = errors.New("validation failed")
	ErrConflict       = errors.New("already exists")
	ErrAuthentication = errors.New("invalid credentials")
	ErrAuthorization  = errors.New("not the resource owner")
	ErrNotFound       = errors.New("not found")
)
